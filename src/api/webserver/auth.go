package webserver

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	loginFailPrefix = "loginfail:"
	maxLoginFails   = 5
	loginFailWindow = 10 * time.Minute
)

type Auth struct {
	rdb          *redis.Client
	jwtSecret    []byte
	moderatorKey string
}

func NewAuth(rdb *redis.Client, secret []byte, moderatorKey string) Auth {
	return Auth{rdb: rdb, jwtSecret: secret, moderatorKey: moderatorKey}
}

// Login exchanges the shared moderator key for a short-lived JWT. Repeated
// failures from one address are throttled through redis.
func (a Auth) Login(c *gin.Context) {
	var req struct {
		ModeratorID int64  `json:"moderatorId" binding:"required"`
		Key         string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	failKey := loginFailPrefix + c.ClientIP()
	if fails, err := a.rdb.Get(c, failKey).Int64(); err == nil && fails >= maxLoginFails {
		c.JSON(http.StatusTooManyRequests, gin.H{"err": "too many failed attempts"})
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Key), []byte(a.moderatorKey)) != 1 {
		if n, err := a.rdb.Incr(c, failKey).Result(); err == nil && n == 1 {
			a.rdb.Expire(c, failKey, loginFailWindow)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"err": "bad moderator key"})
		return
	}
	a.rdb.Del(c, failKey)

	token, err := issueJWT(req.ModeratorID, a.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func issueJWT(moderatorID int64, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"mod": fmt.Sprintf("%d", moderatorID),
		"jti": uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	return token.SignedString(secret)
}
