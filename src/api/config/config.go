package config

import (
	"log"
	"os"
	"strconv"

	"github.com/rawthoughts/modfeed/src/data"
)

type Config struct {
	MySQLDSN     string
	RedisURL     string
	JWTSecret    string
	ModeratorKey string
	Port         string
	SubmitRate   int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	rate, _ := strconv.Atoi(getenv("SUBMIT_RATE", "5"))
	return Config{
		MySQLDSN:     data.GetMySQLDSN(),
		RedisURL:     getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		JWTSecret:    getenv("JWT_SECRET", ""),
		ModeratorKey: getenv("MODERATOR_KEY", ""),
		Port:         getenv("PORT", "8080"),
		SubmitRate:   rate,
	}
}
