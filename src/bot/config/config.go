package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rawthoughts/modfeed/src/data"
)

type Config struct {
	Token          string
	MySQLDSN       string
	RedisURL       string
	ChannelID      string
	ModeratorIDs   []int64
	SubmitCooldown time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads the bot configuration from the environment. Reviewer ids are
// mandatory: running without configured moderators is a startup failure, not
// a silent fallback.
func Load() Config {
	cooldown := 30
	if v := os.Getenv("SUBMIT_COOLDOWN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cooldown = n
		}
	}

	return Config{
		Token:          os.Getenv("DISCORD_TOKEN"),
		MySQLDSN:       data.GetMySQLDSN(),
		RedisURL:       getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		ChannelID:      os.Getenv("CHANNEL_ID"),
		ModeratorIDs:   parseModeratorIDs(os.Getenv("MODERATOR_IDS")),
		SubmitCooldown: time.Duration(cooldown) * time.Second,
	}
}

func parseModeratorIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Fatalf("bad moderator id %q in MODERATOR_IDS", part)
		}
		ids = append(ids, id)
	}
	return ids
}
