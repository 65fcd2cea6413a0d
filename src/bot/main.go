package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rawthoughts/modfeed/src/bot/bot"
	"github.com/rawthoughts/modfeed/src/bot/config"
	"github.com/rawthoughts/modfeed/src/data"
)

func main() {
	cfg := config.Load()

	if cfg.Token == "" {
		log.Fatal("DISCORD_TOKEN not set")
	}
	if cfg.ChannelID == "" {
		log.Fatal("CHANNEL_ID not set")
	}
	if len(cfg.ModeratorIDs) == 0 {
		log.Fatal("MODERATOR_IDS not set")
	}

	db := data.MustMySQL(cfg.MySQLDSN)
	rdb := data.MustRedis(cfg.RedisURL)

	b, err := bot.New(&cfg, db, rdb)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	if err := b.Start(); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}

	log.Println("Discord bot is running. Press CTRL-C to exit.")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	b.Stop()
	log.Println("Discord bot stopped gracefully")
}
