package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rawthoughts/modfeed/src/bot/components/channel"
	"github.com/rawthoughts/modfeed/src/bot/components/intake"
	"github.com/rawthoughts/modfeed/src/bot/components/moderation"
	"github.com/rawthoughts/modfeed/src/bot/config"
	"github.com/rawthoughts/modfeed/src/data"
	"github.com/rawthoughts/modfeed/src/ledger"
	"github.com/rawthoughts/modfeed/src/store"
	"github.com/rawthoughts/modfeed/src/workflow"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Bot struct {
	config     *config.Config
	db         *gorm.DB
	redis      *redis.Client
	session    *discordgo.Session
	intake     *intake.Handler
	moderation *moderation.Handler
	monitor    *channel.Monitor
	likes      *channel.Likes
	cancelFunc context.CancelFunc
}

func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsDirectMessages

	notifier, err := moderation.NewNotifier(session, cfg.ModeratorIDs)
	if err != nil {
		return nil, err
	}

	st := store.New(db)
	// Approvals from the bot go through the same stream the API publishes
	// to; the monitor below posts them to the channel.
	wf, err := workflow.New(st, ledger.New(st), notifier, data.NewStreamPublisher(rdb))
	if err != nil {
		return nil, err
	}

	b := &Bot{
		config:     cfg,
		db:         db,
		redis:      rdb,
		session:    session,
		intake:     intake.NewHandler(wf, cfg.SubmitCooldown),
		moderation: moderation.NewHandler(wf, cfg.ModeratorIDs),
		monitor:    channel.NewMonitor(session, rdb, notifier, cfg.ChannelID),
		likes:      channel.NewLikes(wf),
	}
	b.initHandlers()
	return b, nil
}

func (b *Bot) initHandlers() {
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})

	b.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author.ID == s.State.User.ID || m.Author.Bot {
			return
		}
		if strings.HasPrefix(m.Content, "!approve") ||
			strings.HasPrefix(m.Content, "!reject") ||
			m.Content == "!pending" || m.Content == "!modstats" {
			b.moderation.HandleCommand(s, m)
			return
		}
		b.intake.HandleMessage(s, m)
	})

	b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionMessageComponent {
			return
		}
		customID := i.MessageComponentData().CustomID
		switch {
		case strings.HasPrefix(customID, "approve_"), strings.HasPrefix(customID, "reject_"):
			b.moderation.HandleInteraction(s, i)
		case strings.HasPrefix(customID, "like_"):
			b.likes.HandleInteraction(s, i)
		}
	})
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancelFunc = cancel
	go b.monitor.Run(ctx)

	return nil
}

func (b *Bot) Stop() {
	if b.cancelFunc != nil {
		b.cancelFunc()
	}
	if b.session != nil {
		b.session.Close()
	}
	if b.db != nil {
		if sqlDB, err := b.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if b.redis != nil {
		b.redis.Close()
	}
}
