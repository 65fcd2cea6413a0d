package channel

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rawthoughts/modfeed/src/data"
	"github.com/rawthoughts/modfeed/src/types"
	"github.com/rawthoughts/modfeed/src/workflow"
	"github.com/redis/go-redis/v9"
)

// Monitor consumes the redis streams feeding the bot: published submissions
// are posted to the public channel, pending notices are fanned out to
// moderators. Both kinds may originate in the API process.
type Monitor struct {
	session   *discordgo.Session
	rdb       *redis.Client
	notifier  workflow.Notifier
	channelID string
}

func NewMonitor(session *discordgo.Session, rdb *redis.Client, notifier workflow.Notifier, channelID string) *Monitor {
	return &Monitor{
		session:   session,
		rdb:       rdb,
		notifier:  notifier,
		channelID: channelID,
	}
}

func (m *Monitor) Run(ctx context.Context) {
	log.Println("Starting stream monitor")

	lastPublished := "$"
	lastPending := "$"

	for {
		if ctx.Err() != nil {
			log.Println("Stopping stream monitor")
			return
		}

		res, err := m.rdb.XRead(ctx, &redis.XReadArgs{
			Streams: []string{data.StreamPublished, data.StreamPending, lastPublished, lastPending},
			Block:   5 * time.Second,
		}).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			log.Printf("stream read: %v", err)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				switch stream.Stream {
				case data.StreamPublished:
					lastPublished = msg.ID
					m.handlePublished(msg.Values)
				case data.StreamPending:
					lastPending = msg.ID
					m.handlePending(ctx, msg.Values)
				}
			}
		}
	}
}

func (m *Monitor) handlePublished(values map[string]interface{}) {
	id, text, ok := parseEvent(values)
	if !ok {
		log.Printf("malformed published event: %v", values)
		return
	}

	_, err := m.session.ChannelMessageSendComplex(m.channelID, &discordgo.MessageSend{
		Content:    FormatPost(id, text),
		Components: []discordgo.MessageComponent{likeRow(id, 0)},
	})
	if err != nil {
		log.Printf("post submission %d to channel: %v", id, err)
		return
	}
	log.Printf("submission %d published to channel", id)
}

func (m *Monitor) handlePending(ctx context.Context, values map[string]interface{}) {
	id, text, ok := parseEvent(values)
	if !ok {
		log.Printf("malformed pending event: %v", values)
		return
	}

	sub := types.Submission{ID: id, Text: text, Status: types.StatusPending}
	if err := m.notifier.NotifyReviewers(ctx, sub); err != nil {
		log.Printf("fan out submission %d: %v", id, err)
	}
}

func parseEvent(values map[string]interface{}) (uint64, string, bool) {
	rawID, _ := values["id"].(string)
	text, _ := values["text"].(string)
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || text == "" {
		return 0, "", false
	}
	return id, text, true
}

// FormatPost renders the public copy of an approved submission.
func FormatPost(id uint64, text string) string {
	return fmt.Sprintf("💭 **Submission #%d**\n\n%s", id, text)
}

func likeRow(id uint64, count int) discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    fmt.Sprintf("👍 %d", count),
				Style:    discordgo.PrimaryButton,
				CustomID: fmt.Sprintf("like_%d", id),
			},
		},
	}
}
