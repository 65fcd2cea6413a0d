package intake

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rawthoughts/modfeed/src/workflow"
)

const welcomeMessage = "Welcome to the feed! DM me the problem that's bugging you. " +
	"If moderators approve it, it shows up in the public channel where anyone can vote on it."

// Handler receives direct messages and turns them into pending submissions.
type Handler struct {
	wf          *workflow.Workflow
	rateLimiter *RateLimiter
}

func NewHandler(wf *workflow.Workflow, cooldown time.Duration) *Handler {
	rl := NewRateLimiter(cooldown)
	rl.StartCleanup(5 * time.Minute)
	return &Handler{wf: wf, rateLimiter: rl}
}

// HandleMessage processes a DM from a prospective submitter.
func (h *Handler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.GuildID != "" {
		return // DM intake only
	}

	if m.Content == "!start" || m.Content == "!help" {
		s.ChannelMessageSend(m.ChannelID, welcomeMessage)
		return
	}

	if m.Content == "" || len(m.Attachments) > 0 {
		s.ChannelMessageSend(m.ChannelID, "Please send plain text describing your problem.")
		return
	}

	if !h.rateLimiter.CanUse(m.Author.ID) {
		wait := h.rateLimiter.TimeUntilNext(m.Author.ID)
		s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("Please wait %d seconds before submitting again.", int(wait.Seconds())+1))
		return
	}

	submitterID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		log.Printf("unparsable author id %q", m.Author.ID)
		return
	}

	sub, err := h.wf.Submit(context.Background(), submitterID, m.Content)
	switch {
	case errors.Is(err, workflow.ErrEmptyText):
		s.ChannelMessageSend(m.ChannelID, "Please send the text of your problem.")
	case errors.Is(err, workflow.ErrTextTooLong):
		s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("That's too long. Please keep it under %d characters.", workflow.MaxTextLen))
	case err != nil:
		log.Printf("intake from %s: %v", m.Author.ID, err)
		s.ChannelMessageSend(m.ChannelID, "Something went wrong saving your submission. Please try again later.")
	default:
		s.ChannelMessageSend(m.ChannelID, fmt.Sprintf(
			"Your submission was received!\n\nID: #%d\nStatus: awaiting moderation\n\n"+
				"If approved, it will appear in the public channel with a vote button.", sub.ID))
	}
}
