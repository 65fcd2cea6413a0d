package moderation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/rawthoughts/modfeed/src/types"
)

// Notifier DMs every configured moderator when a submission enters the
// queue. Delivery is best-effort: one moderator being unreachable never
// blocks the others or fails the intake.
type Notifier struct {
	session    *discordgo.Session
	moderators []int64
}

func NewNotifier(session *discordgo.Session, moderators []int64) (*Notifier, error) {
	if len(moderators) == 0 {
		return nil, errors.New("no moderators configured")
	}
	return &Notifier{session: session, moderators: moderators}, nil
}

func (n *Notifier) NotifyReviewers(ctx context.Context, sub types.Submission) error {
	content := fmt.Sprintf("**New submission for review**\n\nID: #%d\nText: %s", sub.ID, sub.Text)
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Approve",
					Style:    discordgo.SuccessButton,
					CustomID: fmt.Sprintf("approve_%d", sub.ID),
				},
				discordgo.Button{
					Label:    "Reject",
					Style:    discordgo.DangerButton,
					CustomID: fmt.Sprintf("reject_%d", sub.ID),
				},
			},
		},
	}

	for _, moderator := range n.moderators {
		dm, err := n.session.UserChannelCreate(strconv.FormatInt(moderator, 10))
		if err != nil {
			log.Printf("open DM with moderator %d: %v", moderator, err)
			continue
		}
		_, err = n.session.ChannelMessageSendComplex(dm.ID, &discordgo.MessageSend{
			Content:    content,
			Components: components,
		})
		if err != nil {
			log.Printf("notify moderator %d about submission %d: %v", moderator, sub.ID, err)
			continue
		}
		log.Printf("submission %d sent to moderator %d", sub.ID, moderator)
	}
	return nil
}
