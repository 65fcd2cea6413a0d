package channel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rawthoughts/modfeed/src/store"
	"github.com/rawthoughts/modfeed/src/workflow"
)

// Likes toggles votes when readers press the like button under a published
// submission.
type Likes struct {
	wf *workflow.Workflow
}

func NewLikes(wf *workflow.Workflow) *Likes {
	return &Likes{wf: wf}
}

func (h *Likes) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	idStr, ok := strings.CutPrefix(customID, "like_")
	if !ok {
		return
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return
	}

	user := i.User
	if user == nil && i.Member != nil {
		user = i.Member.User
	}
	if user == nil {
		return
	}
	voterID, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return
	}

	count, added, err := h.wf.Vote(context.Background(), voterID, id)
	if err != nil {
		text := "Could not register your vote. Please try again."
		if errors.Is(err, store.ErrNotFound) {
			text = "This submission no longer exists."
		}
		respondEphemeral(s, i, text)
		return
	}

	// Refresh the shared post with the new count, then ack the voter
	// privately with their own toggle direction.
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    i.Message.Content,
			Components: []discordgo.MessageComponent{likeRow(id, count)},
		},
	})
	if err != nil {
		log.Printf("update like count on %d: %v", id, err)
		return
	}

	ack := fmt.Sprintf("👍 Like added! Total: %d", count)
	if !added {
		ack = fmt.Sprintf("👎 Like removed! Total: %d", count)
	}
	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: ack,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		log.Printf("like followup on %d: %v", id, err)
	}
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("ephemeral response: %v", err)
	}
}
