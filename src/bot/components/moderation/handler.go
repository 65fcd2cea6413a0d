package moderation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rawthoughts/modfeed/src/status"
	"github.com/rawthoughts/modfeed/src/store"
	"github.com/rawthoughts/modfeed/src/workflow"
)

const pendingPreviewLen = 100

// Handler processes moderator decisions arriving as button presses or text
// commands.
type Handler struct {
	wf         *workflow.Workflow
	moderators map[int64]bool
}

func NewHandler(wf *workflow.Workflow, moderators []int64) *Handler {
	set := make(map[int64]bool, len(moderators))
	for _, id := range moderators {
		set[id] = true
	}
	return &Handler{wf: wf, moderators: set}
}

func (h *Handler) isModerator(discordID string) bool {
	id, err := strconv.ParseInt(discordID, 10, 64)
	return err == nil && h.moderators[id]
}

// HandleInteraction resolves approve_/reject_ button presses.
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	decision, idStr, ok := strings.Cut(customID, "_")
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
	if user == nil || !h.isModerator(user.ID) {
		respondEphemeral(s, i, "You are not a configured moderator.")
		return
	}
	reviewerID, _ := strconv.ParseInt(user.ID, 10, 64)

	ctx := context.Background()
	switch decision {
	case "approve":
		err = h.wf.Approve(ctx, reviewerID, id)
	case "reject":
		err = h.wf.Reject(ctx, reviewerID, id)
	default:
		return
	}

	if err != nil {
		respondEphemeral(s, i, decisionErrorText(id, err))
		return
	}

	var result string
	if decision == "approve" {
		result = fmt.Sprintf("✅ **Approved**\n\nID: #%d\nStatus: queued for the public channel", id)
	} else {
		result = fmt.Sprintf("❌ **Rejected**\n\nID: #%d\nStatus: rejected by moderator", id)
	}

	// Replace the review prompt so the buttons disappear.
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    result,
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		log.Printf("respond to decision on %d: %v", id, err)
	}
}

// HandleCommand resolves !pending, !modstats, !approve and !reject.
func (h *Handler) HandleCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	if !h.isModerator(m.Author.ID) {
		return
	}

	parts := strings.Fields(m.Content)
	if len(parts) == 0 {
		return
	}

	ctx := context.Background()
	switch parts[0] {
	case "!pending":
		h.showPending(ctx, s, m)
	case "!modstats":
		h.showStats(ctx, s, m)
	case "!approve", "!reject":
		if len(parts) < 2 {
			s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Usage: %s <submission id>", parts[0]))
			return
		}
		id, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			s.ChannelMessageSend(m.ChannelID, "Submission id must be a number.")
			return
		}
		reviewerID, _ := strconv.ParseInt(m.Author.ID, 10, 64)

		if parts[0] == "!approve" {
			err = h.wf.Approve(ctx, reviewerID, id)
		} else {
			err = h.wf.Reject(ctx, reviewerID, id)
		}
		if err != nil {
			s.ChannelMessageSend(m.ChannelID, decisionErrorText(id, err))
			return
		}
		if parts[0] == "!approve" {
			s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("✅ Submission #%d approved and queued for publication.", id))
		} else {
			s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("❌ Submission #%d rejected.", id))
		}
	}
}

func (h *Handler) showPending(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	pending, err := h.wf.Pending(ctx)
	if err != nil {
		s.ChannelMessageSend(m.ChannelID, "Failed to load the queue. Please try again.")
		return
	}
	if len(pending) == 0 {
		s.ChannelMessageSend(m.ChannelID, "📭 Nothing waiting for moderation.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "⏳ **Waiting for moderation (%d):**\n\n", len(pending))
	for _, sub := range pending {
		text := sub.Text
		if len(text) > pendingPreviewLen {
			text = text[:pendingPreviewLen] + "..."
		}
		fmt.Fprintf(&b, "**#%d** — %s\n📅 %s\n\n", sub.ID, text, sub.CreatedAt.Format("2006-01-02 15:04"))
	}
	sendChunked(s, m.ChannelID, b.String())
}

func (h *Handler) showStats(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	st, err := h.wf.Stats(ctx)
	if err != nil {
		s.ChannelMessageSend(m.ChannelID, "Failed to load stats. Please try again.")
		return
	}

	var b strings.Builder
	b.WriteString("📊 **Moderation stats**\n\n")
	fmt.Fprintf(&b, "Total submissions: %d\n", st.Total)
	fmt.Fprintf(&b, "Awaiting moderation: %d\n", st.Pending)
	fmt.Fprintf(&b, "Approved: %d\n", st.Approved)
	fmt.Fprintf(&b, "Rejected: %d\n", st.Rejected)
	fmt.Fprintf(&b, "Total likes: %d\n", st.TotalLikes)
	if st.MostLiked != nil {
		fmt.Fprintf(&b, "Most liked: #%d (%d likes)\n", st.MostLiked.ID, st.MostLiked.Likes)
	}
	s.ChannelMessageSend(m.ChannelID, b.String())
}

// sendChunked splits long listings under the Discord message size cap.
func sendChunked(s *discordgo.Session, channelID, text string) {
	const limit = 1900
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = limit
		}
		s.ChannelMessageSend(channelID, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		s.ChannelMessageSend(channelID, text)
	}
}

func decisionErrorText(id uint64, err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Sprintf("Submission #%d was not found.", id)
	case errors.Is(err, status.ErrAlreadyDecided):
		return fmt.Sprintf("Submission #%d was already processed.", id)
	default:
		return "The action didn't apply. Please try again."
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
