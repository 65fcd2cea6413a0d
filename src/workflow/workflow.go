package workflow

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rawthoughts/modfeed/src/types"
)

// MaxTextLen is the submission length ceiling, in runes.
const MaxTextLen = 1000

var (
	ErrEmptyText   = errors.New("submission text is empty")
	ErrTextTooLong = fmt.Errorf("submission text exceeds %d characters", MaxTextLen)
)

// Store is the record-store contract the workflow drives.
type Store interface {
	Create(ctx context.Context, text string) (types.Submission, error)
	Get(ctx context.Context, id uint64) (types.Submission, error)
	ListByStatus(ctx context.Context, status string) ([]types.Submission, error)
	SetStatus(ctx context.Context, id uint64, status string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// Ledger is the voting contract the workflow exposes to vote channels.
type Ledger interface {
	Toggle(ctx context.Context, id uint64, voter int64) (int, bool, error)
	HasVoted(ctx context.Context, id uint64, voter int64) (bool, error)
}

// Notifier fans a new pending submission out to reviewers. Implementations
// deliver best-effort: a failure for one reviewer must not block the rest.
type Notifier interface {
	NotifyReviewers(ctx context.Context, sub types.Submission) error
}

// Publication is the public-facing copy of an approved submission. VoteCount
// is always zero at publication, whatever the ledger held before approval.
type Publication struct {
	EventID   string
	ID        uint64
	Text      string
	VoteCount int
}

// Publisher delivers publications to the public feed.
type Publisher interface {
	Publish(ctx context.Context, pub Publication) error
}

// Stats summarizes the moderation queue and the published feed.
type Stats struct {
	Total      int64
	Pending    int64
	Approved   int64
	Rejected   int64
	TotalLikes int64
	MostLiked  *types.Submission
}

// Workflow orchestrates intake, reviewer fan-out and moderation decisions.
type Workflow struct {
	store     Store
	ledger    Ledger
	notifier  Notifier
	publisher Publisher
	sanitizer *bluemonday.Policy
}

func New(store Store, ledger Ledger, notifier Notifier, publisher Publisher) (*Workflow, error) {
	if store == nil || ledger == nil {
		return nil, errors.New("workflow: store and ledger are required")
	}
	if notifier == nil {
		return nil, errors.New("workflow: reviewer notifier is required")
	}
	if publisher == nil {
		return nil, errors.New("workflow: publisher is required")
	}
	return &Workflow{
		store:     store,
		ledger:    ledger,
		notifier:  notifier,
		publisher: publisher,
		sanitizer: bluemonday.StrictPolicy(),
	}, nil
}

// Submit validates and stores a new submission, then fans it out to
// reviewers. Fan-out failures are logged, never surfaced: the intake already
// succeeded.
func (w *Workflow) Submit(ctx context.Context, submitterID int64, text string) (types.Submission, error) {
	// Strip markup, then unescape: submissions are stored and rendered as
	// plain text, so literal & and < must survive the round trip.
	text = strings.TrimSpace(html.UnescapeString(w.sanitizer.Sanitize(text)))
	if text == "" {
		return types.Submission{}, ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTextLen {
		return types.Submission{}, ErrTextTooLong
	}

	sub, err := w.store.Create(ctx, text)
	if err != nil {
		return types.Submission{}, err
	}
	log.Printf("submission %d received from user %d", sub.ID, submitterID)

	if err := w.notifier.NotifyReviewers(ctx, sub); err != nil {
		log.Printf("notify reviewers for submission %d: %v", sub.ID, err)
	}
	return sub, nil
}

// Approve marks a pending submission approved and emits its publication.
// The published copy always starts at zero votes. A publish failure does not
// undo the approval; the event can be re-emitted by hand if needed.
func (w *Workflow) Approve(ctx context.Context, reviewerID int64, id uint64) error {
	sub, err := w.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := w.store.SetStatus(ctx, id, types.StatusApproved); err != nil {
		return err
	}
	log.Printf("submission %d approved by reviewer %d", id, reviewerID)

	pub := Publication{
		EventID:   uuid.NewString(),
		ID:        sub.ID,
		Text:      sub.Text,
		VoteCount: 0,
	}
	if err := w.publisher.Publish(ctx, pub); err != nil {
		log.Printf("publish submission %d: %v", id, err)
	}
	return nil
}

// Reject marks a pending submission rejected. Nothing is published.
func (w *Workflow) Reject(ctx context.Context, reviewerID int64, id uint64) error {
	if err := w.store.SetStatus(ctx, id, types.StatusRejected); err != nil {
		return err
	}
	log.Printf("submission %d rejected by reviewer %d", id, reviewerID)
	return nil
}

// Vote toggles the voter's like on a submission and returns the new count
// and whether the like was added.
func (w *Workflow) Vote(ctx context.Context, voterID int64, id uint64) (int, bool, error) {
	return w.ledger.Toggle(ctx, id, voterID)
}

// HasVoted reports the voter's current like state for a submission.
func (w *Workflow) HasVoted(ctx context.Context, voterID int64, id uint64) (bool, error) {
	return w.ledger.HasVoted(ctx, id, voterID)
}

// Get returns a single submission.
func (w *Workflow) Get(ctx context.Context, id uint64) (types.Submission, error) {
	return w.store.Get(ctx, id)
}

// Pending returns the moderation queue in creation order.
func (w *Workflow) Pending(ctx context.Context) ([]types.Submission, error) {
	return w.store.ListByStatus(ctx, types.StatusPending)
}

// ListByStatus returns submissions with the given status.
func (w *Workflow) ListByStatus(ctx context.Context, status string) ([]types.Submission, error) {
	return w.store.ListByStatus(ctx, status)
}

// Stats aggregates queue totals and like counts across the published feed.
func (w *Workflow) Stats(ctx context.Context) (Stats, error) {
	counts, err := w.store.CountByStatus(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		Pending:  counts[types.StatusPending],
		Approved: counts[types.StatusApproved],
		Rejected: counts[types.StatusRejected],
	}
	st.Total = st.Pending + st.Approved + st.Rejected

	approved, err := w.store.ListByStatus(ctx, types.StatusApproved)
	if err != nil {
		return Stats{}, err
	}
	for i := range approved {
		st.TotalLikes += int64(approved[i].Likes)
		if st.MostLiked == nil || approved[i].Likes > st.MostLiked.Likes {
			st.MostLiked = &approved[i]
		}
	}
	return st, nil
}
