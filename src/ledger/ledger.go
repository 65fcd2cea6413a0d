package ledger

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/rawthoughts/modfeed/src/types"
)

// maxSwapAttempts bounds the optimistic retry loop in Toggle.
const maxSwapAttempts = 5

// ErrContended is returned when a toggle repeatedly loses the voter-set swap
// to concurrent writers. The caller should ask the user to retry.
var ErrContended = errors.New("vote ledger contended")

// Store is the slice of the record store the ledger needs.
type Store interface {
	Get(ctx context.Context, id uint64) (types.Submission, error)
	SwapVoters(ctx context.Context, id uint64, old, updated string, count int) (bool, error)
}

// Ledger maintains the per-submission set of voter identities and derives
// the displayed count from it. The count is never trusted independently of
// the set.
type Ledger struct {
	store Store
}

func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// ParseVoters turns the serialized voter field into a set of ids. Blank and
// non-numeric tokens are treated as absent rather than failing, so malformed
// ledger content recovers locally.
func ParseVoters(raw string) map[int64]struct{} {
	set := make(map[int64]struct{})
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		id, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

// SerializeVoters renders a voter set as ascending comma-joined decimal ids
// with no surrounding whitespace. The empty set serializes to "".
func SerializeVoters(set map[int64]struct{}) string {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// HasVoted reports whether voter is in the submission's voter set. An empty
// or unparsable set reads as "not voted".
func (l *Ledger) HasVoted(ctx context.Context, id uint64, voter int64) (bool, error) {
	sub, err := l.store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	_, ok := ParseVoters(sub.Voters)[voter]
	return ok, nil
}

// Toggle adds voter to the submission's set if absent, removes it if
// present, and reports the new cardinality along with which action occurred.
// The set and the derived count are written back in a single conditional
// swap; losing the swap to a concurrent toggle triggers a re-read and retry.
func (l *Ledger) Toggle(ctx context.Context, id uint64, voter int64) (int, bool, error) {
	for attempt := 0; attempt < maxSwapAttempts; attempt++ {
		sub, err := l.store.Get(ctx, id)
		if err != nil {
			return 0, false, err
		}

		set := ParseVoters(sub.Voters)
		_, present := set[voter]
		if present {
			delete(set, voter)
		} else {
			set[voter] = struct{}{}
		}

		swapped, err := l.store.SwapVoters(ctx, id, sub.Voters, SerializeVoters(set), len(set))
		if err != nil {
			return 0, false, err
		}
		if swapped {
			return len(set), !present, nil
		}
	}
	return 0, false, ErrContended
}
