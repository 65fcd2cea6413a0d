package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rawthoughts/modfeed/src/status"
	"github.com/rawthoughts/modfeed/src/store"
	"github.com/rawthoughts/modfeed/src/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	subs      map[uint64]*types.Submission
	nextID    uint64
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{subs: make(map[uint64]*types.Submission)}
}

func (f *fakeStore) Create(ctx context.Context, text string) (types.Submission, error) {
	if f.createErr != nil {
		return types.Submission{}, f.createErr
	}
	f.nextID++
	sub := &types.Submission{
		ID:        f.nextID,
		Text:      text,
		Status:    types.StatusPending,
		CreatedAt: time.Now(),
	}
	f.subs[sub.ID] = sub
	return *sub, nil
}

func (f *fakeStore) Get(ctx context.Context, id uint64) (types.Submission, error) {
	sub, ok := f.subs[id]
	if !ok {
		return types.Submission{}, store.ErrNotFound
	}
	return *sub, nil
}

func (f *fakeStore) ListByStatus(ctx context.Context, st string) ([]types.Submission, error) {
	var out []types.Submission
	for id := uint64(1); id <= f.nextID; id++ {
		if sub, ok := f.subs[id]; ok && sub.Status == st {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeStore) SetStatus(ctx context.Context, id uint64, target string) error {
	sub, ok := f.subs[id]
	if !ok {
		return store.ErrNotFound
	}
	if err := status.Transition(sub.Status, target); err != nil {
		return err
	}
	sub.Status = target
	return nil
}

func (f *fakeStore) CountByStatus(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, sub := range f.subs {
		out[sub.Status]++
	}
	return out, nil
}

type fakeLedger struct {
	count int
	added bool
	err   error
}

func (f *fakeLedger) Toggle(ctx context.Context, id uint64, voter int64) (int, bool, error) {
	return f.count, f.added, f.err
}

func (f *fakeLedger) HasVoted(ctx context.Context, id uint64, voter int64) (bool, error) {
	return f.added, f.err
}

type fakeNotifier struct {
	notified []types.Submission
	err      error
}

func (f *fakeNotifier) NotifyReviewers(ctx context.Context, sub types.Submission) error {
	f.notified = append(f.notified, sub)
	return f.err
}

type fakePublisher struct {
	published []Publication
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, pub Publication) error {
	f.published = append(f.published, pub)
	return f.err
}

type fixture struct {
	store     *fakeStore
	notifier  *fakeNotifier
	publisher *fakePublisher
	wf        *Workflow
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		store:     newFakeStore(),
		notifier:  &fakeNotifier{},
		publisher: &fakePublisher{},
	}
	wf, err := New(fx.store, &fakeLedger{}, fx.notifier, fx.publisher)
	require.NoError(t, err)
	fx.wf = wf
	return fx
}

func TestNewRequiresCollaborators(t *testing.T) {
	st := newFakeStore()
	lg := &fakeLedger{}

	_, err := New(nil, lg, &fakeNotifier{}, &fakePublisher{})
	assert.Error(t, err)
	_, err = New(st, lg, nil, &fakePublisher{})
	assert.Error(t, err)
	_, err = New(st, lg, &fakeNotifier{}, nil)
	assert.Error(t, err)
}

func TestSubmitCreatesPending(t *testing.T) {
	fx := newFixture(t)

	sub, err := fx.wf.Submit(context.Background(), 100, "noisy neighbors")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), sub.ID)
	assert.Equal(t, types.StatusPending, sub.Status)
	assert.Equal(t, 0, sub.Likes)

	require.Len(t, fx.notifier.notified, 1)
	assert.Equal(t, sub.ID, fx.notifier.notified[0].ID)
}

func TestSubmitValidation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.wf.Submit(ctx, 100, "   ")
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = fx.wf.Submit(ctx, 100, strings.Repeat("я", MaxTextLen+1))
	assert.ErrorIs(t, err, ErrTextTooLong)

	// Exactly at the limit passes.
	_, err = fx.wf.Submit(ctx, 100, strings.Repeat("я", MaxTextLen))
	assert.NoError(t, err)

	assert.Len(t, fx.notifier.notified, 1)
}

func TestSubmitStripsMarkup(t *testing.T) {
	fx := newFixture(t)

	sub, err := fx.wf.Submit(context.Background(), 100, "hello <b>world</b><script>alert(1)</script>")
	require.NoError(t, err)
	assert.Equal(t, "hello world", sub.Text)

	// Plain text with markup-significant characters survives untouched.
	sub, err = fx.wf.Submit(context.Background(), 100, "cats & dogs")
	require.NoError(t, err)
	assert.Equal(t, "cats & dogs", sub.Text)
}

func TestSubmitSurvivesNotifierFailure(t *testing.T) {
	fx := newFixture(t)
	fx.notifier.err = errors.New("reviewer unreachable")

	sub, err := fx.wf.Submit(context.Background(), 100, "noisy neighbors")
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, sub.Status)
}

func TestApprovePublishesAtZero(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	sub, err := fx.wf.Submit(ctx, 100, "noisy neighbors")
	require.NoError(t, err)

	// Pre-approval ledger state must not leak into the published copy.
	fx.store.subs[sub.ID].Likes = 5
	fx.store.subs[sub.ID].Voters = "1,2,3,4,5"

	require.NoError(t, fx.wf.Approve(ctx, 200, sub.ID))

	require.Len(t, fx.publisher.published, 1)
	pub := fx.publisher.published[0]
	assert.Equal(t, sub.ID, pub.ID)
	assert.Equal(t, "noisy neighbors", pub.Text)
	assert.Equal(t, 0, pub.VoteCount)
	assert.NotEmpty(t, pub.EventID)
}

func TestApproveAlreadyDecided(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	sub, err := fx.wf.Submit(ctx, 100, "noisy neighbors")
	require.NoError(t, err)
	require.NoError(t, fx.wf.Approve(ctx, 200, sub.ID))

	err = fx.wf.Approve(ctx, 201, sub.ID)
	assert.ErrorIs(t, err, status.ErrAlreadyDecided)
	err = fx.wf.Reject(ctx, 201, sub.ID)
	assert.ErrorIs(t, err, status.ErrAlreadyDecided)

	// Only the first decision published anything.
	assert.Len(t, fx.publisher.published, 1)
}

func TestApproveNotFound(t *testing.T) {
	fx := newFixture(t)

	err := fx.wf.Approve(context.Background(), 200, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, fx.publisher.published)
}

func TestApproveStandsWhenPublishFails(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.publisher.err = errors.New("stream down")

	sub, err := fx.wf.Submit(ctx, 100, "noisy neighbors")
	require.NoError(t, err)

	require.NoError(t, fx.wf.Approve(ctx, 200, sub.ID))
	got, err := fx.wf.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusApproved, got.Status)
}

func TestRejectDoesNotPublish(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	sub, err := fx.wf.Submit(ctx, 100, "noisy neighbors")
	require.NoError(t, err)

	require.NoError(t, fx.wf.Reject(ctx, 200, sub.ID))
	assert.Empty(t, fx.publisher.published)

	got, err := fx.wf.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusRejected, got.Status)
}

func TestPending(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		_, err := fx.wf.Submit(ctx, 100, text)
		require.NoError(t, err)
	}
	require.NoError(t, fx.wf.Approve(ctx, 200, 2))

	pending, err := fx.wf.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, uint64(1), pending[0].ID)
	assert.Equal(t, uint64(3), pending[1].ID)
}

func TestStats(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three", "four"} {
		_, err := fx.wf.Submit(ctx, 100, text)
		require.NoError(t, err)
	}
	require.NoError(t, fx.wf.Approve(ctx, 200, 1))
	require.NoError(t, fx.wf.Approve(ctx, 200, 2))
	require.NoError(t, fx.wf.Reject(ctx, 200, 3))
	fx.store.subs[1].Likes = 2
	fx.store.subs[2].Likes = 7

	st, err := fx.wf.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), st.Total)
	assert.Equal(t, int64(1), st.Pending)
	assert.Equal(t, int64(2), st.Approved)
	assert.Equal(t, int64(1), st.Rejected)
	assert.Equal(t, int64(9), st.TotalLikes)
	require.NotNil(t, st.MostLiked)
	assert.Equal(t, uint64(2), st.MostLiked.ID)
}

func TestVoteDelegates(t *testing.T) {
	fx := newFixture(t)
	wf, err := New(fx.store, &fakeLedger{count: 3, added: true}, fx.notifier, fx.publisher)
	require.NoError(t, err)

	count, added, err := wf.Vote(context.Background(), 42, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.True(t, added)
}
