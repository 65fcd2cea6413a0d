package store

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rawthoughts/modfeed/src/status"
	"github.com/rawthoughts/modfeed/src/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&types.Submission{}))
	return New(db)
}

func TestCreateAssignsMonotonicIDs(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	var last uint64
	for i := 0; i < 5; i++ {
		sub, err := st.Create(ctx, fmt.Sprintf("problem %d", i))
		require.NoError(t, err)
		assert.Greater(t, sub.ID, last)
		last = sub.ID
	}
}

func TestCreateDefaults(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	sub, err := st.Create(ctx, "noisy neighbors")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), sub.ID)
	assert.Equal(t, types.StatusPending, sub.Status)
	assert.Equal(t, 0, sub.Likes)
	assert.Equal(t, "", sub.Voters)
	assert.False(t, sub.CreatedAt.IsZero())
}

func TestGetNotFound(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetStatusTerminality(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	sub, err := st.Create(ctx, "noisy neighbors")
	require.NoError(t, err)

	require.NoError(t, st.SetStatus(ctx, sub.ID, types.StatusApproved))

	// A second decision, whatever the target, reports already decided and
	// leaves the status untouched.
	err = st.SetStatus(ctx, sub.ID, types.StatusRejected)
	assert.ErrorIs(t, err, status.ErrAlreadyDecided)
	err = st.SetStatus(ctx, sub.ID, types.StatusApproved)
	assert.ErrorIs(t, err, status.ErrAlreadyDecided)

	got, err := st.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusApproved, got.Status)
}

func TestSetStatusNotFound(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	err := st.SetStatus(ctx, 999, types.StatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetStatusRejectsBadTarget(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	sub, err := st.Create(ctx, "noisy neighbors")
	require.NoError(t, err)

	err = st.SetStatus(ctx, sub.ID, "published")
	assert.ErrorIs(t, err, status.ErrBadStatus)
	err = st.SetStatus(ctx, sub.ID, types.StatusPending)
	assert.ErrorIs(t, err, status.ErrBadStatus)

	got, err := st.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, got.Status)
}

func TestListByStatusCreationOrder(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	for i := 0; i < 3; i++ {
		_, err := st.Create(ctx, fmt.Sprintf("problem %d", i))
		require.NoError(t, err)
	}
	require.NoError(t, st.SetStatus(ctx, 2, types.StatusApproved))

	pending, err := st.ListByStatus(ctx, types.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, uint64(1), pending[0].ID)
	assert.Equal(t, uint64(3), pending[1].ID)

	approved, err := st.ListByStatus(ctx, types.StatusApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, uint64(2), approved[0].ID)
}

func TestSwapVoters(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	sub, err := st.Create(ctx, "noisy neighbors")
	require.NoError(t, err)

	swapped, err := st.SwapVoters(ctx, sub.ID, "", "42", 1)
	require.NoError(t, err)
	assert.True(t, swapped)

	got, err := st.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "42", got.Voters)
	assert.Equal(t, 1, got.Likes)

	// Swapping against a stale snapshot must fail and change nothing.
	swapped, err = st.SwapVoters(ctx, sub.ID, "", "7", 1)
	require.NoError(t, err)
	assert.False(t, swapped)

	got, err = st.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "42", got.Voters)
}

func TestSwapVotersMissingRecord(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	swapped, err := st.SwapVoters(ctx, 999, "", "42", 1)
	require.NoError(t, err)
	assert.False(t, swapped)
}

func TestSetVoteCount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	sub, err := st.Create(ctx, "noisy neighbors")
	require.NoError(t, err)

	require.NoError(t, st.SetVoteCount(ctx, sub.ID, 3))
	got, err := st.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Likes)

	// Writing the same value again must stay a success.
	require.NoError(t, st.SetVoteCount(ctx, sub.ID, 3))

	assert.ErrorIs(t, st.SetVoteCount(ctx, 999, 3), ErrNotFound)
}

func TestCountByStatus(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	for i := 0; i < 4; i++ {
		_, err := st.Create(ctx, fmt.Sprintf("problem %d", i))
		require.NoError(t, err)
	}
	require.NoError(t, st.SetStatus(ctx, 1, types.StatusApproved))
	require.NoError(t, st.SetStatus(ctx, 2, types.StatusRejected))

	counts, err := st.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[types.StatusPending])
	assert.Equal(t, int64(1), counts[types.StatusApproved])
	assert.Equal(t, int64(1), counts[types.StatusRejected])
}

func TestAll(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	for i := 0; i < 3; i++ {
		_, err := st.Create(ctx, fmt.Sprintf("problem %d", i))
		require.NoError(t, err)
	}

	subs, err := st.All(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	for i, sub := range subs {
		assert.Equal(t, uint64(i+1), sub.ID)
	}
}
