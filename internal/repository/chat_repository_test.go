package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "openmart/internal/errors"
	"openmart/internal/model"
	"openmart/internal/testutil"
)

func TestChatRepository_GetOrCreateThreadIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()
	seller := testutil.CreateUser(t, db, "seller", false)
	buyer := testutil.CreateUser(t, db, "buyer", false)
	listing := testutil.CreateListing(t, db, seller, nil, "Guitar", "300")

	first, created, err := repo.GetOrCreateThread(ctx, listing.ID, buyer.ID, seller.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, first.IsActive)

	second, created, err := repo.GetOrCreateThread(ctx, listing.ID, buyer.ID, seller.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	count, err := repo.CountThreads(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	found, err := repo.FindThreadFor(ctx, listing.ID, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestChatRepository_UnreadTracking(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()
	seller := testutil.CreateUser(t, db, "seller", false)
	buyer := testutil.CreateUser(t, db, "buyer", false)
	listing := testutil.CreateListing(t, db, seller, nil, "Camera", "150")
	thread, _, err := repo.GetOrCreateThread(ctx, listing.ID, buyer.ID, seller.ID)
	require.NoError(t, err)

	send := func(sender uint, text string) *model.Message {
		msg := &model.Message{ThreadID: thread.ID, SenderID: sender, Content: text}
		require.NoError(t, repo.CreateMessage(ctx, msg))
		return msg
	}
	first := send(buyer.ID, "Is it available?")
	send(buyer.ID, "Can you ship?")
	send(seller.ID, "Yes")

	unread, err := repo.UnreadCount(ctx, thread.ID, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	total, err := repo.TotalUnread(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	counts, err := repo.UnreadCounts(ctx, []uuid.UUID{thread.ID}, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[thread.ID])

	flipped, err := repo.MarkRead(ctx, thread.ID, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), flipped)

	unread, err = repo.UnreadCount(ctx, thread.ID, seller.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	// the buyer's unread reply is untouched
	unread, err = repo.UnreadCount(ctx, thread.ID, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	after, err := repo.MessagesAfter(ctx, thread.ID, first.ID)
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, "Can you ship?", after[0].Content)
	assert.Equal(t, "Yes", after[1].Content)

	recent, err := repo.RecentMessages(ctx, thread.ID, 50)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "Yes", recent[0].Content)

	all, err := repo.Messages(ctx, thread.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, first.ID, all[0].ID)
	require.NotNil(t, all[0].Sender)
	assert.Equal(t, "buyer", all[0].Sender.Username)
}

func TestChatRepository_ListThreads(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()
	seller := testutil.CreateUser(t, db, "seller", false)
	buyer := testutil.CreateUser(t, db, "buyer", false)
	stranger := testutil.CreateUser(t, db, "stranger", false)
	a := testutil.CreateListing(t, db, seller, nil, "A", "1")
	b := testutil.CreateListing(t, db, seller, nil, "B", "1")

	older, _, err := repo.GetOrCreateThread(ctx, a.ID, buyer.ID, seller.ID)
	require.NoError(t, err)
	newer, _, err := repo.GetOrCreateThread(ctx, b.ID, buyer.ID, seller.ID)
	require.NoError(t, err)
	require.NoError(t, repo.CreateMessage(ctx, &model.Message{ThreadID: older.ID, SenderID: buyer.ID, Content: "bump"}))

	threads, err := repo.ListThreads(ctx, seller.ID, 0)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, older.ID, threads[0].ID, "latest activity first")
	assert.Equal(t, newer.ID, threads[1].ID)
	require.NotNil(t, threads[0].Buyer)
	assert.Equal(t, "buyer", threads[0].Buyer.Username)

	none, err := repo.ListThreads(ctx, stranger.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestChatRepository_Blocking(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", false)
	bob := testutil.CreateUser(t, db, "bob", false)

	blocked, err := repo.IsBlockedEither(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, repo.Block(ctx, &model.BlockedUser{BlockerID: alice.ID, BlockedID: bob.ID}))
	err = repo.Block(ctx, &model.BlockedUser{BlockerID: alice.ID, BlockedID: bob.ID})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyBlocked)

	blocked, err = repo.IsBlockedEither(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, blocked)

	removed, err := repo.Unblock(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Unblock(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}
