package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"

	apperrors "openmart/internal/errors"
	"openmart/internal/model"
	"openmart/internal/repository"
	"openmart/internal/storage"
)

// pollWindow is how many messages a cursorless poll returns.
const pollWindow = 50

// ThreadSummary is one row of the chat list.
type ThreadSummary struct {
	Thread       model.ChatThread `json:"thread"`
	OtherUser    *model.User      `json:"other_user"`
	HasUnread    bool             `json:"has_unread"`
	UnreadCount  int64            `json:"unread_count"`
	ListingImage string           `json:"listing_image,omitempty"`
}

// ThreadView is an opened conversation.
type ThreadView struct {
	Thread    *model.ChatThread `json:"thread"`
	OtherUser *model.User       `json:"other_user"`
	Messages  []model.Message   `json:"messages"`
}

// PollResult carries polled messages and what is still unread for the caller.
type PollResult struct {
	Messages    []model.Message
	UnreadCount int64
}

// ChatService handles buyer/seller conversations.
type ChatService interface {
	List(ctx context.Context, user *model.User) ([]ThreadSummary, error)
	Open(ctx context.Context, user *model.User, threadID uuid.UUID) (*ThreadView, error)
	Start(ctx context.Context, user *model.User, listingID uuid.UUID) (*model.ChatThread, bool, error)
	Send(ctx context.Context, user *model.User, threadID uuid.UUID, content string, image *multipart.FileHeader) (*model.Message, error)
	Poll(ctx context.Context, user *model.User, threadID uuid.UUID, lastMessageID *uint) (*PollResult, error)
	Block(ctx context.Context, user *model.User, blockedID uint, reason string) error
	Unblock(ctx context.Context, user *model.User, blockedID uint) error
}

type chatService struct {
	chats    repository.ChatRepository
	listings repository.ListingRepository
	users    repository.UserRepository
	store    storage.ImageStore
}

// NewChatService creates a new chat service.
func NewChatService(
	chats repository.ChatRepository,
	listings repository.ListingRepository,
	users repository.UserRepository,
	store storage.ImageStore,
) ChatService {
	return &chatService{chats: chats, listings: listings, users: users, store: store}
}

func otherUser(thread *model.ChatThread, userID uint) *model.User {
	if thread.BuyerID == userID {
		return thread.Seller
	}
	return thread.Buyer
}

func listingImage(thread *model.ChatThread) string {
	if thread.Listing == nil {
		return ""
	}
	if image := thread.Listing.PrimaryImage(); image != nil {
		return image.URL
	}
	return ""
}

// participantThread loads a thread the user takes part in. Threads of other
// users are reported as missing.
func (s *chatService) participantThread(ctx context.Context, user *model.User, threadID uuid.UUID) (*model.ChatThread, error) {
	thread, err := s.chats.FindThread(ctx, threadID)
	if err != nil {
		return nil, translate(err, apperrors.ErrThreadNotFound, "find thread")
	}
	if !thread.HasParticipant(user.ID) {
		return nil, apperrors.ErrThreadNotFound
	}
	return thread, nil
}

func (s *chatService) List(ctx context.Context, user *model.User) ([]ThreadSummary, error) {
	threads, err := s.chats.ListThreads(ctx, user.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	ids := make([]uuid.UUID, len(threads))
	for i := range threads {
		ids[i] = threads[i].ID
	}
	counts, err := s.chats.UnreadCounts(ctx, ids, user.ID)
	if err != nil {
		return nil, fmt.Errorf("unread counts: %w", err)
	}

	summaries := make([]ThreadSummary, len(threads))
	for i := range threads {
		unread := counts[threads[i].ID]
		summaries[i] = ThreadSummary{
			Thread:       threads[i],
			OtherUser:    otherUser(&threads[i], user.ID),
			HasUnread:    unread > 0,
			UnreadCount:  unread,
			ListingImage: listingImage(&threads[i]),
		}
	}
	return summaries, nil
}

// Open marks the other participant's messages as read and returns the
// conversation in chronological order.
func (s *chatService) Open(ctx context.Context, user *model.User, threadID uuid.UUID) (*ThreadView, error) {
	thread, err := s.participantThread(ctx, user, threadID)
	if err != nil {
		return nil, err
	}
	if _, err := s.chats.MarkRead(ctx, threadID, user.ID); err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	messages, err := s.chats.Messages(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return &ThreadView{Thread: thread, OtherUser: otherUser(thread, user.ID), Messages: messages}, nil
}

// Start returns the caller's thread for an active listing, creating it on first contact.
func (s *chatService) Start(ctx context.Context, user *model.User, listingID uuid.UUID) (*model.ChatThread, bool, error) {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, false, translate(err, apperrors.ErrListingNotFound, "find listing")
	}
	if !listing.IsActive {
		return nil, false, apperrors.ErrListingNotFound
	}
	if listing.SellerID == user.ID {
		return nil, false, apperrors.ErrSelfChat
	}
	thread, created, err := s.chats.GetOrCreateThread(ctx, listingID, user.ID, listing.SellerID)
	if err != nil {
		return nil, false, fmt.Errorf("get or create thread: %w", err)
	}
	if created {
		slog.InfoContext(ctx, "chat thread started", "thread_id", thread.ID, "listing_id", listingID, "buyer_id", user.ID)
	}
	return thread, created, nil
}

// Send stores a message with trimmed text and an optional image. Messages with
// neither are rejected and nothing is stored.
func (s *chatService) Send(ctx context.Context, user *model.User, threadID uuid.UUID, content string, image *multipart.FileHeader) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" && image == nil {
		return nil, apperrors.ErrEmptyMessage
	}

	thread, err := s.participantThread(ctx, user, threadID)
	if err != nil {
		return nil, err
	}
	blocked, err := s.chats.IsBlockedEither(ctx, user.ID, thread.OtherParticipant(user.ID))
	if err != nil {
		return nil, fmt.Errorf("check block: %w", err)
	}
	if blocked {
		return nil, apperrors.ErrBlocked
	}

	message := &model.Message{ThreadID: threadID, SenderID: user.ID, Content: content}
	if image != nil {
		if message.ImageURL, err = s.store.Save(ctx, storage.FolderChat, image); err != nil {
			return nil, err
		}
	}
	if err := s.chats.CreateMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	message.Sender = user
	return message, nil
}

// Poll returns messages after lastMessageID in ascending order or, without a
// cursor, the most recent window newest first. Polling does not mark anything
// read; the result reports how many messages the caller has yet to open.
func (s *chatService) Poll(ctx context.Context, user *model.User, threadID uuid.UUID, lastMessageID *uint) (*PollResult, error) {
	if _, err := s.participantThread(ctx, user, threadID); err != nil {
		return nil, err
	}
	var (
		result PollResult
		err    error
	)
	if lastMessageID != nil {
		result.Messages, err = s.chats.MessagesAfter(ctx, threadID, *lastMessageID)
	} else {
		result.Messages, err = s.chats.RecentMessages(ctx, threadID, pollWindow)
	}
	if err != nil {
		return nil, fmt.Errorf("poll messages: %w", err)
	}
	if result.UnreadCount, err = s.chats.UnreadCount(ctx, threadID, user.ID); err != nil {
		return nil, fmt.Errorf("unread count: %w", err)
	}
	return &result, nil
}

func (s *chatService) Block(ctx context.Context, user *model.User, blockedID uint, reason string) error {
	if user.ID == blockedID {
		return apperrors.ErrSelfBlock
	}
	if _, err := s.users.FindByID(ctx, blockedID); err != nil {
		return translate(err, apperrors.ErrUserNotFound, "find user")
	}
	err := s.chats.Block(ctx, &model.BlockedUser{BlockerID: user.ID, BlockedID: blockedID, Reason: reason})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "user blocked", "blocker_id", user.ID, "blocked_id", blockedID)
	return nil
}

func (s *chatService) Unblock(ctx context.Context, user *model.User, blockedID uint) error {
	removed, err := s.chats.Unblock(ctx, user.ID, blockedID)
	if err != nil {
		return fmt.Errorf("unblock: %w", err)
	}
	if !removed {
		return apperrors.ErrNotBlocked
	}
	return nil
}
