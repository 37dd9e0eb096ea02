package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "openmart/internal/errors"
	"openmart/internal/model"
)

// ChatRepository defines thread, message and block persistence.
type ChatRepository interface {
	FindThread(ctx context.Context, id uuid.UUID) (*model.ChatThread, error)
	FindThreadFor(ctx context.Context, listingID uuid.UUID, buyerID uint) (*model.ChatThread, error)
	GetOrCreateThread(ctx context.Context, listingID uuid.UUID, buyerID, sellerID uint) (*model.ChatThread, bool, error)
	ListThreads(ctx context.Context, userID uint, limit int) ([]model.ChatThread, error)

	CreateMessage(ctx context.Context, message *model.Message) error
	Messages(ctx context.Context, threadID uuid.UUID) ([]model.Message, error)
	MessagesAfter(ctx context.Context, threadID uuid.UUID, afterID uint) ([]model.Message, error)
	RecentMessages(ctx context.Context, threadID uuid.UUID, limit int) ([]model.Message, error)
	MarkRead(ctx context.Context, threadID uuid.UUID, viewerID uint) (int64, error)
	UnreadCount(ctx context.Context, threadID uuid.UUID, viewerID uint) (int64, error)
	UnreadCounts(ctx context.Context, threadIDs []uuid.UUID, viewerID uint) (map[uuid.UUID]int64, error)
	TotalUnread(ctx context.Context, userID uint) (int64, error)

	Block(ctx context.Context, block *model.BlockedUser) error
	Unblock(ctx context.Context, blockerID, blockedID uint) (bool, error)
	IsBlockedEither(ctx context.Context, a, b uint) (bool, error)

	CountThreads(ctx context.Context, activeOnly bool) (int64, error)
	CountMessages(ctx context.Context) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func withParticipants(db *gorm.DB) *gorm.DB {
	return db.Preload("Listing").Preload("Listing.Images").Preload("Buyer").Preload("Seller")
}

func (r *chatRepository) FindThread(ctx context.Context, id uuid.UUID) (*model.ChatThread, error) {
	var thread model.ChatThread
	if err := r.db.WithContext(ctx).Scopes(withParticipants).Where("id = ?", id).First(&thread).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *chatRepository) FindThreadFor(ctx context.Context, listingID uuid.UUID, buyerID uint) (*model.ChatThread, error) {
	var thread model.ChatThread
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND buyer_id = ?", listingID, buyerID).
		First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// GetOrCreateThread returns the thread keyed by (listing, buyer, seller),
// creating it when missing. It reports whether a new thread was created.
func (r *chatRepository) GetOrCreateThread(ctx context.Context, listingID uuid.UUID, buyerID, sellerID uint) (*model.ChatThread, bool, error) {
	find := func() (*model.ChatThread, error) {
		var thread model.ChatThread
		err := r.db.WithContext(ctx).
			Where("listing_id = ? AND buyer_id = ? AND seller_id = ?", listingID, buyerID, sellerID).
			First(&thread).Error
		if err != nil {
			return nil, err
		}
		return &thread, nil
	}

	thread, err := find()
	if err == nil {
		return thread, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	thread = &model.ChatThread{ListingID: listingID, BuyerID: buyerID, SellerID: sellerID, IsActive: true}
	if err := r.db.WithContext(ctx).Create(thread).Error; err != nil {
		// lost a race on the unique triple
		if existing, findErr := find(); findErr == nil {
			return existing, false, nil
		}
		return nil, false, err
	}
	return thread, true, nil
}

// ListThreads returns the user's active threads, latest activity first.
func (r *chatRepository) ListThreads(ctx context.Context, userID uint, limit int) ([]model.ChatThread, error) {
	query := r.db.WithContext(ctx).Scopes(withParticipants).
		Where("(buyer_id = ? OR seller_id = ?) AND is_active = ?", userID, userID, true).
		Order("updated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var threads []model.ChatThread
	if err := query.Find(&threads).Error; err != nil {
		return nil, err
	}
	return threads, nil
}

// CreateMessage stores the message and bumps the thread's activity timestamp.
func (r *chatRepository) CreateMessage(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&model.ChatThread{}).Where("id = ?", message.ThreadID).
			UpdateColumn("updated_at", time.Now()).Error
	})
}

func (r *chatRepository) Messages(ctx context.Context, threadID uuid.UUID) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).Preload("Sender").
		Where("thread_id = ?", threadID).Order("id ASC").Find(&messages).Error
	return messages, err
}

// MessagesAfter returns messages with an id greater than afterID in ascending order.
func (r *chatRepository) MessagesAfter(ctx context.Context, threadID uuid.UUID, afterID uint) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).Preload("Sender").
		Where("thread_id = ? AND id > ?", threadID, afterID).Order("id ASC").Find(&messages).Error
	return messages, err
}

// RecentMessages returns the newest messages first.
func (r *chatRepository) RecentMessages(ctx context.Context, threadID uuid.UUID, limit int) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).Preload("Sender").
		Where("thread_id = ?", threadID).Order("id DESC").Limit(limit).Find(&messages).Error
	return messages, err
}

// MarkRead flips every unread message the viewer did not send in one UPDATE.
func (r *chatRepository) MarkRead(ctx context.Context, threadID uuid.UUID, viewerID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("thread_id = ? AND sender_id <> ? AND is_read = ?", threadID, viewerID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *chatRepository) UnreadCount(ctx context.Context, threadID uuid.UUID, viewerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("thread_id = ? AND sender_id <> ? AND is_read = ?", threadID, viewerID, false).
		Count(&count).Error
	return count, err
}

// UnreadCounts computes unread counts for several threads in one query.
func (r *chatRepository) UnreadCounts(ctx context.Context, threadIDs []uuid.UUID, viewerID uint) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(threadIDs))
	if len(threadIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		ThreadID uuid.UUID
		Unread   int64
	}
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Select("thread_id, COUNT(*) AS unread").
		Where("thread_id IN ? AND sender_id <> ? AND is_read = ?", threadIDs, viewerID, false).
		Group("thread_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ThreadID] = row.Unread
	}
	return counts, nil
}

// TotalUnread counts unread messages addressed to the user across all threads.
func (r *chatRepository) TotalUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Joins("JOIN chat_threads ON chat_threads.id = messages.thread_id").
		Where("(chat_threads.buyer_id = ? OR chat_threads.seller_id = ?) AND messages.sender_id <> ? AND messages.is_read = ?",
			userID, userID, userID, false).
		Count(&count).Error
	return count, err
}

// Block records a directed block edge.
func (r *chatRepository) Block(ctx context.Context, block *model.BlockedUser) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.BlockedUser{}).
			Where("blocker_id = ? AND blocked_id = ?", block.BlockerID, block.BlockedID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.ErrAlreadyBlocked
		}
		return tx.Create(block).Error
	})
}

// Unblock removes the block edge. It reports whether one existed.
func (r *chatRepository) Unblock(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&model.BlockedUser{})
	return result.RowsAffected > 0, result.Error
}

// IsBlockedEither reports whether a blocked b or b blocked a.
func (r *chatRepository) IsBlockedEither(ctx context.Context, a, b uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BlockedUser{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

func (r *chatRepository) CountThreads(ctx context.Context, activeOnly bool) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.ChatThread{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *chatRepository) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).Count(&count).Error
	return count, err
}
