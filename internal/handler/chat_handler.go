package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"openmart/internal/auth"
	"openmart/internal/model"
	"openmart/internal/service"
)

// ChatHandler serves buyer/seller conversations.
type ChatHandler struct {
	chat service.ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chat service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// SendMessageRequest carries message text; an "image" file may accompany it.
type SendMessageRequest struct {
	Content string `json:"content" form:"content" validate:"max=5000"`
}

// BlockRequest carries an optional reason.
type BlockRequest struct {
	Reason string `json:"reason" form:"reason" validate:"max=500"`
}

// SendMessageResponse echoes a stored message.
type SendMessageResponse struct {
	Success   bool      `json:"success"`
	MessageID uint      `json:"message_id"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"image_url"`
	Sender    string    `json:"sender"`
	SentAt    time.Time `json:"sent_at"`
}

// PolledMessage is one message of a poll response.
type PolledMessage struct {
	ID       uint      `json:"id"`
	Sender   string    `json:"sender"`
	Content  string    `json:"content"`
	ImageURL *string   `json:"image_url"`
	IsRead   bool      `json:"is_read"`
	SentAt   time.Time `json:"sent_at"`
}

// PollResponse wraps polled messages.
type PollResponse struct {
	Messages    []PolledMessage `json:"messages"`
	UnreadCount int64           `json:"unread_count"`
}

// StartChatResponse identifies the thread to continue in.
type StartChatResponse struct {
	ThreadID uuid.UUID `json:"thread_id"`
	Created  bool      `json:"created"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func senderName(m *model.Message) string {
	if m.Sender == nil {
		return ""
	}
	return m.Sender.Username
}

// List godoc
// @Summary Conversations of the current user
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.ThreadSummary
// @Router /chat [get]
func (h *ChatHandler) List(c echo.Context) error {
	threads, err := h.chat.List(c.Request().Context(), auth.CurrentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, threads)
}

// Open godoc
// @Summary Open a conversation
// @Description Marks the other participant's messages as read.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param thread_id path string true "Thread ID"
// @Success 200 {object} service.ThreadView
// @Failure 404 {object} errors.ErrorResponse
// @Router /chat/{thread_id} [get]
func (h *ChatHandler) Open(c echo.Context) error {
	threadID, err := uuidParam(c, "thread_id")
	if err != nil {
		return err
	}
	view, err := h.chat.Open(c.Request().Context(), auth.CurrentUser(c), threadID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// Start godoc
// @Summary Start or resume a conversation about a listing
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param listing_id path string true "Listing ID"
// @Success 200 {object} StartChatResponse
// @Success 201 {object} StartChatResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /chat/start/{listing_id} [post]
func (h *ChatHandler) Start(c echo.Context) error {
	listingID, err := uuidParam(c, "listing_id")
	if err != nil {
		return err
	}
	thread, created, err := h.chat.Start(c.Request().Context(), auth.CurrentUser(c), listingID)
	if err != nil {
		return fail(c, err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, StartChatResponse{ThreadID: thread.ID, Created: created})
}

// Send godoc
// @Summary Send a message
// @Tags chat
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param thread_id path string true "Thread ID"
// @Param request body SendMessageRequest true "Message"
// @Success 201 {object} SendMessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /chat/{thread_id}/send [post]
func (h *ChatHandler) Send(c echo.Context) error {
	threadID, err := uuidParam(c, "thread_id")
	if err != nil {
		return err
	}
	var req SendMessageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	message, err := h.chat.Send(c.Request().Context(), auth.CurrentUser(c), threadID, req.Content, formFile(c, "image"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, SendMessageResponse{
		Success:   true,
		MessageID: message.ID,
		Content:   message.Content,
		ImageURL:  nullable(message.ImageURL),
		Sender:    senderName(message),
		SentAt:    message.SentAt,
	})
}

// Poll godoc
// @Summary Poll for messages
// @Description With last_message_id returns newer messages oldest first; without it the latest 50 newest first.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param thread_id path string true "Thread ID"
// @Param last_message_id query int false "Cursor"
// @Success 200 {object} PollResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /chat/{thread_id}/get [get]
func (h *ChatHandler) Poll(c echo.Context) error {
	threadID, err := uuidParam(c, "thread_id")
	if err != nil {
		return err
	}
	var cursor *uint
	if raw := c.QueryParam("last_message_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badParam("last_message_id")
		}
		last := uint(id)
		cursor = &last
	}

	result, err := h.chat.Poll(c.Request().Context(), auth.CurrentUser(c), threadID, cursor)
	if err != nil {
		return fail(c, err)
	}
	resp := PollResponse{
		Messages:    make([]PolledMessage, len(result.Messages)),
		UnreadCount: result.UnreadCount,
	}
	for i := range result.Messages {
		m := &result.Messages[i]
		resp.Messages[i] = PolledMessage{
			ID:       m.ID,
			Sender:   senderName(m),
			Content:  m.Content,
			ImageURL: nullable(m.ImageURL),
			IsRead:   m.IsRead,
			SentAt:   m.SentAt,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Block godoc
// @Summary Block a user
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_id path int true "User ID"
// @Param request body BlockRequest false "Reason"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /chat/block/{user_id} [post]
func (h *ChatHandler) Block(c echo.Context) error {
	userID, err := uintParam(c, "user_id")
	if err != nil {
		return err
	}
	var req BlockRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.chat.Block(c.Request().Context(), auth.CurrentUser(c), userID, req.Reason); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "user blocked"})
}

// Unblock godoc
// @Summary Unblock a user
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param user_id path int true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /chat/unblock/{user_id} [post]
func (h *ChatHandler) Unblock(c echo.Context) error {
	userID, err := uintParam(c, "user_id")
	if err != nil {
		return err
	}
	if err := h.chat.Unblock(c.Request().Context(), auth.CurrentUser(c), userID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "user unblocked"})
}
