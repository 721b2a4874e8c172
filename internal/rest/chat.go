package rest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"salon-chat-client/internal/chat"
	"salon-chat-client/internal/faq"
)

// initialFAQLimit matches the number of entries the widget shows on open.
const initialFAQLimit = 5

type ChatMessage struct {
	ID         int            `json:"id,omitempty"`
	SenderType string         `json:"sender_type"`
	SenderName string         `json:"sender_name,omitempty"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  string         `json:"created_at,omitempty"`
}

type ChatSession struct {
	ID            int           `json:"id"`
	SessionKey    string        `json:"session_key"`
	Status        chat.Status   `json:"status"`
	CreatedAt     string        `json:"created_at"`
	LastActivity  string        `json:"last_activity"`
	Messages      []ChatMessage `json:"messages"`
	QueuePosition *int          `json:"queue_position,omitempty"`
}

type ChatHistory struct {
	Session  ChatSession   `json:"session"`
	Messages []ChatMessage `json:"messages"`
}

type QueueEntry struct {
	SessionKey  string  `json:"session_key"`
	Reason      string  `json:"reason"`
	Priority    int     `json:"priority"`
	Position    int     `json:"position"`
	JoinedAt    string  `json:"joined_at"`
	WaitingTime float64 `json:"waiting_time"`
}

type DetailedQueueEntry struct {
	QueueEntry
	UserName    string  `json:"user_name"`
	LastMessage *string `json:"last_message"`
	IsLocked    bool    `json:"is_locked"`
	LockedBy    *string `json:"locked_by"`
}

type ClaimResult struct {
	Success bool        `json:"success"`
	Session ChatSession `json:"session"`
	Message string      `json:"message"`
}

func (c *Client) InitialFAQs(ctx context.Context) ([]faq.FAQ, error) {
	var faqs []faq.FAQ
	query := url.Values{"limit": {strconv.Itoa(initialFAQLimit)}}
	if err := c.get(ctx, "/chat/api/faqs/", query, &faqs); err != nil {
		return nil, err
	}
	return faqs, nil
}

func (c *Client) FAQsByCategory(ctx context.Context, category string) ([]faq.FAQ, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", category)
	}
	var faqs []faq.FAQ
	if err := c.get(ctx, "/chat/api/faqs/", query, &faqs); err != nil {
		return nil, err
	}
	return faqs, nil
}

// TouchFAQ registers a view of one FAQ entry. Callers treat it as
// fire-and-forget; a failure never blocks the view transition.
func (c *Client) TouchFAQ(ctx context.Context, id int) error {
	return c.get(ctx, fmt.Sprintf("/chat/api/faqs/%d/", id), nil, nil)
}

// ChatHistory fetches the server-side transcript for a session key. The live
// widget rebuilds from an empty transcript after reconnect; this endpoint
// serves history views and the admin console.
func (c *Client) ChatHistory(ctx context.Context, sessionKey string) (ChatHistory, error) {
	var history ChatHistory
	if err := c.get(ctx, "/chat/api/history/"+sessionKey+"/", nil, &history); err != nil {
		return ChatHistory{}, err
	}
	return history, nil
}

func (c *Client) ActiveChats(ctx context.Context) ([]ChatSession, error) {
	var sessions []ChatSession
	if err := c.get(ctx, "/chat/api/admin/active-chats/", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *Client) Queue(ctx context.Context) ([]QueueEntry, error) {
	var entries []QueueEntry
	if err := c.get(ctx, "/chat/api/admin/queue/", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) DetailedQueue(ctx context.Context) ([]DetailedQueueEntry, error) {
	var entries []DetailedQueueEntry
	if err := c.get(ctx, "/chat/api/admin/queue/detailed/", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) ClaimChat(ctx context.Context, sessionKey string) (ClaimResult, error) {
	var result ClaimResult
	if err := c.post(ctx, "/chat/api/admin/claim/"+sessionKey+"/", nil, &result); err != nil {
		return ClaimResult{}, err
	}
	return result, nil
}

// ReleaseChat hands a claimed chat back; with close=true the session is
// closed instead of returning to the queue.
func (c *Client) ReleaseChat(ctx context.Context, sessionKey string, close bool) error {
	body := map[string]bool{"close": close}
	return c.post(ctx, "/chat/api/admin/release/"+sessionKey+"/", body, nil)
}

func (c *Client) CloseChat(ctx context.Context, sessionKey string) error {
	return c.post(ctx, "/chat/api/admin/close/"+sessionKey+"/", nil, nil)
}
