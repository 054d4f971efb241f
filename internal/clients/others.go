package clients

import (
	"context"
	"net/url"

	"github.com/lessslie/yourdashboard-gateway/internal/models"
)

type CalendarClient struct {
	client
}

type calendarListResponse struct {
	Events []models.CalendarEvent `json:"events"`
}

// ListEvents fetches the user's upcoming calendar events.
func (c *CalendarClient) ListEvents(ctx context.Context, userID string) ([]models.CalendarEvent, error) {
	q := url.Values{}
	q.Set("userId", userID)
	var resp calendarListResponse
	if err := c.getJSON(ctx, "/events", q, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

type WhatsAppClient struct {
	client
}

type conversationListResponse struct {
	Conversations []models.Conversation `json:"conversations"`
}

// ListConversations fetches the user's active WhatsApp conversations.
func (c *WhatsAppClient) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	q := url.Values{}
	q.Set("userId", userID)
	var resp conversationListResponse
	if err := c.getJSON(ctx, "/conversations", q, &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

type AuthClient struct {
	client
}

// Profile resolves the caller's profile from the forwarded credential.
// Token acceptance is decided here, downstream, not at the gateway boundary.
func (c *AuthClient) Profile(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	if err := c.getJSON(ctx, "/auth/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
