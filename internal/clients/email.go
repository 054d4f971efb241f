package clients

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/lessslie/yourdashboard-gateway/internal/models"
)

type EmailClient struct {
	client
}

type emailListResponse struct {
	Emails []models.Email `json:"emails"`
	Total  int            `json:"total"`
}

func pageQuery(userID string, page models.PageParams) url.Values {
	q := url.Values{}
	q.Set("userId", userID)
	q.Set("page", strconv.Itoa(page.Page))
	q.Set("limit", strconv.Itoa(page.Limit))
	return q
}

// List fetches one page of the user's emails.
func (c *EmailClient) List(ctx context.Context, userID string, page models.PageParams) (*models.EmailPage, error) {
	var resp emailListResponse
	if err := c.getJSON(ctx, "/emails", pageQuery(userID, page), &resp); err != nil {
		return nil, err
	}
	return &models.EmailPage{
		Items: resp.Emails,
		Page:  page.Page,
		Limit: page.Limit,
		Total: resp.Total,
	}, nil
}

// Search fetches one page of emails matching the query term.
func (c *EmailClient) Search(ctx context.Context, userID, term string, page models.PageParams) (*models.EmailPage, error) {
	q := pageQuery(userID, page)
	q.Set("q", term)
	var resp emailListResponse
	if err := c.getJSON(ctx, "/emails/search", q, &resp); err != nil {
		return nil, err
	}
	return &models.EmailPage{
		Items: resp.Emails,
		Page:  page.Page,
		Limit: page.Limit,
		Total: resp.Total,
	}, nil
}

// SaveFullContent asks the email service to persist the full body of one
// email. The downstream payload is passed through verbatim.
func (c *EmailClient) SaveFullContent(ctx context.Context, emailID string) (json.RawMessage, error) {
	var payload json.RawMessage
	if err := c.postJSON(ctx, "/emails/"+url.PathEscape(emailID)+"/save-full-content", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
