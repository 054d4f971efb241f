package models

import "encoding/json"

const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// PageParams is the pagination contract shared by every downstream service.
type PageParams struct {
	Page  int
	Limit int
}

// NormalizePage clamps pagination input before it is forwarded downstream.
// Page values below 1 (or absent) become 1; limit is clamped into
// [1, MaxLimit], with absent or non-positive values falling back to
// DefaultLimit.
func NormalizePage(page, limit int) PageParams {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageParams{Page: page, Limit: limit}
}

type Email struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
}

// EmailPage is the paginated envelope returned to the client.
type EmailPage struct {
	Items []Email `json:"items"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
	Total int     `json:"total"`
}

type CalendarEvent struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type Conversation struct {
	Contact     string `json:"contact"`
	Name        string `json:"name"`
	LastMessage string `json:"lastMessage"`
	Timestamp   string `json:"timestamp"`
}

type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SourceResult is one downstream service's contribution to a composite
// response. Data and Error are mutually exclusive.
type SourceResult struct {
	Source string      `json:"source"`
	OK     bool        `json:"ok"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Snapshot is the composite envelope. Sources are always in the fixed
// order email, calendar, whatsapp regardless of completion order.
type Snapshot struct {
	UserID  string         `json:"userId"`
	Sources []SourceResult `json:"sources"`
}

// SaveResult wraps a single-service pass-through payload tagged with the
// downstream that produced it.
type SaveResult struct {
	Source  string          `json:"source"`
	Payload json.RawMessage `json:"payload"`
}

// InboundEvent is a normalized webhook notification. It lives only until
// it has been relayed.
type InboundEvent struct {
	From      string `json:"from"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Name      string `json:"name"`
}

// PushEvent is what travels over the event bus and out to SSE connections.
type PushEvent struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}
