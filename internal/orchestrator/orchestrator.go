package orchestrator

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lessslie/yourdashboard-gateway/internal/apierror"
	"github.com/lessslie/yourdashboard-gateway/internal/auth"
	"github.com/lessslie/yourdashboard-gateway/internal/clients"
	"github.com/lessslie/yourdashboard-gateway/internal/models"
)

var downstreamFailuresMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "number_of_downstream_failures",
	Help: "The total number of failed downstream calls by source",
}, []string{"source"})

// Orchestrator fans client requests out to the downstream services and
// merges their responses into one envelope.
type Orchestrator struct {
	clients *clients.Pool
}

func New(pool *clients.Pool) *Orchestrator {
	return &Orchestrator{clients: pool}
}

// detach severs the downstream call from the client's connection lifetime
// while keeping the forwarded credential. A client disconnect never cancels
// downstream work already dispatched; abandoned results are discarded.
func detach(ctx context.Context) context.Context {
	return auth.WithToken(context.Background(), auth.TokenFromContext(ctx))
}

// ListEmails returns one page of the user's emails.
func (o *Orchestrator) ListEmails(ctx context.Context, userID string, page models.PageParams) (*models.EmailPage, error) {
	return o.clients.Email.List(detach(ctx), userID, page)
}

// SearchEmails returns one page of emails matching term. The term must be
// non-empty after trimming.
func (o *Orchestrator) SearchEmails(ctx context.Context, userID, term string, page models.PageParams) (*models.EmailPage, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apierror.InvalidArgument("search query must not be empty")
	}
	return o.clients.Email.Search(detach(ctx), userID, term, page)
}

// SaveFullContent forwards the save request to the email service and tags
// the verbatim downstream payload with its source.
func (o *Orchestrator) SaveFullContent(ctx context.Context, emailID string) (*models.SaveResult, error) {
	payload, err := o.clients.Email.SaveFullContent(detach(ctx), emailID)
	if err != nil {
		return nil, err
	}
	return &models.SaveResult{Source: "email", Payload: payload}, nil
}

// Profile resolves the caller's profile via the auth service.
func (o *Orchestrator) Profile(ctx context.Context) (*models.Profile, error) {
	return o.clients.Auth.Profile(detach(ctx))
}

// UnifiedSnapshot calls the email, calendar and whatsapp services
// concurrently and waits for all three to settle. A failing source
// contributes an error marker instead of aborting the response, so callers
// get best-effort data under partial outage. Source order in the envelope
// is fixed regardless of completion order.
func (o *Orchestrator) UnifiedSnapshot(ctx context.Context, userID string) *models.Snapshot {
	log := log.WithField("prefix", "Orchestrator.UnifiedSnapshot")
	ctx = detach(ctx)

	results := make([]models.SourceResult, 3)
	var g errgroup.Group

	g.Go(func() error {
		page, err := o.clients.Email.List(ctx, userID, models.NormalizePage(1, 0))
		results[0] = sourceResult("email", page, err)
		return nil
	})
	g.Go(func() error {
		events, err := o.clients.Calendar.ListEvents(ctx, userID)
		results[1] = sourceResult("calendar", events, err)
		return nil
	})
	g.Go(func() error {
		conversations, err := o.clients.WhatsApp.ListConversations(ctx, userID)
		results[2] = sourceResult("whatsapp", conversations, err)
		return nil
	})
	g.Wait() //nolint:errcheck // goroutines record failures per source

	for _, r := range results {
		if !r.OK {
			log.Warnf("source %s failed: %s", r.Source, r.Error)
		}
	}
	return &models.Snapshot{UserID: userID, Sources: results}
}

func sourceResult(source string, data interface{}, err error) models.SourceResult {
	if err != nil {
		downstreamFailuresMetric.WithLabelValues(source).Inc()
		return models.SourceResult{Source: source, OK: false, Error: err.Error()}
	}
	return models.SourceResult{Source: source, OK: true, Data: data}
}
