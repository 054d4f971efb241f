package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/lessslie/yourdashboard-gateway/internal/apierror"
	"github.com/lessslie/yourdashboard-gateway/internal/models"
)

// Aggregator is the orchestration surface the dashboard handlers dispatch
// to.
type Aggregator interface {
	ListEmails(ctx context.Context, userID string, page models.PageParams) (*models.EmailPage, error)
	SearchEmails(ctx context.Context, userID, term string, page models.PageParams) (*models.EmailPage, error)
	SaveFullContent(ctx context.Context, emailID string) (*models.SaveResult, error)
	UnifiedSnapshot(ctx context.Context, userID string) *models.Snapshot
	Profile(ctx context.Context) (*models.Profile, error)
}

// DashboardHandler serves the aggregated email/calendar/whatsapp API.
type DashboardHandler struct {
	agg Aggregator
}

func NewDashboardHandler(agg Aggregator) *DashboardHandler {
	return &DashboardHandler{agg: agg}
}

// Register registers the dashboard routes on an authenticated group.
func (h *DashboardHandler) Register(g *echo.Group) {
	g.GET("/emails", h.ListEmails)
	g.GET("/emails/search", h.SearchEmails)
	g.POST("/emails/:id/save-full-content", h.SaveFullContent)
	g.GET("/snapshot", h.Snapshot)
	g.GET("/me", h.Me)
}

func pageFromQuery(c echo.Context) models.PageParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return models.NormalizePage(page, limit)
}

func requireUserID(c echo.Context) (string, error) {
	userID := c.QueryParam("userId")
	if userID == "" {
		return "", apierror.InvalidArgument("param \"userId\" not present")
	}
	return userID, nil
}

func (h *DashboardHandler) ListEmails(c echo.Context) error {
	log := log.WithField("prefix", "ListEmailsHandler")

	userID, err := requireUserID(c)
	if err != nil {
		log.Error(err.Error())
		return errorJSON(c, err)
	}
	page, err := h.agg.ListEmails(c.Request().Context(), userID, pageFromQuery(c))
	if err != nil {
		log.Errorf("listing emails failed: %v", err)
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *DashboardHandler) SearchEmails(c echo.Context) error {
	log := log.WithField("prefix", "SearchEmailsHandler")

	userID, err := requireUserID(c)
	if err != nil {
		log.Error(err.Error())
		return errorJSON(c, err)
	}
	page, err := h.agg.SearchEmails(c.Request().Context(), userID, c.QueryParam("q"), pageFromQuery(c))
	if err != nil {
		log.Errorf("searching emails failed: %v", err)
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *DashboardHandler) SaveFullContent(c echo.Context) error {
	log := log.WithField("prefix", "SaveFullContentHandler")

	emailID := c.Param("id")
	if emailID == "" {
		err := apierror.InvalidArgument("param \"id\" not present")
		log.Error(err.Error())
		return errorJSON(c, err)
	}
	result, err := h.agg.SaveFullContent(c.Request().Context(), emailID)
	if err != nil {
		log.Errorf("saving full content failed: %v", err)
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Snapshot always answers 200: a failing source is reported inside the
// envelope, never as a total failure.
func (h *DashboardHandler) Snapshot(c echo.Context) error {
	log := log.WithField("prefix", "SnapshotHandler")

	userID, err := requireUserID(c)
	if err != nil {
		log.Error(err.Error())
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, h.agg.UnifiedSnapshot(c.Request().Context(), userID))
}

func (h *DashboardHandler) Me(c echo.Context) error {
	log := log.WithField("prefix", "MeHandler")

	profile, err := h.agg.Profile(c.Request().Context())
	if err != nil {
		log.Errorf("resolving profile failed: %v", err)
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}
