package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"annonces-abidjan/models"
	"annonces-abidjan/storage"
	"annonces-abidjan/utils"
	"annonces-abidjan/view"
)

// Handler serves the API from a ListingStore and renders the page through
// a view reading that API.
type Handler struct {
	store    storage.ListingStore
	pageAPI  view.API
	logger   *utils.Logger
	city     string
	currency string
	now      func() time.Time
}

// NewHandler creates a Handler. pageAPI is what the rendered page reads
// from; in production it is an HTTP client pointed at this same API.
func NewHandler(store storage.ListingStore, pageAPI view.API, logger *utils.Logger, city, currency string) *Handler {
	return &Handler{
		store:    store,
		pageAPI:  pageAPI,
		logger:   logger,
		city:     city,
		currency: currency,
		now:      time.Now,
	}
}

func filtersFromQuery(c *gin.Context) models.Filters {
	return models.Filters{
		Neighborhood: c.Query("quartier"),
		Type:         c.Query("type"),
		Date:         c.Query("date"),
	}
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	h.logger.Error("[api] %s: %v (request %s)", op, err, RequestIDFromContext(c.Request.Context()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne du serveur"})
}

// Statistics serves GET /api/statistiques.
func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.store.Statistics(c.Request.Context(), h.now())
	if err != nil {
		h.fail(c, "statistics", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statistiques": stats})
}

// Listings serves GET /api/annonces.
func (h *Handler) Listings(c *gin.Context) {
	listings, err := h.store.All(c.Request.Context(), filtersFromQuery(c))
	if err != nil {
		h.fail(c, "listings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"annonces": listings,
		"total":    len(listings),
		"date":     h.now().Format(time.RFC3339),
	})
}

// TodayListings serves GET /api/annonces/du-jour.
func (h *Handler) TodayListings(c *gin.Context) {
	now := h.now()
	listings, err := h.store.Today(c.Request.Context(), now, filtersFromQuery(c))
	if err != nil {
		h.fail(c, "today listings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"annonces": listings,
		"total":    len(listings),
		"date":     now.Format(models.DateLayout),
		"ville":    h.city,
	})
}

// Listing serves GET /api/annonces/:id.
func (h *Handler) Listing(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Annonce non trouvée"})
		return
	}
	l, err := h.store.Get(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Annonce non trouvée"})
		return
	}
	if err != nil {
		h.fail(c, "listing", err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// Neighborhoods serves GET /api/quartiers.
func (h *Handler) Neighborhoods(c *gin.Context) {
	quartiers, err := h.store.Neighborhoods(c.Request.Context())
	if err != nil {
		h.fail(c, "neighborhoods", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quartiers": quartiers, "total": len(quartiers)})
}

// Health serves GET /health. The store is pinged so a lost database
// shows up as 503.
func (h *Handler) Health(c *gin.Context) {
	body := gin.H{"status": "healthy", "timestamp": h.now().Format(time.RFC3339Nano)}
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("[api] health: store unreachable: %v", err)
		body["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) viewOptions() view.Options {
	return view.Options{
		Currency:     h.currency,
		PagePath:     PagePath,
		FragmentPath: FragmentPath,
		Now:          h.now,
	}
}

// Page serves GET /: the full listings page, search form pre-filled from
// the query string.
func (h *Handler) Page(c *gin.Context) {
	page, err := view.NewPage(h.pageAPI, filtersFromQuery(c), h.logger, h.viewOptions())
	if err != nil {
		h.failHTML(c, "page", err)
		return
	}
	page.View.Initialize(c.Request.Context())

	html, err := page.Doc.Render()
	if err != nil {
		h.failHTML(c, "page render", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// Fragment serves the results region for a search submitted by the page
// script, or for its retry control.
func (h *Handler) Fragment(c *gin.Context) {
	page, err := view.NewPage(h.pageAPI, filtersFromQuery(c), h.logger, h.viewOptions())
	if err != nil {
		h.failHTML(c, "fragment", err)
		return
	}
	// A failed load renders the error placeholder; the fragment is still served.
	_ = page.View.Submit(c.Request.Context())

	html, err := page.Results()
	if err != nil {
		h.failHTML(c, "fragment render", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *Handler) failHTML(c *gin.Context, op string, err error) {
	h.logger.Error("[api] %s: %v", op, err)
	c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("Erreur interne du serveur"))
}
