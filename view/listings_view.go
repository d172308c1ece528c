// Package view renders the listings page: it reads statistics and today's
// listings from the JSON API and writes them into an HTML document bound
// by element id.
package view

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"annonces-abidjan/models"
	"annonces-abidjan/utils"
)

// Element ids the view reads and writes.
const (
	IDCurrentDate    = "current-date"
	IDTotal          = "total-annonces"
	IDToday          = "annonces-aujourdhui"
	IDSales          = "ventes"
	IDRentals        = "locations"
	IDSearchForm     = "searchForm"
	IDNeighborhood   = "quartier"
	IDType           = "type"
	IDDate           = "date"
	IDContainer      = "annonces-container"
	IDResultsCount   = "results-count"
	IDResultsTitle   = "results-title"
	DefaultDateValue = "today"
)

// Options tune a ListingsView. Zero values fall back to defaults.
type Options struct {
	Currency     string
	PagePath     string
	FragmentPath string
	Now          func() time.Time
}

// ListingsView drives one page: it loads statistics and listings and
// renders them into doc. Failures are logged and shown as placeholders;
// nothing is retried automatically.
type ListingsView struct {
	api    API
	doc    Document
	render *Renderer
	logger *utils.Logger
	now    func() time.Time

	mu   sync.Mutex
	last models.Filters
}

// New creates a ListingsView over doc.
func New(api API, doc Document, logger *utils.Logger, opts Options) *ListingsView {
	if opts.Currency == "" {
		opts.Currency = "FCFA"
	}
	if opts.PagePath == "" {
		opts.PagePath = "/"
	}
	if opts.FragmentPath == "" {
		opts.FragmentPath = "/fragments/annonces"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ListingsView{
		api:    api,
		doc:    doc,
		render: NewRenderer(opts.Currency, opts.PagePath, opts.FragmentPath),
		logger: logger,
		now:    opts.Now,
	}
}

// Initialize sets the date label, then loads statistics and listings
// concurrently and waits for both.
func (v *ListingsView) Initialize(ctx context.Context) {
	v.doc.SetText(IDCurrentDate, FormatLongDate(v.now()))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = v.LoadStatistics(ctx)
	}()
	go func() {
		defer wg.Done()
		_ = v.LoadListings(ctx)
	}()
	wg.Wait()
}

// LoadStatistics fetches the counts once and writes them into the four
// stat slots. On failure the slots keep their previous values.
func (v *ListingsView) LoadStatistics(ctx context.Context) error {
	stats, err := v.api.Statistics(ctx)
	if err != nil {
		v.logger.Error("[view] Erreur chargement statistiques: %v", err)
		return err
	}
	v.doc.SetText(IDTotal, strconv.Itoa(stats.TotalListings))
	v.doc.SetText(IDToday, strconv.Itoa(stats.PublishedToday))
	v.doc.SetText(IDSales, strconv.Itoa(stats.Sales))
	v.doc.SetText(IDRentals, strconv.Itoa(stats.Rentals))
	return nil
}

// LoadListings reads the filters from the search form and loads today's
// listings with them.
func (v *ListingsView) LoadListings(ctx context.Context) error {
	return v.load(ctx, v.Filters())
}

// Submit handles a search form submission.
func (v *ListingsView) Submit(ctx context.Context) error {
	return v.LoadListings(ctx)
}

// Retry re-issues the request of the last listings load.
func (v *ListingsView) Retry(ctx context.Context) error {
	v.mu.Lock()
	f := v.last
	v.mu.Unlock()
	return v.load(ctx, f)
}

// Filters reads the current form values. The date field defaults to
// "today"; it is carried along but not sent to the API.
func (v *ListingsView) Filters() models.Filters {
	f := models.Filters{Date: DefaultDateValue}
	if s, ok := v.doc.Value(IDNeighborhood); ok {
		f.Neighborhood = s
	}
	if s, ok := v.doc.Value(IDType); ok {
		f.Type = s
	}
	if s, ok := v.doc.Value(IDDate); ok && s != "" {
		f.Date = s
	}
	return f
}

func (v *ListingsView) load(ctx context.Context, f models.Filters) error {
	v.mu.Lock()
	v.last = f
	v.mu.Unlock()

	if loading, err := v.render.Loading(); err == nil {
		v.doc.SetHTML(IDContainer, loading)
	}

	listings, err := v.api.TodayListings(ctx, f)
	if err == nil {
		err = v.show(listings, f)
	}
	if err != nil {
		v.logger.Error("[view] Erreur chargement annonces: %v", err)
		v.showError(f)
		return err
	}
	return nil
}

func (v *ListingsView) show(listings []*models.Listing, f models.Filters) error {
	html, err := v.render.Cards(listings)
	if err != nil {
		return err
	}
	v.doc.SetHTML(IDContainer, html)
	v.doc.SetText(IDResultsCount, ResultsCount(len(listings)))
	v.doc.SetText(IDResultsTitle, ResultsTitle(f))
	return nil
}

func (v *ListingsView) showError(f models.Filters) {
	html, err := v.render.Error(f)
	if err != nil {
		v.logger.Error("[view] %v", err)
		return
	}
	v.doc.SetHTML(IDContainer, html)
}

// ResultsCount is the summary line above the cards.
func ResultsCount(n int) string {
	switch n {
	case 0:
		return "Aucune annonce"
	case 1:
		return "1 annonce trouvée"
	default:
		return fmt.Sprintf("%d annonces trouvées", n)
	}
}

// ResultsTitle names the current search.
func ResultsTitle(f models.Filters) string {
	title := "Annonces du jour"
	switch f.Type {
	case models.TypeSale:
		title = "Ventes du jour"
	case models.TypeRental:
		title = "Locations du jour"
	}
	if f.Neighborhood != "" {
		title += " à " + f.Neighborhood
	}
	return title
}
