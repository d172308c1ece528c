package tonkro

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"annonces-abidjan/config"
	"annonces-abidjan/models"
	"annonces-abidjan/scraper"
	"annonces-abidjan/utils"
)

// Scraper crawls the category pages of a classified site with a headless
// browser and visits every ad page it finds.
type Scraper struct {
	cfg        *config.Config
	site       scraper.Site
	logger     *utils.Logger
	pool       *utils.WorkerPool
	visitedURL *utils.StringSet
	retry      *utils.RetryConfig

	// fetch loads a page and returns its rendered HTML. Tests replace it.
	fetch func(ctx context.Context, url string) (string, error)

	mu       sync.Mutex
	listings []*models.RawListing
}

// New creates a ready-to-use Scraper for site.
func New(cfg *config.Config, site scraper.Site, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:        cfg,
		site:       site,
		logger:     logger,
		pool:       utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		visitedURL: utils.NewStringSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

func (s *Scraper) Name() string { return s.site.Name }

// Scrape walks every category page, then fetches ad pages through the
// rate-limited worker pool. Category and ad failures are logged and
// skipped; an error is returned only when the browser cannot start or
// ctx is cancelled.
func (s *Scraper) Scrape(ctx context.Context) ([]*models.RawListing, error) {
	s.mu.Lock()
	s.listings = make([]*models.RawListing, 0)
	s.mu.Unlock()

	fetch := s.fetch
	if fetch == nil {
		browserCtx, cancel, err := s.startBrowser(ctx)
		if err != nil {
			return nil, err
		}
		defer cancel()
		fetch = func(_ context.Context, url string) (string, error) {
			return s.renderPage(browserCtx, url)
		}
	}

	perCategory := s.site.PerCategory
	if s.cfg.ListingsPerPage > 0 && s.cfg.ListingsPerPage < perCategory {
		perCategory = s.cfg.ListingsPerPage
	}
	s.logger.Info("[%s] Starting scrape: %d categories, up to %d ads each",
		s.site.Name, len(s.site.Categories), perCategory)

	for _, cat := range s.site.Categories {
		if err := ctx.Err(); err != nil {
			return s.collected(), err
		}

		var page string
		err := s.retry.Do(ctx, "category "+cat.URL, func(ctx context.Context) error {
			var err error
			page, err = fetch(ctx, cat.URL)
			return err
		})
		if err != nil {
			s.logger.Error("[%s] Category %s failed: %v", s.site.Name, cat.URL, err)
			continue
		}

		links, err := AdLinks(page, s.site, perCategory)
		if err != nil {
			s.logger.Error("[%s] Category %s unparsable: %v", s.site.Name, cat.URL, err)
			continue
		}
		s.logger.Debug("[%s] %s: %d ad links", s.site.Name, cat.URL, len(links))

		category := cat.Type
		for _, link := range links {
			if !s.visitedURL.Add(link) {
				s.logger.Debug("[%s] Skipping duplicate: %s", s.site.Name, link)
				continue
			}
			url := link
			s.pool.Submit(func() {
				s.scrapeAd(ctx, fetch, url, category)
			})
		}
	}
	s.pool.Wait()

	out := s.collected()
	s.logger.Info("[%s] Scrape complete: %d raw listings (%d ads visited since start)",
		s.site.Name, len(out), s.visitedURL.Size())
	return out, ctx.Err()
}

func (s *Scraper) scrapeAd(ctx context.Context, fetch func(context.Context, string) (string, error), url, category string) {
	var page string
	err := s.retry.Do(ctx, "ad "+url, func(ctx context.Context) error {
		var err error
		page, err = fetch(ctx, url)
		return err
	})
	if err != nil {
		s.logger.Warn("[%s] Ad page failed for %s: %v", s.site.Name, url, err)
		return
	}

	raw, err := ParseAd(page, s.site)
	if err != nil {
		s.logger.Warn("[%s] Ad page unparsable %s: %v", s.site.Name, url, err)
		return
	}
	raw.URL = url
	raw.Category = category
	raw.ScrapedAt = time.Now()

	s.mu.Lock()
	s.listings = append(s.listings, raw)
	s.mu.Unlock()
	s.logger.Debug("[%s] Scraped: %s", s.site.Name, raw.Title)
}

func (s *Scraper) collected() []*models.RawListing {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.RawListing, len(s.listings))
	copy(out, s.listings)
	return out
}

func (s *Scraper) startBrowser(ctx context.Context) (context.Context, context.CancelFunc, error) {
	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	s.logger.Info("[%s] Using browser binary: %s", s.site.Name, chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...any) {}))

	// Start the browser now so a missing binary fails the run up front.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, nil, fmt.Errorf("%s: start browser: %w", s.site.Name, err)
	}
	return browserCtx, func() {
		cancelBrowser()
		cancelAlloc()
	}, nil
}

// renderPage opens url in a new tab and returns the rendered document.
func (s *Scraper) renderPage(browserCtx context.Context, url string) (string, error) {
	ctx, cancel := chromedp.NewContext(browserCtx)
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp render %s: %w", url, err)
	}
	return html, nil
}

// AdLinks returns up to limit distinct absolute ad URLs found on a
// category page.
func AdLinks(page string, site scraper.Site, limit int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse category page: %w", err)
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find(site.AdLink).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		url := site.Resolve(href)
		if url == "" {
			return true
		}
		if _, dup := seen[url]; dup {
			return true
		}
		seen[url] = struct{}{}
		links = append(links, url)
		return limit <= 0 || len(links) < limit
	})
	return links, nil
}

// ParseAd extracts the raw fields of an ad page. ContactText carries the
// whole page text so the cleaner can find phone numbers and emails
// wherever the site prints them.
func ParseAd(page string, site scraper.Site) (*models.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse ad page: %w", err)
	}

	sel := site.Detail
	raw := &models.RawListing{
		Source:      site.Name,
		Title:       pick(doc, sel.Title),
		Description: pick(doc, sel.Description),
		RawPrice:    pick(doc, sel.Price),
		Location:    pick(doc, sel.Location),
		Surface:     pick(doc, sel.Surface),
		Bedrooms:    pick(doc, sel.Bedrooms),
		ContactName: pick(doc, sel.ContactName),
		Image:       site.Resolve(pick(doc, sel.Image)),
	}

	doc.Find("script, style, noscript").Remove()
	raw.ContactText = strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	return raw, nil
}

// pick returns the text of the first selector that matches something
// non-empty. A selector ending in "@attr" reads that attribute instead.
func pick(doc *goquery.Document, selectors []string) string {
	for _, s := range selectors {
		query, attr, hasAttr := strings.Cut(s, "@")
		node := doc.Find(query).First()
		if node.Length() == 0 {
			continue
		}
		var v string
		if hasAttr {
			v, _ = node.Attr(attr)
		} else {
			v = node.Text()
		}
		if v = strings.Join(strings.Fields(v), " "); v != "" {
			return v
		}
	}
	return ""
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
