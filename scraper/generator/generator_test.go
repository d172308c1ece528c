package generator

import (
	"context"
	"strings"
	"testing"
	"time"

	"annonces-abidjan/models"
	"annonces-abidjan/utils"
)

func fixedGenerator(seed int64) *Generator {
	g := New(utils.NewTestLogger(), seed)
	g.now = func() time.Time { return time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC) }
	return g
}

func TestScrapeBatchShape(t *testing.T) {
	raw, err := fixedGenerator(1).Scrape(context.Background())
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if len(raw) < 9 || len(raw) > 18 {
		t.Fatalf("batch size %d outside 9..18", len(raw))
	}

	urls := make(map[string]struct{})
	for _, r := range raw {
		if _, dup := urls[r.URL]; dup {
			t.Errorf("duplicate URL %s", r.URL)
		}
		urls[r.URL] = struct{}{}

		if !strings.Contains(r.ContactText, "+225 ") || !strings.Contains(r.ContactText, "@") {
			t.Errorf("contact text lacks phone or email: %q", r.ContactText)
		}
		if !strings.HasSuffix(r.RawPrice, "FCFA") && !strings.HasSuffix(r.RawPrice, "FCFA/mois") {
			t.Errorf("unexpected raw price %q", r.RawPrice)
		}
		if r.Source == SourceExpat && r.Category != models.TypeRental {
			t.Errorf("expat listing should be a rental: %+v", r)
		}
		if r.ScrapedAt.Format(models.DateLayout) != "2024-01-15" {
			t.Errorf("scraped at %v", r.ScrapedAt)
		}
	}
}

func TestScrapeIsDeterministicPerSeed(t *testing.T) {
	a, _ := fixedGenerator(7).Scrape(context.Background())
	b, _ := fixedGenerator(7).Scrape(context.Background())
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Title != b[i].Title || a[i].RawPrice != b[i].RawPrice || a[i].ContactText != b[i].ContactText {
			t.Errorf("listing %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestScrapeHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	raw, err := fixedGenerator(1).Scrape(ctx)
	if err == nil {
		t.Fatal("expected context error")
	}
	if len(raw) != 0 {
		t.Errorf("expected no listings, got %d", len(raw))
	}
}

func TestContactEmailIsASCII(t *testing.T) {
	g := fixedGenerator(3)
	for i := 0; i < 50; i++ {
		_, phone, email := g.contact()
		if !strings.HasPrefix(phone, "+225 ") || len(phone) != len("+225 07 12 34 56") {
			t.Errorf("bad phone %q", phone)
		}
		for _, r := range email {
			if r > 127 {
				t.Errorf("non-ascii email %q", email)
				break
			}
		}
	}
}
