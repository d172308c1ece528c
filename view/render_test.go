package view

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"annonces-abidjan/models"
)

func parseFragment(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	return doc
}

func fullListing() *models.Listing {
	return &models.Listing{
		ID:              7,
		Title:           "Villa 4 chambres - Marcory",
		Description:     "Grande villa avec jardin et piscine",
		Image:           "https://via.placeholder.com/300x200?text=Villa",
		Type:            models.TypeSale,
		Price:           250000000,
		Surface:         "200 m²",
		Neighborhood:    "Marcory",
		Bedrooms:        4,
		PublishedOn:     "2024-01-15",
		ContactName:     "Kouassi Jean",
		ContactPhone:    "+225 07 12 34 56",
		ContactWhatsApp: "22507123456",
		ContactEmail:    "kouassi.jean@gmail.com",
	}
}

func TestCardFields(t *testing.T) {
	r := NewRenderer("FCFA", "/", "/fragments/annonces")
	html, err := r.Card(fullListing())
	if err != nil {
		t.Fatalf("Card: %v", err)
	}
	doc := parseFragment(t, string(html))

	checks := map[string]string{
		".card-title":          "Villa 4 chambres - Marcory",
		".card-text":           "Grande villa avec jardin et piscine",
		".annonce-price":       "250.0 M FCFA",
		".annonce-type":        "À vendre",
		".badge-quartier":      "Marcory",
		".badge-chambres":      "4 ch.",
		".contact-info strong": "Kouassi Jean",
	}
	for sel, want := range checks {
		if got := strings.TrimSpace(doc.Find(sel).Text()); got != want {
			t.Errorf("%s: got %q, want %q", sel, got, want)
		}
	}
	if !strings.Contains(doc.Text(), "Publié le 15 janvier 2024") {
		t.Error("publication date not formatted")
	}

	hrefs := doc.Find("a.contact-link").Map(func(_ int, a *goquery.Selection) string {
		h, _ := a.Attr("href")
		return h
	})
	want := []string{"tel:+22507123456", "https://wa.me/22507123456", "mailto:kouassi.jean@gmail.com"}
	if len(hrefs) != len(want) {
		t.Fatalf("contact links: got %v, want %v", hrefs, want)
	}
	for i := range want {
		if hrefs[i] != want[i] {
			t.Errorf("link %d: got %q, want %q", i, hrefs[i], want[i])
		}
	}
}

func TestCardKeepsPhoneLinkWithoutDigits(t *testing.T) {
	r := NewRenderer("FCFA", "/", "/fragments/annonces")
	l := &models.Listing{Title: "Villa", Type: models.TypeSale, Price: 90000000, ContactPhone: "sur demande"}
	html, err := r.Card(l)
	if err != nil {
		t.Fatalf("Card: %v", err)
	}
	doc := parseFragment(t, string(html))

	links := doc.Find("a.contact-link")
	if links.Length() != 1 {
		t.Fatalf("contact links: got %d, want 1", links.Length())
	}
	if href, _ := links.Attr("href"); href != "tel:sur%20demande" {
		t.Errorf("tel link: got %q", href)
	}
}

func TestCardWithoutContactOrBedrooms(t *testing.T) {
	r := NewRenderer("FCFA", "/", "/fragments/annonces")
	l := &models.Listing{Title: "Terrain", Type: models.TypeRental, Price: 150000, Bedrooms: 0}
	html, err := r.Card(l)
	if err != nil {
		t.Fatalf("Card: %v", err)
	}
	doc := parseFragment(t, string(html))

	if n := doc.Find(".contact-section").Length(); n != 1 {
		t.Errorf("contact block: got %d, want 1", n)
	}
	if n := doc.Find(".contact-section a").Length(); n != 0 {
		t.Errorf("contact links: got %d, want 0", n)
	}
	if got := strings.TrimSpace(doc.Find(".contact-info strong").Text()); got != DefaultContactName {
		t.Errorf("contact name fallback: got %q", got)
	}
	if doc.Find(".badge-chambres").Length() != 0 {
		t.Error("bedroom badge should be hidden when chambres is 0")
	}
	if got := doc.Find(".annonce-type").Text(); strings.TrimSpace(got) != "À louer" {
		t.Errorf("label: got %q", got)
	}
	if got := doc.Find(".annonce-price").Text(); got != "150\u202f000 FCFA/mois" {
		t.Errorf("price: got %q", got)
	}
}

func TestCardEscapesText(t *testing.T) {
	r := NewRenderer("FCFA", "/", "/fragments/annonces")
	l := &models.Listing{Title: `<script>alert(1)</script>`, ContactPhone: `"><b>`}
	html, err := r.Card(l)
	if err != nil {
		t.Fatalf("Card: %v", err)
	}
	if strings.Contains(string(html), "<script>") {
		t.Error("title was not escaped")
	}
	doc := parseFragment(t, string(html))
	if got := doc.Find(".card-title").Text(); got != `<script>alert(1)</script>` {
		t.Errorf("title text should survive verbatim, got %q", got)
	}
	if doc.Find(".contact-section a").Length() != 0 {
		t.Error("a phone without digits should not produce a tel link")
	}
}

func TestCards(t *testing.T) {
	r := NewRenderer("FCFA", "/", "/fragments/annonces")

	empty, err := r.Cards(nil)
	if err != nil {
		t.Fatalf("Cards(nil): %v", err)
	}
	doc := parseFragment(t, string(empty))
	if doc.Find(".empty-state").Length() != 1 || doc.Find(".annonce-card").Length() != 0 {
		t.Errorf("empty listings should render one empty state and no card: %s", empty)
	}
	if !strings.Contains(doc.Text(), "Aucune annonce trouvée") {
		t.Error("empty-state message missing")
	}

	listings := []*models.Listing{fullListing(), fullListing(), fullListing()}
	html, err := r.Cards(listings)
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	doc = parseFragment(t, string(html))
	if n := doc.Find(".annonce-card").Length(); n != 3 {
		t.Errorf("cards: got %d, want 3", n)
	}
	if doc.Find(".empty-state").Length() != 0 {
		t.Error("empty state rendered alongside cards")
	}
}

func TestErrorCarriesRetry(t *testing.T) {
	r := NewRenderer("FCFA", "/", "/fragments/annonces")
	html, err := r.Error(models.Filters{Neighborhood: "Cocody", Type: "vente", Date: "today"})
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	doc := parseFragment(t, string(html))
	btn := doc.Find("[data-retry]")
	if btn.Length() != 1 {
		t.Fatalf("retry control: got %d", btn.Length())
	}
	if got, _ := btn.Attr("data-retry"); got != "/fragments/annonces?quartier=Cocody&type=vente" {
		t.Errorf("data-retry: got %q", got)
	}
	if got, _ := btn.Attr("href"); got != "/?quartier=Cocody&type=vente" {
		t.Errorf("href: got %q", got)
	}
}
