package services

import (
	"testing"
	"time"

	"annonces-abidjan/models"
	"annonces-abidjan/utils"
)

func newTestLogger() *utils.Logger { return utils.NewTestLogger() }

func TestCleanerParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want models.Price
	}{
		{"120 000 000 FCFA", 120000000},
		{"150.000 FCFA/mois", 150000},
		{"350 000 FCFA/mois", 350000},
		{"85 millions", 85000000},
		{"1,5 M FCFA", 1500000},
		{"Prix sur demande", 0},
		{"", 0},
	}

	for _, tt := range tests {
		got := parsePrice(tt.raw)
		if got != tt.want {
			t.Errorf("parsePrice(%q) = %d; want %d", tt.raw, got, tt.want)
		}
	}
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		category, text string
		want           string
	}{
		{"vente", "Villa 4 chambres", models.TypeSale},
		{"Location", "", models.TypeRental},
		{"", "Studio à louer - Plateau", models.TypeRental},
		{"", "Villa duplex 150 000 FCFA/mois", models.TypeRental},
		{"", "Terrain titre foncier", models.TypeSale},
	}

	for _, tt := range tests {
		if got := detectType(tt.category, tt.text); got != tt.want {
			t.Errorf("detectType(%q, %q) = %q; want %q", tt.category, tt.text, got, tt.want)
		}
	}
}

func TestExtractContact(t *testing.T) {
	tests := []struct {
		text string
		want Contact
	}{
		{
			"Appelez le +225 07 12 34 56 ou écrivez à kouassi.jean@gmail.com",
			Contact{Phone: "+225 07 12 34 56", WhatsApp: "22507123456", Email: "kouassi.jean@gmail.com"},
		},
		{
			"WhatsApp: 0707070707",
			Contact{Phone: "+225 07 07 07 07 07", WhatsApp: "2250707070707"},
		},
		{
			"+22565123456",
			Contact{Phone: "+225 65 12 34 56", WhatsApp: "22565123456"},
		},
		{
			"Publié le 2024-01-15, visite sur rendez-vous",
			Contact{},
		},
	}

	for _, tt := range tests {
		if got := ExtractContact(tt.text); got != tt.want {
			t.Errorf("ExtractContact(%q) = %+v; want %+v", tt.text, got, tt.want)
		}
	}
}

func TestCleanerDropRules(t *testing.T) {
	c := NewCleaner(newTestLogger(), "Abidjan")
	now := time.Now()
	raw := []*models.RawListing{
		{Title: "No URL", ContactText: "+225 07 12 34 56", ScrapedAt: now},
		{Title: "Villa A", URL: "https://tonkro.ci/annonce/1", ContactText: "+225 07 12 34 56", ScrapedAt: now},
		{Title: "Villa A bis", URL: "https://tonkro.ci/annonce/1", ContactText: "+225 07 12 34 56", ScrapedAt: now},
		{Title: "Sans contact", URL: "https://tonkro.ci/annonce/2", ContactText: "Contactez l'agence", ScrapedAt: now},
		{Title: "Email only", URL: "https://tonkro.ci/annonce/3", ContactText: "agence@yahoo.fr", ScrapedAt: now},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(cleaned))
	}
	if cleaned[0].Title != "Villa A" || cleaned[1].Title != "Email only" {
		t.Errorf("unexpected survivors: %q, %q", cleaned[0].Title, cleaned[1].Title)
	}
}

func TestCleanerFields(t *testing.T) {
	c := NewCleaner(newTestLogger(), "Abidjan")
	scraped := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	raw := []*models.RawListing{
		{
			Source:      "Tonkro.ci",
			URL:         "https://tonkro.ci/annonce/42",
			Title:       "  Appartement   standing ",
			Description: "Bel appartement de 85 m2 avec 3 chambres, proche Marcory",
			RawPrice:    "350 000 FCFA/mois",
			ContactName: "Adjoua Marie",
			ContactText: "Tel: +225 05 11 22 33",
			ScrapedAt:   scraped,
		},
		{
			URL:         "https://tonkro.ci/annonce/43",
			Title:       "Terrain",
			Location:    "cocody",
			RawPrice:    "45 millions",
			Category:    "vente",
			ContactText: "vendeur@gmail.com",
			ScrapedAt:   scraped,
		},
		{
			URL:         "https://tonkro.ci/annonce/44",
			Title:       "",
			RawPrice:    "80 000 000",
			ContactText: "0101010101",
			ScrapedAt:   scraped,
		},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(cleaned))
	}

	a := cleaned[0]
	if a.ID != StableID("https://tonkro.ci/annonce/42") || a.ID <= 0 {
		t.Errorf("ID not derived from URL: %d", a.ID)
	}
	if a.Title != "Appartement standing" {
		t.Errorf("Title: got %q", a.Title)
	}
	if a.Type != models.TypeRental || a.Price != 350000 {
		t.Errorf("Type/Price: got %q %d", a.Type, a.Price)
	}
	if a.Surface != "85 m²" || a.Bedrooms != 3 || a.Neighborhood != "Marcory" {
		t.Errorf("Surface/Bedrooms/Neighborhood: got %q %d %q", a.Surface, a.Bedrooms, a.Neighborhood)
	}
	if a.PublishedOn != "2024-01-15" {
		t.Errorf("PublishedOn: got %q", a.PublishedOn)
	}
	if a.ContactPhone != "+225 05 11 22 33" || a.ContactWhatsApp != "22505112233" || a.ContactName != "Adjoua Marie" {
		t.Errorf("contact: got %q %q %q", a.ContactPhone, a.ContactWhatsApp, a.ContactName)
	}

	b := cleaned[1]
	if b.Neighborhood != "Cocody" || b.Price != 45000000 || b.Type != models.TypeSale {
		t.Errorf("second listing: got %q %d %q", b.Neighborhood, b.Price, b.Type)
	}

	d := cleaned[2]
	if d.Title != "Annonce immobilière" || d.Neighborhood != "Abidjan" {
		t.Errorf("defaults: got title %q neighborhood %q", d.Title, d.Neighborhood)
	}
}

func TestStableIDIsDeterministic(t *testing.T) {
	a := StableID("https://tonkro.ci/annonce/1")
	if a != StableID("https://tonkro.ci/annonce/1") {
		t.Error("StableID should be deterministic")
	}
	if a == StableID("https://tonkro.ci/annonce/2") {
		t.Error("different URLs should not collide")
	}
}
