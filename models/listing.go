package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Listing categories as stored and transmitted by the API.
const (
	TypeSale   = "vente"
	TypeRental = "location"
)

// DateLayout is the layout of publication dates on the wire.
const DateLayout = "2006-01-02"

// DefaultImage is served for listings stored without a picture.
const DefaultImage = "https://via.placeholder.com/300x200?text=Immobilier"

// RawListing holds unprocessed scraped data directly from a source.
// This is written to CSV before any cleaning or transformation.
type RawListing struct {
	Source      string
	URL         string
	Title       string
	Description string
	RawPrice    string
	Location    string
	Surface     string
	Bedrooms    string
	Category    string
	Image       string
	ContactName string
	ContactText string
	ScrapedAt   time.Time
}

// Price is an amount in the local currency. The original backend keeps
// prices as text, so it decodes from a JSON number or a numeric string.
type Price int64

// UnmarshalJSON accepts 150000, "150000" and "150 000".
func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := ParsePrice(s)
		if err != nil {
			return err
		}
		*p = n
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}
	*p = Price(f)
	return nil
}

// ParsePrice parses a plain amount, ignoring grouping spaces.
func ParsePrice(s string) (Price, error) {
	digits := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', ',':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if digits == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, fmt.Errorf("price %q: %w", s, err)
	}
	return Price(f), nil
}

// Listing is one classified ad (annonce) as exposed by the API.
type Listing struct {
	ID              int64     `json:"id"`
	Title           string    `json:"titre"`
	Description     string    `json:"description"`
	Image           string    `json:"image"`
	Type            string    `json:"type"`
	Price           Price     `json:"prix"`
	Surface         string    `json:"surface"`
	Neighborhood    string    `json:"quartier"`
	Bedrooms        int       `json:"chambres"`
	PublishedOn     string    `json:"date_publication"`
	Source          string    `json:"source,omitempty"`
	URL             string    `json:"url,omitempty"`
	ContactName     string    `json:"contact_nom,omitempty"`
	ContactPhone    string    `json:"contact_telephone,omitempty"`
	ContactWhatsApp string    `json:"contact_whatsapp,omitempty"`
	ContactEmail    string    `json:"contact_email,omitempty"`
	RetrievedAt     time.Time `json:"-"`
}

// Statistics are the aggregate counts shown in the page header.
type Statistics struct {
	TotalListings       int `json:"total_annonces"`
	PublishedToday      int `json:"annonces_aujourd_hui"`
	Sales               int `json:"ventes"`
	Rentals             int `json:"locations"`
	ActiveNeighborhoods int `json:"quartiers_actifs"`
}

// Filters narrow a listing query. Empty fields match everything.
type Filters struct {
	Neighborhood string
	Type         string
	Date         string
}

// Match reports whether l satisfies the filters: case-insensitive
// substring match on neighborhood and type. Date is not a match criterion.
func (f Filters) Match(l *Listing) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Neighborhood)); q != "" &&
		!strings.Contains(strings.ToLower(l.Neighborhood), q) {
		return false
	}
	if t := strings.ToLower(strings.TrimSpace(f.Type)); t != "" &&
		!strings.Contains(strings.ToLower(l.Type), t) {
		return false
	}
	return true
}

// Summarize computes the header statistics over listings for the given day.
func Summarize(listings []*Listing, day time.Time) Statistics {
	today := day.Format(DateLayout)
	quartiers := make(map[string]struct{})
	var s Statistics
	for _, l := range listings {
		s.TotalListings++
		if l.PublishedOn == today {
			s.PublishedToday++
		}
		switch l.Type {
		case TypeSale:
			s.Sales++
		case TypeRental:
			s.Rentals++
		}
		quartiers[l.Neighborhood] = struct{}{}
	}
	s.ActiveNeighborhoods = len(quartiers)
	return s
}
