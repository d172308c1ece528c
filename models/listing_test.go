package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPriceUnmarshal(t *testing.T) {
	tests := []struct {
		raw  string
		want Price
	}{
		{`{"prix": 150000}`, 150000},
		{`{"prix": "120000000"}`, 120000000},
		{`{"prix": "150 000"}`, 150000},
		{`{"prix": null}`, 0},
		{`{"prix": ""}`, 0},
	}

	for _, tt := range tests {
		var l Listing
		if err := json.Unmarshal([]byte(tt.raw), &l); err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.raw, err)
			continue
		}
		if l.Price != tt.want {
			t.Errorf("Unmarshal(%s) price = %d; want %d", tt.raw, l.Price, tt.want)
		}
	}
}

func TestPriceUnmarshalRejectsText(t *testing.T) {
	var l Listing
	if err := json.Unmarshal([]byte(`{"prix": "Prix sur demande"}`), &l); err == nil {
		t.Error("expected an error for a non-numeric price")
	}
}

func TestFiltersMatch(t *testing.T) {
	l := &Listing{Neighborhood: "Cocody", Type: TypeSale}

	tests := []struct {
		f    Filters
		want bool
	}{
		{Filters{}, true},
		{Filters{Neighborhood: "coco"}, true},
		{Filters{Neighborhood: "Plateau"}, false},
		{Filters{Type: "VENTE"}, true},
		{Filters{Type: "location"}, false},
		{Filters{Neighborhood: "cocody", Type: "vente", Date: "2001-01-01"}, true},
	}

	for _, tt := range tests {
		if got := tt.f.Match(l); got != tt.want {
			t.Errorf("%+v.Match = %v; want %v", tt.f, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	day := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	listings := []*Listing{
		{Type: TypeSale, Neighborhood: "Cocody", PublishedOn: "2024-01-15"},
		{Type: TypeRental, Neighborhood: "Plateau", PublishedOn: "2024-01-15"},
		{Type: TypeSale, Neighborhood: "Cocody", PublishedOn: "2024-01-14"},
	}

	s := Summarize(listings, day)
	if s.TotalListings != 3 || s.PublishedToday != 2 || s.Sales != 2 || s.Rentals != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if s.ActiveNeighborhoods != 2 {
		t.Errorf("ActiveNeighborhoods: got %d, want 2", s.ActiveNeighborhoods)
	}
}
