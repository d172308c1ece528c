package services

import (
	"bytes"
	"strings"
	"testing"

	"annonces-abidjan/models"
)

func sampleListings() []*models.Listing {
	return []*models.Listing{
		{Source: "Tonkro.ci", Title: "Villa A", Type: models.TypeSale, Price: 200000000, Neighborhood: "Cocody"},
		{Source: "Tonkro.ci", Title: "Studio B", Type: models.TypeRental, Price: 150000, Neighborhood: "Cocody"},
		{Source: "Jumia Deal CI", Title: "Duplex C", Type: models.TypeRental, Price: 450000, Neighborhood: "Marcory"},
		{Source: "Jumia Deal CI", Title: "Terrain D", Type: models.TypeSale, Price: 80000000, Neighborhood: "Bingerville"},
		{Source: "Expat Abidjan", Title: "Maison E", Type: models.TypeSale, Price: 0, Neighborhood: "Marcory"},
	}
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleListings())
	if r.TotalListings != 5 {
		t.Errorf("TotalListings: got %d, want 5", r.TotalListings)
	}
	if r.Sales != 3 || r.Rentals != 2 {
		t.Errorf("Sales/Rentals: got %d/%d, want 3/2", r.Sales, r.Rentals)
	}
}

func TestInsightPrices(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleListings())
	if r.AverageSalePrice != 140000000 {
		t.Errorf("AverageSalePrice: got %.2f, want 140000000", r.AverageSalePrice)
	}
	if r.AverageRent != 300000 {
		t.Errorf("AverageRent: got %.2f, want 300000", r.AverageRent)
	}
	if r.MinRent != 150000 || r.MaxRent != 450000 {
		t.Errorf("rent range: got %d-%d", r.MinRent, r.MaxRent)
	}
}

func TestInsightMostExpensiveAndCheapest(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleListings())
	if r.MostExpensive == nil || r.MostExpensive.Title != "Villa A" {
		t.Fatalf("MostExpensive: got %+v", r.MostExpensive)
	}
	if len(r.Cheapest) != 2 || r.Cheapest[0].Title != "Studio B" {
		t.Errorf("Cheapest: got %+v", r.Cheapest)
	}
}

func TestInsightGrouping(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleListings())
	if r.ByNeighborhood["Cocody"] != 2 || r.ByNeighborhood["Marcory"] != 2 {
		t.Errorf("ByNeighborhood: got %v", r.ByNeighborhood)
	}
	if r.BySource["Jumia Deal CI"] != 2 {
		t.Errorf("BySource: got %v", r.BySource)
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(nil)
	if r.TotalListings != 0 {
		t.Errorf("expected 0 total listings for empty input")
	}

	var buf bytes.Buffer
	svc.Print(&buf, r)
	if !strings.Contains(buf.String(), "No rentals found") {
		t.Errorf("empty report should say so, got:\n%s", buf.String())
	}
}

func TestInsightPrint(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	var buf bytes.Buffer
	svc.Print(&buf, svc.Generate(sampleListings()))
	out := buf.String()
	for _, want := range []string{"140 000 000 FCFA", "300 000 FCFA/mois", "Villa A", "Cocody"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}
