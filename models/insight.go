package models

// InsightReport holds the computed analytics over the stored listings.
type InsightReport struct {
	TotalListings    int
	Sales            int
	Rentals          int
	AverageSalePrice float64
	AverageRent      float64
	MinRent          Price
	MaxRent          Price
	MostExpensive    *Listing
	Cheapest         []*Listing
	BySource         map[string]int
	ByNeighborhood   map[string]int
}
