package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"annonces-abidjan/models"
	"annonces-abidjan/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes counts, sale and rent price statistics and the
// per-source and per-neighbourhood breakdowns. Listings without a price
// are counted but left out of the averages.
func (s *InsightService) Generate(listings []*models.Listing) *models.InsightReport {
	report := &models.InsightReport{
		BySource:       make(map[string]int),
		ByNeighborhood: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var saleTotal, rentTotal float64
	var salesPriced, rentals []*models.Listing

	for _, l := range listings {
		switch l.Type {
		case models.TypeSale:
			report.Sales++
			if l.Price > 0 {
				salesPriced = append(salesPriced, l)
				saleTotal += float64(l.Price)
			}
		case models.TypeRental:
			report.Rentals++
			if l.Price > 0 {
				rentals = append(rentals, l)
				rentTotal += float64(l.Price)
			}
		}
		if l.Source != "" {
			report.BySource[l.Source]++
		}
		if l.Neighborhood != "" {
			report.ByNeighborhood[l.Neighborhood]++
		}
	}

	if len(salesPriced) > 0 {
		report.AverageSalePrice = round2(saleTotal / float64(len(salesPriced)))
		for _, l := range salesPriced {
			if report.MostExpensive == nil || l.Price > report.MostExpensive.Price {
				report.MostExpensive = l
			}
		}
	}

	if len(rentals) > 0 {
		report.AverageRent = round2(rentTotal / float64(len(rentals)))
		report.MinRent = rentals[0].Price
		report.MaxRent = rentals[0].Price
		for _, l := range rentals {
			if l.Price < report.MinRent {
				report.MinRent = l.Price
			}
			if l.Price > report.MaxRent {
				report.MaxRent = l.Price
			}
		}

		cheapest := make([]*models.Listing, len(rentals))
		copy(cheapest, rentals)
		sort.SliceStable(cheapest, func(i, j int) bool {
			return cheapest[i].Price < cheapest[j].Price
		})
		if len(cheapest) > 5 {
			cheapest = cheapest[:5]
		}
		report.Cheapest = cheapest
	}

	s.logger.Debug("[insights] %d listings, %d sales, %d rentals",
		report.TotalListings, report.Sales, report.Rentals)
	return report
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 ANNONCES ABIDJAN INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total listings : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  Sales          : \033[1m%d\033[0m\n", r.Sales)
	fmt.Fprintf(w, "  Rentals        : \033[1m%d\033[0m\n", r.Rentals)
	fmt.Fprintln(w)

	// Prices
	fmt.Fprintf(w, "\033[1;33m  Price Statistics (FCFA)\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.AverageSalePrice > 0 {
		fmt.Fprintf(w, "  Average sale price : \033[1;32m%s\033[0m\n", fcfa(int64(r.AverageSalePrice)))
	} else {
		fmt.Fprintf(w, "  No sale price data available\n")
	}
	if r.AverageRent > 0 {
		fmt.Fprintf(w, "  Average rent       : \033[1;32m%s/mois\033[0m\n", fcfa(int64(r.AverageRent)))
		fmt.Fprintf(w, "  Rent range         : \033[1;32m%s - %s\033[0m\n",
			fcfa(int64(r.MinRent)), fcfa(int64(r.MaxRent)))
	} else {
		fmt.Fprintf(w, "  No rent data available\n")
	}
	fmt.Fprintln(w)

	if r.MostExpensive != nil {
		fmt.Fprintf(w, "\033[1;33m  Most Expensive Sale\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.MostExpensive.Title, 50))
		fmt.Fprintf(w, "  Quartier : %s\n", r.MostExpensive.Neighborhood)
		fmt.Fprintf(w, "  Prix     : \033[1;31m%s\033[0m\n", fcfa(int64(r.MostExpensive.Price)))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  5 Cheapest Rentals\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.Cheapest) == 0 {
		fmt.Fprintf(w, "  No rentals found\n")
	} else {
		for i, l := range r.Cheapest {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s \033[1;32m%s\033[0m\n",
				i+1, truncate(l.Title, 38), fcfa(int64(l.Price)))
		}
	}
	fmt.Fprintln(w)

	printCounts(w, "Listings by Source", thin, r.BySource)
	printCounts(w, "Listings by Neighbourhood", thin, r.ByNeighborhood)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func printCounts(w io.Writer, title, thin string, counts map[string]int) {
	fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", title)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(counts) == 0 {
		fmt.Fprintf(w, "  No data\n")
		return
	}

	type keyCount struct {
		key   string
		count int
	}
	var rows []keyCount
	for k, c := range counts {
		rows = append(rows, keyCount{k, c})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].key < rows[j].key
	})
	for _, row := range rows {
		bar := strings.Repeat("█", row.count)
		fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(row.key, 28), bar, row.count)
	}
	fmt.Fprintln(w)
}

func fcfa(n int64) string {
	return strings.ReplaceAll(humanize.Comma(n), ",", " ") + " FCFA"
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
