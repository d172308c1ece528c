package view

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"annonces-abidjan/models"
)

// narrowNBSP is the thousands separator of French number formatting.
const narrowNBSP = "\u202f"

var (
	frenchMonths = [...]string{"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre"}
	frenchWeekdays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}
)

// FormatPrice renders amounts of a million and more as a sale price in
// millions ("120.0 M FCFA") and smaller amounts as a monthly rent with
// French digit grouping ("150 000 FCFA/mois").
func FormatPrice(p models.Price, currency string) string {
	if p >= 1000000 {
		// Half up, as the browser's toFixed does for these exact tenths.
		return fmt.Sprintf("%.1f M %s", math.Round(float64(p)/1e5)/10, currency)
	}
	grouped := strings.ReplaceAll(humanize.Comma(int64(p)), ",", narrowNBSP)
	return grouped + " " + currency + "/mois"
}

// FormatDate turns a YYYY-MM-DD publication date into "15 janvier 2024".
// Anything else is returned unchanged.
func FormatDate(s string) string {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return fmt.Sprintf("%d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
}

// FormatLongDate renders t as "lundi 19 octobre 2026".
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", frenchWeekdays[t.Weekday()], t.Day(), frenchMonths[t.Month()-1], t.Year())
}

// CategoryLabel maps the listing type to its badge label.
func CategoryLabel(kind string) string {
	if kind == models.TypeSale {
		return "À vendre"
	}
	return "À louer"
}

// WhatsAppLink builds the wa.me link from a handle, keeping digits only.
func WhatsAppLink(handle string) string {
	return "https://wa.me/" + strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, handle)
}
