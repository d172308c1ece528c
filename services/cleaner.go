package services

import (
	"hash/fnv"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"annonces-abidjan/models"
	"annonces-abidjan/utils"
)

var (
	// millionsRegexp captures "120 millions", "1,5 M" style amounts
	millionsRegexp = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:millions?|m)\b`)
	// amountRegexp captures the first grouped number, e.g. "150 000" or "150.000"
	amountRegexp = regexp.MustCompile(`\d[\d\s.,\x{00A0}\x{202F}]*`)
	// surfaceRegexp captures "85 m²" or "85m2"
	surfaceRegexp = regexp.MustCompile(`(?i)(\d+)\s*m(?:²|2)`)
	// bedroomsRegexp captures "3 chambres", "4ch"
	bedroomsRegexp = regexp.MustCompile(`(?i)(\d+)\s*(?:chambres?|ch\b)`)
	// phoneRegexp captures +225 numbers (8 or 10 digits) and local 10-digit numbers
	phoneRegexp = regexp.MustCompile(`\+?225[\s.-]*\d{2}(?:[\s.-]?\d{2}){3,4}\b|\b0\d(?:[\s.-]?\d{2}){4}\b`)
	emailRegexp = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// KnownNeighborhoods are the Abidjan communes recognised in free text.
var KnownNeighborhoods = []string{
	"Plateau", "Cocody", "Treichville", "Marcory", "Yopougon", "Rivera",
	"Bingerville", "Anyama", "Koumassi", "Port-Bouet", "Abobo", "Adjamé",
}

// Cleaner transforms RawListings into clean, validated Listings.
type Cleaner struct {
	logger *utils.Logger
	city   string
}

// NewCleaner creates a Cleaner. city is used as the neighborhood when none
// can be detected.
func NewCleaner(logger *utils.Logger, city string) *Cleaner {
	return &Cleaner{logger: logger, city: city}
}

// Clean processes raw listings and returns cleaned records. Listings with
// no URL, a URL already seen in the batch, or no way to reach the
// advertiser (no phone and no email) are dropped.
func (c *Cleaner) Clean(raw []*models.RawListing) []*models.Listing {
	seen := make(map[string]struct{})
	result := make([]*models.Listing, 0, len(raw))

	for _, r := range raw {
		url := strings.TrimSpace(r.URL)
		if url == "" {
			c.logger.Warn("[cleaner] Dropping listing with empty URL: %s", r.Title)
			continue
		}
		if _, dup := seen[url]; dup {
			c.logger.Debug("[cleaner] Duplicate URL skipped: %s", url)
			continue
		}
		seen[url] = struct{}{}

		contact := ExtractContact(r.ContactText)
		if contact.Phone == "" && contact.Email == "" {
			c.logger.Debug("[cleaner] No contact for %s, dropped", url)
			continue
		}

		title := normaliseText(r.Title)
		if title == "" {
			title = "Annonce immobilière"
		}
		description := normaliseText(r.Description)
		text := title + " " + description

		listing := &models.Listing{
			ID:              StableID(url),
			Title:           title,
			Description:     description,
			Image:           strings.TrimSpace(r.Image),
			Type:            detectType(r.Category, text+" "+r.RawPrice),
			Price:           parsePrice(r.RawPrice),
			Surface:         c.parseSurface(r.Surface, description),
			Neighborhood:    c.detectNeighborhood(r.Location, text),
			Bedrooms:        parseBedrooms(r.Bedrooms, text),
			PublishedOn:     r.ScrapedAt.Format(models.DateLayout),
			Source:          strings.TrimSpace(r.Source),
			URL:             url,
			ContactName:     normaliseText(r.ContactName),
			ContactPhone:    contact.Phone,
			ContactWhatsApp: contact.WhatsApp,
			ContactEmail:    contact.Email,
			RetrievedAt:     r.ScrapedAt,
		}
		result = append(result, listing)
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// StableID derives a positive 63-bit listing id from its URL, so the same
// ad scraped twice maps onto the same row.
func StableID(url string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(url))
	return int64(h.Sum64() & math.MaxInt64)
}

// parsePrice extracts an amount in FCFA.
// Examples:
//
//	"120 000 000 FCFA" → 120000000
//	"150.000 FCFA/mois" → 150000
//	"85 millions" → 85000000
//	"Prix sur demande" → 0
func parsePrice(raw string) models.Price {
	raw = strings.TrimSpace(raw)
	if m := millionsRegexp.FindStringSubmatch(raw); len(m) == 2 {
		f, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
		if err == nil {
			return models.Price(math.Round(f * 1e6))
		}
	}

	match := amountRegexp.FindString(raw)
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, match)
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return models.Price(n)
}

// detectType maps an explicit category or free text onto vente/location.
func detectType(category, text string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "vente", "sale", "à vendre":
		return models.TypeSale
	case "location", "rental", "à louer":
		return models.TypeRental
	}
	lower := strings.ToLower(text)
	for _, hint := range []string{"à louer", "a louer", "location", "/mois", "par mois", "loyer"} {
		if strings.Contains(lower, hint) {
			return models.TypeRental
		}
	}
	return models.TypeSale
}

func (c *Cleaner) detectNeighborhood(location, text string) string {
	if loc := normaliseText(location); loc != "" {
		for _, q := range KnownNeighborhoods {
			if strings.EqualFold(loc, q) {
				return q
			}
		}
		return loc
	}
	lower := strings.ToLower(text)
	for _, q := range KnownNeighborhoods {
		if strings.Contains(lower, strings.ToLower(q)) {
			return q
		}
	}
	return c.city
}

func (c *Cleaner) parseSurface(raw, description string) string {
	for _, s := range []string{raw, description} {
		if m := surfaceRegexp.FindStringSubmatch(s); len(m) == 2 {
			return m[1] + " m²"
		}
	}
	return normaliseText(raw)
}

func parseBedrooms(raw, text string) int {
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n >= 0 {
		return n
	}
	if m := bedroomsRegexp.FindStringSubmatch(text); len(m) == 2 {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}

// Contact holds the reachable channels found in an ad.
type Contact struct {
	Phone    string
	WhatsApp string
	Email    string
}

// ExtractContact finds the first Ivorian phone number and email address in
// text. The phone is normalised to "+225 XX XX XX XX[ XX]" and doubles as
// the WhatsApp handle (digits only).
func ExtractContact(text string) Contact {
	var c Contact
	if m := phoneRegexp.FindString(text); m != "" {
		digits := onlyDigits(m)
		if strings.HasPrefix(digits, "225") && (len(digits) == 11 || len(digits) == 13) {
			digits = digits[3:]
		}
		if len(digits) == 8 || len(digits) == 10 {
			c.Phone = "+225 " + groupPairs(digits)
			c.WhatsApp = "225" + digits
		}
	}
	c.Email = emailRegexp.FindString(text)
	return c
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func groupPairs(digits string) string {
	pairs := make([]string, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		pairs = append(pairs, digits[i:i+2])
	}
	return strings.Join(pairs, " ")
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
