package generator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"annonces-abidjan/models"
	"annonces-abidjan/utils"
)

// Source styles produced by the generator.
const (
	SourceTonkro = "Tonkro.ci"
	SourceJumia  = "Jumia Deal CI"
	SourceExpat  = "Expat Abidjan"
)

var (
	maleFirstNames = []string{"Kouassi", "Koffi", "Yao", "N'Guessan", "Ouattara", "Traoré", "Coulibaly",
		"Koné", "Diabaté", "Bamba", "Silué", "Doumbia", "Sawadogo", "Kaboré"}
	femaleFirstNames = []string{"Adjoua", "Akissi", "Ama", "Aminata", "Mariam", "Djénéba", "Fatima",
		"Salimata", "Aïcha", "Hawa", "Rokia", "Fatoumata"}
	lastNames = []string{"Jean", "Paul", "Marie", "Sandra", "Michel", "Eric", "Ali", "Sekou",
		"Ibrahim", "Mamadou", "Georges", "Raoul", "Salif", "Moussa", "Issouf"}
	emailDomains = []string{"gmail.com", "yahoo.fr", "outlook.com", "hotmail.com"}

	// operatorPrefixes are the leading digit pairs of MTN, Orange and Moov numbers.
	operatorPrefixes = [][]string{
		{"05", "65", "45", "55"},
		{"07", "67", "47", "57"},
		{"01", "61", "41", "51"},
	}
)

type priceRange struct{ min, max int64 }

type neighborhoodPrices struct {
	name         string
	sale, rental priceRange
}

var neighborhoods = []neighborhoodPrices{
	{"Plateau", priceRange{80000000, 500000000}, priceRange{300000, 1200000}},
	{"Cocody", priceRange{120000000, 800000000}, priceRange{400000, 1500000}},
	{"Treichville", priceRange{40000000, 200000000}, priceRange{180000, 600000}},
	{"Marcory", priceRange{60000000, 300000000}, priceRange{250000, 750000}},
	{"Yopougon", priceRange{35000000, 180000000}, priceRange{120000, 500000}},
	{"Rivera", priceRange{100000000, 600000000}, priceRange{350000, 1100000}},
	{"Bingerville", priceRange{50000000, 250000000}, priceRange{200000, 600000}},
	{"Anyama", priceRange{30000000, 150000000}, priceRange{100000, 400000}},
	{"Koumassi", priceRange{45000000, 220000000}, priceRange{150000, 550000}},
	{"Port-Bouet", priceRange{55000000, 280000000}, priceRange{200000, 650000}},
}

type propertyKind struct {
	name                   string
	minRooms, maxRooms     int
	minSurface, maxSurface int
	titles                 []string
}

var kinds = []propertyKind{
	{"appartement", 1, 4, 40, 120, []string{
		"Appartement {chambres}P standing - {quartier}",
		"Bel appartement {chambres} pièces moderne - {quartier}",
		"Appartement {chambres} chambres climatisé - {quartier}",
	}},
	{"villa", 3, 7, 120, 400, []string{
		"Villa {chambres} chambres avec jardin - {quartier}",
		"Magnifique villa moderne {chambres}ch - {quartier}",
		"Villa standing {chambres} chambres + piscine - {quartier}",
	}},
	{"studio", 0, 1, 20, 45, []string{
		"Studio meublé moderne - {quartier}",
		"Joli studio climatisé - {quartier}",
	}},
	{"duplex", 2, 5, 80, 200, []string{
		"Duplex {chambres} chambres moderne - {quartier}",
		"Beau duplex {chambres}ch avec terrasse - {quartier}",
	}},
	{"maison", 2, 6, 70, 250, []string{
		"Maison {chambres} pièces avec cour - {quartier}",
		"Belle maison familiale {chambres}ch - {quartier}",
	}},
}

var descriptions = []string{
	"Beau %s bien situé dans un quartier résidentiel calme et sécurisé. Proche des commodités (écoles, marchés, transports).",
	"%s moderne avec finitions de qualité, carrelage au sol, cuisine aménagée. Quartier dynamique avec bon voisinage.",
	"Excellent %s dans environnement paisible, titre foncier disponible. Eau, électricité SODECI.",
	"%s récemment rénové, très bon état. Proche centres commerciaux et arrêts de transport.",
}

var expatNeighborhoods = []string{"Cocody", "Rivera", "Plateau", "Marcory"}

// Generator produces realistic Abidjan listings in the style of three
// local classified sites. It stands in for live scraping in demos and
// development.
type Generator struct {
	logger *utils.Logger
	now    func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
	seq int64
}

// New creates a Generator. The same seed yields the same listings.
func New(logger *utils.Logger, seed int64) *Generator {
	return &Generator{
		logger: logger,
		now:    time.Now,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (g *Generator) Name() string { return "generator" }

// Scrape returns one batch of raw listings: 4-8 Tonkro style, 3-6 Jumia
// Deal style and 2-4 Expat Abidjan style ads.
func (g *Generator) Scrape(ctx context.Context) ([]*models.RawListing, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	var out []*models.RawListing
	batches := []struct {
		source string
		min    int
		max    int
		build  func(time.Time) *models.RawListing
	}{
		{SourceTonkro, 4, 8, g.tonkro},
		{SourceJumia, 3, 6, g.jumia},
		{SourceExpat, 2, 4, g.expat},
	}
	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		n := b.min + g.rng.Intn(b.max-b.min+1)
		for i := 0; i < n; i++ {
			out = append(out, b.build(now))
		}
		g.logger.Debug("[generator] %d %s listings", n, b.source)
	}

	g.logger.Info("[generator] Generated %d listings", len(out))
	return out, nil
}

func (g *Generator) tonkro(now time.Time) *models.RawListing {
	q := neighborhoods[g.rng.Intn(len(neighborhoods))]
	k := kinds[g.rng.Intn(len(kinds))]
	category := g.pickCategory()
	rooms := g.between(k.minRooms, k.maxRooms)
	surface := g.between(k.minSurface, k.maxSurface)
	price := g.price(q, category, surface, 1)

	title := strings.NewReplacer("{chambres}", fmt.Sprint(rooms), "{quartier}", q.name).
		Replace(k.titles[g.rng.Intn(len(k.titles))])
	return g.raw(SourceTonkro, "https://tonkro.ci/annonce", now, title,
		g.describe(k.name), q.name, category, price, surface, rooms)
}

func (g *Generator) jumia(now time.Time) *models.RawListing {
	q := neighborhoods[g.rng.Intn(len(neighborhoods))]
	k := kinds[g.rng.Intn(len(kinds))]
	category := g.pickCategory()
	rooms := g.between(k.minRooms, k.maxRooms)
	surface := g.between(k.minSurface, k.maxSurface)
	factor := 1.0

	// Jumia Deal leans towards high-end villas and duplexes.
	if g.rng.Float64() < 0.6 {
		k = kinds[1+2*g.rng.Intn(2)]
		if k.name == "villa" {
			rooms = g.between(4, 7)
			surface = g.between(200, 500)
			factor = 1.3
		}
	}
	price := g.price(q, category, surface, factor)

	title := fmt.Sprintf("%s %d chambres standing - %s", capitalize(k.name), rooms, q.name)
	return g.raw(SourceJumia, "https://deals.jumia.ci/annonce", now, title,
		g.describe(k.name), q.name, category, price, surface, rooms)
}

func (g *Generator) expat(now time.Time) *models.RawListing {
	q := expatNeighborhoods[g.rng.Intn(len(expatNeighborhoods))]
	var title, description string
	var rooms, surface int
	var price int64

	switch g.rng.Intn(3) {
	case 0:
		rooms, surface = g.between(4, 6), g.between(250, 500)
		price = g.between64(150000000, 700000000)
		title = fmt.Sprintf("Villa %d chambres meublée pour expatriés - %s", rooms, q)
		description = "Villa haut standing entièrement meublée et équipée. Piscine, jardin paysager, garage double."
	case 1:
		rooms, surface = g.between(2, 4), g.between(80, 180)
		price = g.between64(80000000, 400000000)
		title = fmt.Sprintf("Appartement %dP meublé expatriés - %s", rooms, q)
		description = "Appartement moderne entièrement meublé dans résidence sécurisée. Proche ambassades et écoles internationales."
	default:
		rooms, surface = g.between(3, 5), g.between(150, 300)
		price = g.between64(120000000, 500000000)
		title = fmt.Sprintf("Duplex %dch standing expatriés - %s", rooms, q)
		description = "Duplex moderne avec terrasse et vue. Meublé et équipé. Résidence avec piscine commune."
	}

	// Expat ads are always rentals, quoted at the sale-scale amount.
	return g.raw(SourceExpat, "https://expat-abidjan.com/annonce", now, title,
		description, q, models.TypeRental, price, surface, rooms)
}

func (g *Generator) raw(source, baseURL string, now time.Time, title, description, quartier, category string,
	price int64, surface, rooms int) *models.RawListing {
	g.seq++
	name, phone, email := g.contact()

	rawPrice := humanize.Comma(price) + " FCFA"
	if category == models.TypeRental && price < 1000000 {
		rawPrice += "/mois"
	}

	return &models.RawListing{
		Source:      source,
		URL:         fmt.Sprintf("%s/%d%03d", baseURL, now.UnixMilli(), g.seq),
		Title:       title,
		Description: description,
		RawPrice:    strings.ReplaceAll(rawPrice, ",", " "),
		Location:    quartier,
		Surface:     fmt.Sprintf("%d m²", surface),
		Bedrooms:    fmt.Sprintf("%d", rooms),
		Category:    category,
		ContactName: name,
		ContactText: fmt.Sprintf("Contact: %s - %s - %s", name, phone, email),
		ScrapedAt:   now,
	}
}

// contact returns a name, an Ivorian phone number "+225 XX XX XX XX" and
// an email address derived from the name.
func (g *Generator) contact() (string, string, string) {
	var first string
	if g.rng.Intn(2) == 0 {
		first = maleFirstNames[g.rng.Intn(len(maleFirstNames))]
	} else {
		first = femaleFirstNames[g.rng.Intn(len(femaleFirstNames))]
	}
	last := lastNames[g.rng.Intn(len(lastNames))]

	prefixes := operatorPrefixes[g.rng.Intn(len(operatorPrefixes))]
	phone := fmt.Sprintf("+225 %s %02d %02d %02d", prefixes[g.rng.Intn(len(prefixes))],
		g.between(10, 99), g.between(10, 99), g.between(10, 99))

	local := strings.NewReplacer("'", "", " ", "").Replace(strings.ToLower(first))
	email := fmt.Sprintf("%s.%s@%s", asciiFold(local), strings.ToLower(last),
		emailDomains[g.rng.Intn(len(emailDomains))])

	return first + " " + last, phone, email
}

func (g *Generator) pickCategory() string {
	if g.rng.Intn(2) == 0 {
		return models.TypeSale
	}
	return models.TypeRental
}

// price scales the neighbourhood range by surface (per 100 m²) with ±15%
// variation.
func (g *Generator) price(q neighborhoodPrices, category string, surface int, factor float64) int64 {
	r := q.sale
	if category == models.TypeRental {
		r = q.rental
	}
	base := float64(g.between64(r.min, r.max))
	variation := 0.85 + g.rng.Float64()*0.3
	return int64(base * float64(surface) / 100 * variation * factor)
}

func (g *Generator) describe(kind string) string {
	tmpl := descriptions[g.rng.Intn(len(descriptions))]
	if strings.HasPrefix(tmpl, "%s") {
		return fmt.Sprintf(tmpl, capitalize(kind))
	}
	return fmt.Sprintf(tmpl, kind)
}

func (g *Generator) between(min, max int) int {
	return min + g.rng.Intn(max-min+1)
}

func (g *Generator) between64(min, max int64) int64 {
	return min + g.rng.Int63n(max-min+1)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// asciiFold drops the accents that appear in the first-name lists so the
// generated addresses stay valid.
func asciiFold(s string) string {
	return strings.NewReplacer("é", "e", "è", "e", "ï", "i", "ô", "o").Replace(s)
}
