package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"annonces-abidjan/models"
)

//go:embed templates/fragments.html
var fragmentFS embed.FS

var fragments = template.Must(template.ParseFS(fragmentFS, "templates/fragments.html"))

// DefaultContactName is shown when an ad carries no contact name.
const DefaultContactName = "Propriétaire"

// Renderer turns listings and view states into HTML fragments.
type Renderer struct {
	currency     string
	pagePath     string
	fragmentPath string
}

// NewRenderer creates a Renderer. pagePath and fragmentPath are the
// routes the retry control points at.
func NewRenderer(currency, pagePath, fragmentPath string) *Renderer {
	return &Renderer{currency: currency, pagePath: pagePath, fragmentPath: fragmentPath}
}

type cardData struct {
	*models.Listing
	Label        string
	Price        string
	Published    string
	ContactLabel string
	TelURL       template.URL
	WhatsAppURL  string
	MailURL      string
}

// Card renders one listing. Each contact link is emitted only when its
// field is present.
func (r *Renderer) Card(l *models.Listing) (template.HTML, error) {
	data := cardData{
		Listing:      l,
		Label:        CategoryLabel(l.Type),
		Price:        FormatPrice(l.Price, r.currency),
		Published:    FormatDate(l.PublishedOn),
		ContactLabel: l.ContactName,
	}
	if data.ContactLabel == "" {
		data.ContactLabel = DefaultContactName
	}
	if phone := strings.TrimSpace(l.ContactPhone); phone != "" {
		data.TelURL = telURL(phone)
	}
	if l.ContactWhatsApp != "" {
		data.WhatsAppURL = WhatsAppLink(l.ContactWhatsApp)
	}
	if l.ContactEmail != "" {
		data.MailURL = "mailto:" + l.ContactEmail
	}
	return r.execute("card", data)
}

// Cards renders the listing container content: one card per listing, or
// the empty state when there are none.
func (r *Renderer) Cards(listings []*models.Listing) (template.HTML, error) {
	if len(listings) == 0 {
		return r.execute("empty", nil)
	}
	var b strings.Builder
	for _, l := range listings {
		card, err := r.Card(l)
		if err != nil {
			return "", err
		}
		b.WriteString(string(card))
	}
	return template.HTML(b.String()), nil
}

func (r *Renderer) Loading() (template.HTML, error) {
	return r.execute("loading", nil)
}

// Error renders the failure placeholder. Its retry control reloads the
// listings with the same filters: the page link works without script,
// data-retry is used by the page script.
func (r *Renderer) Error(f models.Filters) (template.HTML, error) {
	q := filterQuery(f).Encode()
	withQuery := func(path string) string {
		if q == "" {
			return path
		}
		return path + "?" + q
	}
	return r.execute("error", struct {
		PageURL, FragmentURL string
	}{withQuery(r.pagePath), withQuery(r.fragmentPath)})
}

func (r *Renderer) execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// filterQuery holds the non-empty filters as query parameters.
func filterQuery(f models.Filters) url.Values {
	q := url.Values{}
	if f.Neighborhood != "" {
		q.Set("quartier", f.Neighborhood)
	}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	return q
}

// telURL links to phone. A number is reduced to its dialable characters;
// free text without digits is kept, escaped.
func telURL(phone string) template.URL {
	if tel := dialable(phone); strings.ContainsAny(tel, "0123456789") {
		return template.URL("tel:" + tel)
	}
	return template.URL("tel:" + url.PathEscape(phone))
}

// dialable keeps the characters a tel: URI may carry.
func dialable(phone string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '+':
			return r
		}
		return -1
	}, phone)
}
