package view

import (
	"bytes"
	_ "embed"

	"annonces-abidjan/models"
	"annonces-abidjan/utils"
)

// Region ids of the page beyond the elements the view binds to.
const (
	IDResults         = "resultats"
	IDLoadingTemplate = "annonces-loading"
)

//go:embed templates/index.html
var indexHTML []byte

// Page is one server-rendered listings page and the view bound to it.
type Page struct {
	Doc  *HTMLDocument
	View *ListingsView
}

// NewPage parses the page, pre-fills the search form from f and binds a
// ListingsView to it. The loading placeholder is embedded in the page
// for the script to show while a search is in flight.
func NewPage(api API, f models.Filters, logger *utils.Logger, opts Options) (*Page, error) {
	doc, err := ParseDocument(bytes.NewReader(indexHTML))
	if err != nil {
		return nil, err
	}
	v := New(api, doc, logger, opts)

	doc.SetValue(IDNeighborhood, f.Neighborhood)
	doc.SetValue(IDType, f.Type)
	if f.Date != "" {
		doc.SetValue(IDDate, f.Date)
	}
	doc.SetAttr(IDSearchForm, "data-fragment", v.render.fragmentPath)

	loading, err := v.render.Loading()
	if err != nil {
		return nil, err
	}
	doc.SetHTML(IDLoadingTemplate, loading)

	return &Page{Doc: doc, View: v}, nil
}

// Results renders the results region alone, as swapped in by the page
// script after a search.
func (p *Page) Results() (string, error) {
	return p.Doc.Outer(IDResults)
}
