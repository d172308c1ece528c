package view

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Document is the page the view writes into, addressed by element id.
// Every method is a no-op (reporting false) when the id is absent.
type Document interface {
	SetText(id, text string) bool
	SetHTML(id string, html template.HTML) bool
	// Value returns the current value of a form field.
	Value(id string) (string, bool)
}

// HTMLDocument is a Document backed by a parsed HTML tree. All access is
// serialized, so concurrent loads may write their regions in any order.
type HTMLDocument struct {
	mu  sync.Mutex
	doc *goquery.Document
}

// ParseDocument parses an HTML page.
func ParseDocument(r io.Reader) (*HTMLDocument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("view: parse document: %w", err)
	}
	return &HTMLDocument{doc: doc}, nil
}

func (d *HTMLDocument) byID(id string) *goquery.Selection {
	return d.doc.Find(`[id="` + id + `"]`).First()
}

func (d *HTMLDocument) SetText(id, text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	sel := d.byID(id)
	if sel.Length() == 0 {
		return false
	}
	sel.SetText(text)
	return true
}

func (d *HTMLDocument) SetHTML(id string, html template.HTML) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	sel := d.byID(id)
	if sel.Length() == 0 {
		return false
	}
	sel.SetHtml(string(html))
	return true
}

// Text returns the text content of an element.
func (d *HTMLDocument) Text(id string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sel := d.byID(id)
	if sel.Length() == 0 {
		return "", false
	}
	return sel.Text(), true
}

// Value reads an input's value attribute, or the selected option of a
// select (the first option when none is marked).
func (d *HTMLDocument) Value(id string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sel := d.byID(id)
	if sel.Length() == 0 {
		return "", false
	}
	switch goquery.NodeName(sel) {
	case "select":
		opt := sel.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = sel.Find("option").First()
		}
		return optionValue(opt), true
	case "textarea":
		return sel.Text(), true
	default:
		v, _ := sel.Attr("value")
		return v, true
	}
}

// SetValue pre-fills a form field. For a select, the option with the
// matching value becomes the selected one; unknown values are ignored.
func (d *HTMLDocument) SetValue(id, value string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	sel := d.byID(id)
	if sel.Length() == 0 {
		return false
	}
	switch goquery.NodeName(sel) {
	case "select":
		opts := sel.Find("option")
		match := opts.FilterFunction(func(_ int, o *goquery.Selection) bool {
			return optionValue(o) == value
		})
		if match.Length() == 0 {
			return false
		}
		opts.RemoveAttr("selected")
		match.First().SetAttr("selected", "selected")
	case "textarea":
		sel.SetText(value)
	default:
		sel.SetAttr("value", value)
	}
	return true
}

// SetAttr sets an attribute on an element.
func (d *HTMLDocument) SetAttr(id, name, value string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	sel := d.byID(id)
	if sel.Length() == 0 {
		return false
	}
	sel.SetAttr(name, value)
	return true
}

// Outer returns the HTML of an element including its own tag.
func (d *HTMLDocument) Outer(id string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sel := d.byID(id)
	if sel.Length() == 0 {
		return "", fmt.Errorf("view: no element %q", id)
	}
	return goquery.OuterHtml(sel)
}

// Render serializes the whole page.
func (d *HTMLDocument) Render() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	html, err := d.doc.Html()
	if err != nil {
		return "", fmt.Errorf("view: render document: %w", err)
	}
	return html, nil
}

// Find exposes a CSS query over the document, for callers that inspect
// rendered output.
func (d *HTMLDocument) Find(selector string) *goquery.Selection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find(selector)
}

func optionValue(o *goquery.Selection) string {
	if v, ok := o.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(o.Text())
}

var _ Document = (*HTMLDocument)(nil)
