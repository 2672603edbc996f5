// Package web renders the server-side HTML pages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/meli-lister/internal/listing"
)

//go:embed templates/*.html
var templates embed.FS

// Page names accepted by Render.
const (
	PageLogin          = "login"
	PageHome           = "home"
	PageActiveListings = "active_listings"
	PageListItem       = "list_item"
	PageError          = "error"
)

var pageNames = []string{PageLogin, PageHome, PageActiveListings, PageListItem, PageError}

// LoginPage is the data of the login page.
type LoginPage struct {
	AuthURL string
}

// HomePage is the data of the home page.
type HomePage struct {
	Authenticated bool
	UserID        string
	Created       string
}

// ActiveListingsPage is the data of the active listings page.
type ActiveListingsPage struct {
	Listings []listing.Summary
}

// ListItemPage is the data of the listing form page.
type ListItemPage struct {
	Draft       listing.Draft
	Choices     listing.Choices
	Errors      *listing.FormErrors
	BuyingModes []listing.Choice
	Conditions  []listing.Choice
}

// NewListItemPage returns the form page for draft, with the static choice
// lists filled in.
func NewListItemPage(choices listing.Choices, draft listing.Draft, errs *listing.FormErrors) ListItemPage {
	if errs == nil {
		errs = &listing.FormErrors{}
	}
	return ListItemPage{
		Draft:       draft,
		Choices:     choices,
		Errors:      errs,
		BuyingModes: listing.BuyingModes,
		Conditions:  listing.Conditions,
	}
}

// ErrorPage is the data of the error page.
type ErrorPage struct {
	Status  int
	Title   string
	Message string
}

type fieldView struct {
	Name   string
	Label  string
	Value  string
	Errors []string
}

type choiceView struct {
	Name    string
	Label   string
	Value   string
	Errors  []string
	Choices []listing.Choice
}

var funcs = template.FuncMap{
	"field": func(name, label, value string, errs *listing.FormErrors) fieldView {
		return fieldView{Name: name, Label: label, Value: value, Errors: errs.Field(name)}
	},
	"choice": func(name, label, value string, choices []listing.Choice, errs *listing.FormErrors) choiceView {
		return choiceView{Name: name, Label: label, Value: value, Errors: errs.Field(name), Choices: choices}
	},
	"quantity": func(n int) string {
		if n == 0 {
			return ""
		}
		return strconv.Itoa(n)
	},
}

// Renderer implements echo.Renderer over the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page against the shared layout.
func NewRenderer() (*Renderer, error) {
	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(templates, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning layout: %w", err)
		}
		if _, err := t.ParseFS(templates, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parsing page %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
