package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ehr/fhirweb/internal/platform/fhir"
	"github.com/ehr/fhirweb/pkg/fhirmodels"
)

//go:embed templates/*.html
var templateFS embed.FS

// CSRFContextKey is where echo's CSRF middleware stores the form token.
const CSRFContextKey = "csrf"

// Page names accepted by Renderer.Render.
const (
	PageIndex           = "index.html"
	PageNewPractitioner = "new_practitioner.html"
	PageNewPatient      = "new_patient.html"
	PageSearch          = "search.html"
	PageSearchResults   = "search_results.html"
	PageServer          = "server.html"
)

var pages = []string{
	PageIndex,
	PageNewPractitioner,
	PageNewPatient,
	PageSearch,
	PageSearchResults,
	PageServer,
}

// Page is what every template receives: the handler's view data plus the
// CSRF token for forms.
type Page struct {
	Data      interface{}
	CSRFToken string
}

// Funcs are the template helpers available to every page.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"fhirdate": fhir.FormatDate,
		"join":     strings.Join,
		"genders":  func() []string { return fhirmodels.Genders },
	}
}

// Renderer implements echo.Renderer over the embedded page templates.
type Renderer struct {
	templates map[string]*template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

// New parses every page together with the shared layout and partials.
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(Funcs()).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.templates[page] = tmpl
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var token string
	if c != nil {
		token, _ = c.Get(CSRFContextKey).(string)
	}

	return tmpl.ExecuteTemplate(w, "layout", Page{Data: data, CSRFToken: token})
}
