package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/lysyi3m/scroll-feed/app/feed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DefaultTitle = "Infinite Scroll Example"

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

type Renderer struct {
	templates *template.Template
	printer   *message.Printer
	title     string
	threshold float64
}

type pageView struct {
	Title     string
	Threshold float64
}

type feedView struct {
	ID    string
	Title string
	State feed.Snapshot
}

func New(title string, threshold float64) (*Renderer, error) {
	if title == "" {
		title = DefaultTitle
	}

	r := &Renderer{
		printer:   message.NewPrinter(language.English),
		title:     title,
		threshold: threshold,
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"price": r.FormatPrice,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.templates = tmpl

	return r, nil
}

// Page writes the HTML shell that mounts a feed from the browser.
func (r *Renderer) Page(w io.Writer) error {
	return r.templates.ExecuteTemplate(w, "page", pageView{Title: r.title, Threshold: r.threshold})
}

// Feed writes the rendered view of one feed session.
func (r *Renderer) Feed(w io.Writer, id string, state feed.Snapshot) error {
	return r.templates.ExecuteTemplate(w, "feed", feedView{ID: id, Title: r.title, State: state})
}

// FormatPrice formats an amount with two decimals and English digit grouping.
func (r *Renderer) FormatPrice(amount float64) string {
	return r.printer.Sprintf("%.2f", amount)
}

func (r *Renderer) Title() string {
	return r.title
}

func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
