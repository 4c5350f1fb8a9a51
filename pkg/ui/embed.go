// Package ui provides the embedded web page for ytgrab.
//
// The page is server-rendered from a client view-model snapshot; it carries no
// script, so every action is a form post handled by the web server.
package ui

import (
	_ "embed"
	"html/template"
	"io"

	"github.com/iconidentify/ytgrab/internal/domain"
)

// IndexHTML is the raw page template.
//
//go:embed index.html
var IndexHTML string

var indexTemplate = template.Must(template.New("index").Parse(IndexHTML))

// Tab is one format tab on the page.
type Tab struct {
	Format domain.Format
	Label  string
	Active bool
}

// Group is a titled set of quality buttons.
type Group struct {
	Name    string
	Options []domain.QualityOption
}

// Page is the data the index template renders.
type Page struct {
	State domain.State
	Tabs  []Tab
	// Groups lists quality options for the active tab in display order.
	Groups []Group
	// Redirect, when set, makes the browser navigate there on load.
	Redirect template.URL
}

// NewPage builds the template data for a view-model snapshot.
func NewPage(s domain.State) Page {
	p := Page{State: s}
	for _, f := range []domain.Format{domain.FormatMP4, domain.FormatMP3} {
		p.Tabs = append(p.Tabs, Tab{Format: f, Label: f.Label(), Active: f == s.ActiveTab})
	}

	for _, opt := range s.Qualities() {
		if n := len(p.Groups); n == 0 || p.Groups[n-1].Name != opt.Group {
			p.Groups = append(p.Groups, Group{Name: opt.Group})
		}
		last := &p.Groups[len(p.Groups)-1]
		last.Options = append(last.Options, opt)
	}
	return p
}

// RenderIndex writes the page for p.
func RenderIndex(w io.Writer, p Page) error {
	return indexTemplate.Execute(w, p)
}
