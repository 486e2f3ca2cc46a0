// Package assets bundles the single page map client.
package assets

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
)

//go:embed index.html.tpl style.css script.js favicon.svg
var files embed.FS

// PageData is injected into the index template.
type PageData struct {
	Title string
	CSS   string
	JS    string
	SVG   string
}

// Bundle is the minified client.
type Bundle struct {
	Index   []byte
	Favicon []byte
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)
	return m
}

// Build renders the index page with inlined, minified CSS, JS and logo.
func Build(title string) (*Bundle, error) {
	m := newMinifier()

	cssMin, err := minifyFile(m, "text/css", "style.css")
	if err != nil {
		return nil, err
	}
	jsMin, err := minifyFile(m, "text/javascript", "script.js")
	if err != nil {
		return nil, err
	}
	svgMin, err := minifyFile(m, "image/svg+xml", "favicon.svg")
	if err != nil {
		return nil, err
	}

	htmlRaw, err := files.ReadFile("index.html.tpl")
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}

	tmpl, err := template.New("index").Parse(string(htmlRaw))
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, PageData{
		Title: title,
		CSS:   cssMin,
		JS:    jsMin,
		SVG:   svgMin,
	})
	if err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	finalHTML, err := m.String("text/html", buf.String())
	if err != nil {
		return nil, fmt.Errorf("minify HTML: %w", err)
	}

	return &Bundle{
		Index:   []byte(finalHTML),
		Favicon: []byte(svgMin),
	}, nil
}

func minifyFile(m *minify.M, mediatype, name string) (string, error) {
	raw, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}

	out, err := m.String(mediatype, string(raw))
	if err != nil {
		return "", fmt.Errorf("minify %s: %w", name, err)
	}

	return out, nil
}
