// Package render turns notification templates into email bodies.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

var ErrTemplateNotFound = errors.New("render: template not found")

//go:embed templates/*.html templates/*.txt
var files embed.FS

// Output is a rendered notification.
type Output struct {
	HTML string
	Text string
}

// Renderer renders embedded templates by id. Every id has a .html and a
// .txt variant.
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
	base map[string]any
}

// New parses the embedded templates. base is merged under the data of
// every render so templates can reference company details.
func New(base map[string]any) (*Renderer, error) {
	html, err := htmltemplate.New("").Option("missingkey=zero").ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("render: parse html: %w", err)
	}

	text, err := texttemplate.New("").Option("missingkey=zero").ParseFS(files, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("render: parse text: %w", err)
	}

	return &Renderer{html: html, text: text, base: base}, nil
}

func (r *Renderer) Render(templateID string, data map[string]any) (Output, error) {
	html := r.html.Lookup(templateID + ".html")
	text := r.text.Lookup(templateID + ".txt")
	if html == nil || text == nil {
		return Output{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}

	merged := make(map[string]any, len(r.base)+len(data))
	for k, v := range r.base {
		merged[k] = v
	}
	for k, v := range data {
		merged[k] = v
	}

	var hb, tb bytes.Buffer
	if err := html.Execute(&hb, merged); err != nil {
		return Output{}, fmt.Errorf("render: execute %s.html: %w", templateID, err)
	}
	if err := text.Execute(&tb, merged); err != nil {
		return Output{}, fmt.Errorf("render: execute %s.txt: %w", templateID, err)
	}

	return Output{HTML: hb.String(), Text: tb.String()}, nil
}
