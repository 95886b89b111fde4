package notify

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed templates
var templateFS embed.FS

// Notice kinds with a template pair under templates/.
var pages = []string{"contact", "claim", "test"}

func funcMap() map[string]any {
	return map[string]any{
		"upper": strings.ToUpper,
		"inc":   func(i int) int { return i + 1 },
		"typeName": func(t string) string {
			switch t {
			case "lost":
				return "Lost"
			case "found":
				return "Found"
			default:
				return t
			}
		},
	}
}

// templates holds the parsed HTML and plain-text body of every notice.
type templates struct {
	html map[string]*htmltemplate.Template
	text map[string]*texttemplate.Template
}

func loadTemplates() (*templates, error) {
	layout, err := templateFS.ReadFile("templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}
	partials, err := templateFS.ReadFile("templates/partials.txt")
	if err != nil {
		return nil, fmt.Errorf("reading text partials: %w", err)
	}

	ts := &templates{
		html: make(map[string]*htmltemplate.Template),
		text: make(map[string]*texttemplate.Template),
	}

	for _, page := range pages {
		htmlBytes, err := templateFS.ReadFile("templates/" + page + ".html")
		if err != nil {
			return nil, fmt.Errorf("reading template %s.html: %w", page, err)
		}
		h, err := htmltemplate.New(page).Funcs(funcMap()).Parse(string(layout))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		if h, err = h.Parse(string(htmlBytes)); err != nil {
			return nil, fmt.Errorf("parsing template %s.html: %w", page, err)
		}
		ts.html[page] = h

		textBytes, err := templateFS.ReadFile("templates/" + page + ".txt")
		if err != nil {
			return nil, fmt.Errorf("reading template %s.txt: %w", page, err)
		}
		t, err := texttemplate.New(page).Funcs(funcMap()).Parse(string(textBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s.txt: %w", page, err)
		}
		if t, err = t.Parse(string(partials)); err != nil {
			return nil, fmt.Errorf("parsing text partials for %s: %w", page, err)
		}
		ts.text[page] = t
	}

	return ts, nil
}

// render executes both bodies of a notice.
func (ts *templates) render(page string, data any) (text, html string, err error) {
	var tb, hb bytes.Buffer
	if err := ts.text[page].Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("rendering %s text: %w", page, err)
	}
	if err := ts.html[page].ExecuteTemplate(&hb, "layout", data); err != nil {
		return "", "", fmt.Errorf("rendering %s html: %w", page, err)
	}
	return strings.TrimSpace(tb.String()) + "\n", hb.String(), nil
}
