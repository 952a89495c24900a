package changelog

import (
	"bytes"
	"context"
	"embed"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/versioio/versio/internal/verr"
)

//go:embed templates/changelog.html.tmpl templates/changelog.json.tmpl
var builtinTemplates embed.FS

const (
	beginContentMarker = "### VERSIO BEGIN CONTENT ###"
	endContentMarker   = "### VERSIO END CONTENT ###"
)

// LoadTemplate resolves a template URL of the form "builtin:html",
// "builtin:json", "file:<path>", or "http(s)://...", mirroring the three
// loader kinds the original implementation supports.
func LoadTemplate(ctx context.Context, url string, basePath string) (string, error) {
	scheme, rest, ok := splitScheme(url)
	if !ok {
		return "", verr.New(verr.TemplateError, "template URL has no protocol: %q", url)
	}

	switch scheme {
	case "builtin":
		switch rest {
		case "html":
			data, err := builtinTemplates.ReadFile("templates/changelog.html.tmpl")
			if err != nil {
				return "", verr.Wrap(verr.TemplateError, err, "loading builtin:html")
			}
			return string(data), nil
		case "json":
			data, err := builtinTemplates.ReadFile("templates/changelog.json.tmpl")
			if err != nil {
				return "", verr.Wrap(verr.TemplateError, err, "loading builtin:json")
			}
			return string(data), nil
		default:
			return "", verr.New(verr.TemplateError, "unknown builtin template: %q", rest)
		}
	case "file":
		path := rest
		if basePath != "" && !filepath.IsAbs(path) {
			path = filepath.Join(basePath, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", verr.Wrap(verr.TemplateError, err, "reading template file %q", path)
		}
		return string(data), nil
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", verr.Wrap(verr.TemplateError, err, "building request for %q", url)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return "", verr.Wrap(verr.TemplateError, err, "fetching template %q", url)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return "", verr.New(verr.TemplateError, "unsuccessful request to %q: %d", url, resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", verr.Wrap(verr.TemplateError, err, "reading template response from %q", url)
		}
		return string(body), nil
	default:
		return "", verr.New(verr.TemplateError, "unrecognized template protocol: %q", scheme)
	}
}

func splitScheme(url string) (scheme, rest string, ok bool) {
	idx := strings.Index(url, ":")
	if idx < 0 {
		return "", "", false
	}
	return url[:idx], url[idx+1:], true
}

// ExtractOldContent pulls the region between the literal BEGIN/END
// CONTENT marker lines out of an existing changelog file at path,
// returning "" if the file does not exist or carries no markers.
// versio log renders to stdout rather than a changelog file (see
// DESIGN.md's Open Question #5), so this only runs in tests for now.
func ExtractOldContent(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", verr.Wrap(verr.Internal, err, "reading existing changelog %q", path)
	}

	lines := strings.Split(string(data), "\n")
	var out []string
	inContent := false
	for _, line := range lines {
		if !inContent {
			if strings.Contains(line, beginContentMarker) {
				inContent = true
			}
			continue
		}
		if strings.Contains(line, endContentMarker) {
			break
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n"), nil
}

// Renderer renders a TemplateData through a parsed text/template.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses templateSource under name (used in error messages).
func NewRenderer(name, templateSource string) (*Renderer, error) {
	t, err := template.New(name).Parse(templateSource)
	if err != nil {
		return nil, verr.Wrap(verr.TemplateError, err, "parsing changelog template %q", name)
	}
	return &Renderer{tmpl: t}, nil
}

// Render executes the template against data.
func (r *Renderer) Render(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", verr.Wrap(verr.TemplateError, err, "rendering changelog template")
	}
	return buf.String(), nil
}

// Splice wraps rendered content in the BEGIN/END CONTENT markers so a
// future run can re-extract it with ExtractOldContent.
func Splice(rendered string, now time.Time) string {
	var b strings.Builder
	b.WriteString(beginContentMarker)
	b.WriteString(" (")
	b.WriteString(now.Format("2006-01-02"))
	b.WriteString(")\n")
	b.WriteString(rendered)
	if !strings.HasSuffix(rendered, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(endContentMarker)
	b.WriteString("\n")
	return b.String()
}
