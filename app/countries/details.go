package countries

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/joefazee/countrylookup/internal/formatter"
	"github.com/joefazee/countrylookup/models"
	"github.com/yuin/goldmark"
)

// Format selects how country details are rendered
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts json, markdown (or md) and html. Empty means json.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, true
	case "markdown", "md":
		return FormatMarkdown, true
	case "html":
		return FormatHTML, true
	default:
		return "", false
	}
}

// ContentType returns the HTTP content type for f
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/json; charset=utf-8"
	}
}

// Renderer turns country records into the details document: flag, names,
// capitals, currencies and calling code.
type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer() *Renderer {
	return &Renderer{md: goldmark.New()}
}

// Markdown renders one details section per country
func (r *Renderer) Markdown(countries []models.Country) string {
	var b strings.Builder
	for i, c := range countries {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		writeDetails(&b, ToCountryResponse(c))
	}
	return b.String()
}

// HTML renders the markdown document with goldmark. Raw HTML coming from the API
// is not passed through.
func (r *Renderer) HTML(countries []models.Country) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(r.Markdown(countries)), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeDetails(b *strings.Builder, c CountryResponse) {
	fmt.Fprintf(b, "# %s %s\n\n", c.Flag, escapeMarkdown(c.Name))
	fmt.Fprintf(b, "_%s_\n\n", escapeMarkdown(c.OfficialName))
	fmt.Fprintf(b, "- **Capital:** %s\n", escapeMarkdown(formatter.JoinOrPlaceholder(c.Capitals, ", ", models.Placeholder)))

	currencies := make([]string, 0, len(c.Currencies))
	for _, cur := range c.Currencies {
		currencies = append(currencies, fmt.Sprintf("%s (%s)", cur.Name, cur.Symbol))
	}
	fmt.Fprintf(b, "- **Currency:** %s\n", escapeMarkdown(formatter.JoinOrPlaceholder(currencies, ", ", models.Placeholder)))

	if c.CallingCode != "" {
		fmt.Fprintf(b, "- **Calling code:** %s\n", c.CallingCode)
	}
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
