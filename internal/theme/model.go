package theme

import (
	"fmt"
	"regexp"
	"strings"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Palette is a user's colour scheme, applied by the frontend as CSS custom
// properties.
type Palette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Text       string `json:"text"`
}

var DefaultPalette = Palette{
	Primary:    "#6C5CE7",
	Secondary:  "#FD79A8",
	Background: "#FFFFFF",
	Surface:    "#F5F6FA",
	Text:       "#2D3436",
}

type variable struct {
	name  string
	value string
}

func (p Palette) variables() []variable {
	return []variable{
		{"--color-primary", p.Primary},
		{"--color-secondary", p.Secondary},
		{"--color-background", p.Background},
		{"--color-surface", p.Surface},
		{"--color-text", p.Text},
	}
}

// Validate checks every colour and returns the palette with colours
// upper-cased.
func (p Palette) Validate() (Palette, error) {
	fields := []*string{&p.Primary, &p.Secondary, &p.Background, &p.Surface, &p.Text}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
		if !hexColor.MatchString(*f) {
			return Palette{}, fmt.Errorf("%w: %q", ErrInvalidColor, *f)
		}
		*f = strings.ToUpper(*f)
	}
	return p, nil
}

// CSSVariables maps the palette to --color-* custom properties.
func (p Palette) CSSVariables() map[string]string {
	vars := p.variables()
	out := make(map[string]string, len(vars))
	for _, v := range vars {
		out[v.name] = v.value
	}
	return out
}

// CSS renders the palette as a :root block, one property per line, in a
// fixed order.
func (p Palette) CSS() string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, v := range p.variables() {
		fmt.Fprintf(&b, "  %s: %s;\n", v.name, v.value)
	}
	b.WriteString("}\n")
	return b.String()
}
