package effects

import (
	"fmt"
	"strings"

	"github.com/ivlev/price2video/internal/composition"
	"github.com/ivlev/price2video/internal/renderer"
)

// TextFiles stores layer text and returns the path drawtext reads it from.
type TextFiles func(key, text string) (string, error)

// BuildVideoFilter chains the drawtext filters of every section between the
// in and out pad labels, e.g. "[0:v]" and "[vout]".
func BuildVideoFilter(c *composition.Composition, theme Theme, motion renderer.Motion, in, out string, files TextFiles) (string, error) {
	var filters []string
	for _, s := range c.Sections {
		p := SectionParams{Section: s, Composition: c, Theme: theme, Motion: motion}
		for _, l := range ForSection(s.Kind).Layers(p) {
			if strings.TrimSpace(l.Text) == "" {
				continue
			}
			path, err := files(l.Key, l.Text)
			if err != nil {
				return "", fmt.Errorf("text for %s: %w", l.Key, err)
			}
			filters = append(filters, DrawText(l, path, p))
		}
	}
	if len(filters) == 0 {
		filters = append(filters, "null")
	}
	return in + strings.Join(filters, ",") + out, nil
}

// DrawText renders one layer, visible only inside its section and animated
// with the section's entry and exit motion. Scale applies to the font size.
func DrawText(l Layer, textPath string, p SectionParams) string {
	s := p.Section
	kfs := renderer.SectionKeyframes(s, p.Motion)
	alpha := renderer.Expr(kfs, s.StartFrame, renderer.Opacity)
	dy := renderer.Expr(kfs, s.StartFrame, renderer.TranslateY)
	scale := renderer.Expr(kfs, s.StartFrame, renderer.Scale)

	opts := make([]string, 0, 11)
	if p.Theme.FontFile != "" {
		opts = append(opts, "fontfile="+quote(p.Theme.FontFile))
	} else {
		opts = append(opts, "font=Sans")
	}
	opts = append(opts,
		"textfile="+quote(textPath),
		"expansion=none",
		"fontsize="+quote(fmt.Sprintf("%d*(%s)", l.FontSize, scale)),
		"fontcolor="+l.Color,
		fmt.Sprintf("line_spacing=%d", l.LineSpacing),
		"x="+quote(l.X),
		"y="+quote(fmt.Sprintf("%d+(%s)", l.Y, dy)),
		"alpha="+quote(alpha),
		"enable="+quote(fmt.Sprintf("between(n,%d,%d)", s.StartFrame, s.EndFrame()-1)),
	)
	return "drawtext=" + strings.Join(opts, ":")
}

// quote wraps a filter option value in single quotes.
func quote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
}
