package effects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ivlev/price2video/internal/composition"
	"github.com/ivlev/price2video/internal/model"
	"github.com/ivlev/price2video/internal/renderer"
)

// Theme is the look shared by all sections.
type Theme struct {
	FontFile   string `yaml:"font_file"`
	Background string `yaml:"background"`
	TextColor  string `yaml:"text_color"`
	MutedColor string `yaml:"muted_color"`
	UpColor    string `yaml:"up_color"`
	DownColor  string `yaml:"down_color"`
	TitleSize  int    `yaml:"title_size"`
	RowSize    int    `yaml:"row_size"`
	Margin     int    `yaml:"margin"`
}

var DefaultTheme = Theme{
	Background: "0x101820",
	TextColor:  "white",
	MutedColor: "0xA0A8B0",
	UpColor:    "0xE5484D",
	DownColor:  "0x30A46C",
	TitleSize:  96,
	RowSize:    44,
	Margin:     60,
}

// Layer is one block of text drawn while its section is on screen.
// Text may span several lines; X is an ffmpeg expression.
type Layer struct {
	Key         string
	Text        string
	X           string
	Y           int
	FontSize    int
	Color       string
	LineSpacing int
}

type SectionParams struct {
	Section     model.Section
	Composition *composition.Composition
	Theme       Theme
	Motion      renderer.Motion
}

// Effect lays out the text of one kind of section.
type Effect interface {
	Layers(p SectionParams) []Layer
}

func ForSection(kind model.SectionKind) Effect {
	switch kind {
	case model.SectionTitle:
		return &TitleEffect{}
	case model.SectionPage:
		return &PageEffect{}
	default:
		return &EndingEffect{}
	}
}

const centerX = "(w-text_w)/2"

type TitleEffect struct{}

func (e *TitleEffect) Layers(p SectionParams) []Layer {
	c, t := p.Composition, p.Theme
	maxRunes := charsPerLine(c.Width-2*t.Margin, t.TitleSize)
	lines := wrap(c.Title, maxRunes)
	spacing := t.TitleSize / 3

	blockH := len(lines)*t.TitleSize + (len(lines)-1)*spacing
	y := c.Height*2/5 - blockH/2

	return []Layer{
		{
			Key:         "title",
			Text:        strings.Join(lines, "\n"),
			X:           centerX,
			Y:           y,
			FontSize:    t.TitleSize,
			Color:       t.TextColor,
			LineSpacing: spacing,
		},
		{
			Key:      "title-count",
			Text:     fmt.Sprintf("%d items", len(c.Records)),
			X:        centerX,
			Y:        y + blockH + t.TitleSize,
			FontSize: t.RowSize,
			Color:    t.MutedColor,
		},
	}
}

type PageEffect struct{}

// column offsets as a share of the frame width
const (
	priceCol    = 0.46
	oneDayCol   = 0.66
	sevenDayCol = 0.83
)

func (e *PageEffect) Layers(p SectionParams) []Layer {
	c, t := p.Composition, p.Theme
	page, ok := c.Page(p.Section)
	if !ok {
		return nil
	}
	rows := composition.Rows(page)
	key := fmt.Sprintf("page%d", page.Index)
	spacing := t.RowSize * 3 / 5
	headerY := t.Margin * 2
	rowsY := headerY + t.RowSize*2
	nameRunes := charsPerLine(int(float64(c.Width)*priceCol)-t.Margin, t.RowSize)

	names := make([]string, len(rows))
	prices := make([]string, len(rows))
	oneDay := make([]string, len(rows))
	sevenDay := make([]string, len(rows))
	for i, r := range rows {
		names[i] = truncate(r.Name, nameRunes)
		prices[i] = r.Price
		if r.Unit != "" {
			prices[i] += " " + r.Unit
		}
		oneDay[i] = r.OneDay
		sevenDay[i] = r.SevenDay
	}

	layers := []Layer{
		{Key: key + "-head-name", Text: "Name", X: px(t.Margin), Y: headerY, FontSize: t.RowSize, Color: t.MutedColor},
		{Key: key + "-head-price", Text: "Price", X: col(c.Width, priceCol), Y: headerY, FontSize: t.RowSize, Color: t.MutedColor},
		{Key: key + "-head-1d", Text: "1D", X: col(c.Width, oneDayCol), Y: headerY, FontSize: t.RowSize, Color: t.MutedColor},
		{Key: key + "-head-7d", Text: "7D", X: col(c.Width, sevenDayCol), Y: headerY, FontSize: t.RowSize, Color: t.MutedColor},
		{Key: key + "-names", Text: strings.Join(names, "\n"), X: px(t.Margin), Y: rowsY, FontSize: t.RowSize, Color: t.TextColor, LineSpacing: spacing},
		{Key: key + "-prices", Text: strings.Join(prices, "\n"), X: col(c.Width, priceCol), Y: rowsY, FontSize: t.RowSize, Color: t.TextColor, LineSpacing: spacing},
	}
	layers = append(layers, changeLayers(key+"-1d", oneDay, col(c.Width, oneDayCol), rowsY, spacing, t)...)
	layers = append(layers, changeLayers(key+"-7d", sevenDay, col(c.Width, sevenDayCol), rowsY, spacing, t)...)

	if pages := len(c.Pages); pages > 1 {
		layers = append(layers, Layer{
			Key:      key + "-number",
			Text:     fmt.Sprintf("%d / %d", page.Index+1, pages),
			X:        centerX,
			Y:        c.Height - t.Margin*2,
			FontSize: t.RowSize,
			Color:    t.MutedColor,
		})
	}
	return layers
}

// changeLayers splits a change column by sign so each part gets its colour.
// Rows of other signs stay as blank lines to keep the rows aligned.
func changeLayers(key string, values []string, x string, y, spacing int, t Theme) []Layer {
	groups := []struct {
		suffix string
		sign   int
		color  string
	}{
		{"up", 1, t.UpColor},
		{"down", -1, t.DownColor},
		{"flat", 0, t.MutedColor},
	}

	var layers []Layer
	for _, g := range groups {
		lines := make([]string, len(values))
		found := false
		for i, v := range values {
			if sign(v) == g.sign {
				lines[i] = v
				found = true
			}
		}
		if !found {
			continue
		}
		layers = append(layers, Layer{
			Key:         key + "-" + g.suffix,
			Text:        strings.Join(lines, "\n"),
			X:           x,
			Y:           y,
			FontSize:    t.RowSize,
			Color:       g.color,
			LineSpacing: spacing,
		})
	}
	return layers
}

type EndingEffect struct{}

func (e *EndingEffect) Layers(p SectionParams) []Layer {
	c, t := p.Composition, p.Theme
	y := c.Height*2/5 - t.TitleSize/2
	return []Layer{
		{Key: "ending", Text: "Thanks for watching", X: centerX, Y: y, FontSize: t.TitleSize * 3 / 4, Color: t.TextColor},
		{Key: "ending-note", Text: "Prices are averages and change daily", X: centerX, Y: y + t.TitleSize*3/2, FontSize: t.RowSize, Color: t.MutedColor},
	}
}

func sign(change string) int {
	switch {
	case strings.HasPrefix(change, "+"):
		return 1
	case strings.HasPrefix(change, "-") && change != "--":
		return -1
	default:
		return 0
	}
}

func px(v int) string { return fmt.Sprintf("%d", v) }

func col(width int, share float64) string {
	return px(int(float64(width) * share))
}

// charsPerLine estimates how many glyphs fit into width at the font size.
func charsPerLine(width, fontSize int) int {
	if fontSize <= 0 {
		return 1
	}
	n := width * 10 / (fontSize * 6)
	if n < 1 {
		return 1
	}
	return n
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}

// wrap breaks text on spaces into lines of at most max runes. Words longer
// than a line are cut.
func wrap(text string, max int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, w := range words {
		for utf8.RuneCountInString(w) > max {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			r := []rune(w)
			lines = append(lines, string(r[:max]))
			w = string(r[max:])
		}
		switch {
		case current == "":
			current = w
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(w) <= max:
			current += " " + w
		default:
			lines = append(lines, current)
			current = w
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
