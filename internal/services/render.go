package services

import (
	"io"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Symbol names used by the document builder for header icons.
const (
	SymbolInterrupt       = "interrupt"
	SymbolAgenda          = "agenda"
	SymbolClick           = "click"
	SymbolCredit          = "credit"
	SymbolMU              = "mu"
	SymbolRecurringCredit = "recurring-credit"
	SymbolRez             = "rez"
	SymbolTrash           = "trash"
	SymbolSubroutine      = "subroutine"
	SymbolLink            = "link"
)

// DefaultSymbols maps [token] placeholders in card text to chat emoji.
func DefaultSymbols() map[string]string {
	return map[string]string{
		SymbolInterrupt:       "<:gninterrupt:854706842835615764>",
		SymbolAgenda:          "<:gnagenda:854706842814251008>",
		SymbolClick:           "<:gnclick:854706842869432330>",
		SymbolCredit:          "<:gncredit:854716895966265346>",
		SymbolMU:              "<:gnmu:854706842873757776>",
		SymbolRecurringCredit: "<:gnrecurring:854706842840203295>",
		SymbolRez:             "<:gnrez:854706842642677822>",
		SymbolTrash:           "<:gntrashability:854706842905870396>",
		SymbolSubroutine:      "↳",
		// the link emoji reads badly without a leading space
		SymbolLink:           " <:gnlink:854706842957512734>",
		"weyland-consortium": "<:nrweyland:744275191714152548>",
		"jinteki":            "<:nrjinteki:744275192074993734>",
		"haas-bioroid":       "<:nrhaasbioroid:744275192142102600>",
		"nbn":                "<:nrnbn:744275191856758891>",
		"anarch":             "<:nranarch:744275191433134135>",
		"shaper":             "<:nrshaper:744275192028856430>",
		"criminal":           "<:nrcriminal:744275191974330440>",
		"apex":               "<:nrapex:744275777842970716>",
		"adam":               "<:nradam:744275777926856755>",
		"sunny-lebeau":       "<:nrsunny:744275778073788536>",
	}
}

const errataTag = "<errata>"

var (
	errataMidLine = regexp.MustCompile(`([^\n])<errata>`)

	// same set chat clients treat as formatting
	markdownEscaper = strings.NewReplacer(
		`\`, `\\`,
		`*`, `\*`,
		`_`, `\_`,
		`~`, `\~`,
		`|`, `\|`,
		"`", "\\`",
	)
	quoteMarker = regexp.MustCompile(`(?m)^(>>>|>)(\s)`)
)

// Renderer turns raw card text into chat markdown.
type Renderer struct {
	symbols  map[string]string
	replacer *strings.Replacer
}

func NewRenderer(symbols map[string]string) *Renderer {
	if len(symbols) == 0 {
		symbols = DefaultSymbols()
	}

	// Longest token first, so no token shadows another that it prefixes.
	names := make([]string, 0, len(symbols))
	for name := range symbols {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, "["+name+"]", symbols[name])
	}

	return &Renderer{symbols: symbols, replacer: strings.NewReplacer(pairs...)}
}

// Symbol returns the glyph for name, or "" when the table has none.
func (r *Renderer) Symbol(name string) string {
	return r.symbols[name]
}

// Render converts raw card text into a markdown body plus the trailing errata
// line, if the text ends with one. Errata never appears in the body.
func (r *Renderer) Render(raw string) (body string, errata string) {
	text := r.replacer.Replace(raw)

	text = strings.ReplaceAll(text, "<ul>", "\n")
	text = strings.ReplaceAll(text, "<li>", "• ")
	text = strings.ReplaceAll(text, "</li>", "\n")

	text = escapeMarkdown(text)
	text = errataMidLine.ReplaceAllString(text, "$1\n"+errataTag)

	lines := splitLines(text)
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if strings.HasPrefix(line, errataTag) {
			if i == len(lines)-1 {
				errata = htmlToMarkdown(line)
			}
			continue
		}
		out = append(out, htmlToMarkdown(line))
	}

	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
		out = out[:len(out)-1]
	}

	return strings.Join(out, "\n"), errata
}

func escapeMarkdown(text string) string {
	text = markdownEscaper.Replace(text)
	return quoteMarker.ReplaceAllString(text, `\$1$2`)
}

// splitLines splits on \n, \r\n and \r, dropping one trailing empty line the
// way a line iterator would.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// htmlToMarkdown converts the inline tags found in card text. Bold and italic
// tags become markdown emphasis; any other tag is dropped and its text kept.
func htmlToMarkdown(line string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(line))

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				b.Write(z.Raw())
			}
			return strings.TrimSpace(collapseSpaces(b.String()))
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "strong", "b":
				b.WriteString("**")
			case "em", "i":
				b.WriteString("*")
			}
		}
	}
}

func collapseSpaces(s string) string {
	if !strings.Contains(s, "  ") && !strings.ContainsAny(s, "\t") {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}
