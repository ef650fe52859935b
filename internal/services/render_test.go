package services

import "testing"

const (
	creditGlyph = "<:gncredit:854716895966265346>"
	rezGlyph    = "<:gnrez:854706842642677822>"
)

func TestRender(t *testing.T) {
	r := NewRenderer(DefaultSymbols())

	tests := []struct {
		name       string
		raw        string
		wantBody   string
		wantErrata string
	}{
		{
			name:       "subroutine with trailing errata",
			raw:        "[subroutine] Do 1 net damage.<errata>Updated FAQ 6.1.",
			wantBody:   "↳ Do 1 net damage.",
			wantErrata: "Updated FAQ 6.1.",
		},
		{
			name:     "list tags",
			raw:      "Choose one:<ul><li>Gain 1[credit].</li><li>Draw 1 card.</li></ul>",
			wantBody: "Choose one:\n• Gain 1" + creditGlyph + ".\n• Draw 1 card.",
		},
		{
			name:     "bold and italic",
			raw:      "<strong>When you score this agenda,</strong> gain 2[credit]. <em>Limit 1 per deck.</em>",
			wantBody: "**When you score this agenda,** gain 2" + creditGlyph + ". *Limit 1 per deck.*",
		},
		{
			name:     "markdown escaped",
			raw:      "Name a card_type *now* | `later` ~ok~",
			wantBody: `Name a card\_type \*now\* \| ` + "\\`later\\`" + ` \~ok\~`,
		},
		{
			name:     "line leading quote marker",
			raw:      "> Access a card.\n>>> Then another.",
			wantBody: "\\> Access a card.\n\\>>> Then another.",
		},
		{
			name:       "errata only",
			raw:        "<errata>Only errata here.",
			wantErrata: "Only errata here.",
		},
		{
			name:     "errata not on the last line is dropped",
			raw:      "Line one.<errata>Old ruling.\nLine two.",
			wantBody: "Line one.\nLine two.",
		},
		{
			name:     "unknown tags dropped",
			raw:      "<trace>Trace 3</trace> If successful, <champion>do</champion> 1 meat damage.",
			wantBody: "Trace 3 If successful, do 1 meat damage.",
		},
		{
			name:     "trailing blank lines trimmed",
			raw:      "[rez] cost.\n\n\n",
			wantBody: rezGlyph + " cost.",
		},
		{
			name:     "crlf line endings",
			raw:      "First.\r\nSecond.",
			wantBody: "First.\nSecond.",
		},
		{
			name: "empty",
			raw:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, errata := r.Render(tt.raw)
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if errata != tt.wantErrata {
				t.Errorf("errata = %q, want %q", errata, tt.wantErrata)
			}
		})
	}
}

func TestRenderLongestTokenFirst(t *testing.T) {
	r := NewRenderer(map[string]string{
		"credit":           "C",
		"recurring-credit": "RC",
	})

	body, _ := r.Render("[recurring-credit] and [credit]")
	if body != "RC and C" {
		t.Errorf("body = %q, want %q", body, "RC and C")
	}
}

func TestRenderUnknownTokenKept(t *testing.T) {
	r := NewRenderer(DefaultSymbols())

	body, _ := r.Render("Pay [bogus].")
	if body != "Pay [bogus]." {
		t.Errorf("body = %q, want unknown token left alone", body)
	}
}

func TestSymbol(t *testing.T) {
	r := NewRenderer(nil)
	if got := r.Symbol(SymbolRez); got != rezGlyph {
		t.Errorf("Symbol(rez) = %q, want %q", got, rezGlyph)
	}
	if got := r.Symbol("missing"); got != "" {
		t.Errorf("Symbol(missing) = %q, want empty", got)
	}
}
