package services

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/codyseavey/jeeves/internal/models"
)

const (
	defaultCardURLBase  = "https://netrunnerdb.com/en/card"
	defaultImageURLBase = "https://netrunnerdb.com/card_image"

	uniqueGlyph     = "◆ "
	influenceFilled = "●"
	influenceEmpty  = "○"
	influenceMax    = 5
	unlimited       = "∞"
	noFlavorText    = "*No flavor text.*"
)

var factionColors = map[models.Faction]int{
	models.FactionWeyland:       0x11806a,
	models.FactionNBN:           0xf1c40f,
	models.FactionJinteki:       0x992d22,
	models.FactionHaasBioroid:   0x9b59b6,
	models.FactionAnarch:        0xa84300,
	models.FactionCriminal:      0x3498db,
	models.FactionShaper:        0x2ecc71,
	models.FactionAdam:          0xd2b48c,
	models.FactionSunnyLebeau:   0x424242,
	models.FactionApex:          0x1f0000,
	models.FactionNeutralCorp:   0x797d7f,
	models.FactionNeutralRunner: 0x0f9c9f,
}

// FactionColor returns the sidebar color for f, 0 for unknown factions.
func FactionColor(f models.Faction) int {
	return factionColors[f]
}

// A Caser keeps state between calls, so each use gets its own.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// DocumentBuilder assembles the three reply variants for a resolved card.
type DocumentBuilder struct {
	renderer     *Renderer
	cardURLBase  string
	imageURLBase string
}

func NewDocumentBuilder(renderer *Renderer, cardURLBase, imageURLBase string) *DocumentBuilder {
	if cardURLBase == "" {
		cardURLBase = defaultCardURLBase
	}
	if imageURLBase == "" {
		imageURLBase = defaultImageURLBase
	}
	return &DocumentBuilder{
		renderer:     renderer,
		cardURLBase:  strings.TrimRight(cardURLBase, "/"),
		imageURLBase: strings.TrimRight(imageURLBase, "/"),
	}
}

// Build dispatches on the query kind.
func (b *DocumentBuilder) Build(kind models.QueryKind, snap *Snapshot, card *models.Card) (models.Document, error) {
	switch kind {
	case models.QueryImage:
		return b.BuildImage(card)
	case models.QueryFlavor:
		return b.BuildFlavor(card)
	default:
		return b.BuildCard(snap, card)
	}
}

// BuildCard produces the full-detail document: header, rendered text and a
// footer with faction, pack, cycle, rotation, errata and ban status.
func (b *DocumentBuilder) BuildCard(snap *Snapshot, card *models.Card) (models.Document, error) {
	if err := checkRequired(card); err != nil {
		return models.Document{}, err
	}

	pack, ok := snap.PackOf(card)
	if !ok {
		return models.Document{}, &MalformedCardError{Code: card.Code, Field: "pack " + strconv.Quote(card.PackCode)}
	}
	cycle, ok := snap.CycleOf(pack)
	if !ok {
		return models.Document{}, &MalformedCardError{Code: card.Code, Field: "cycle " + strconv.Quote(pack.CycleCode)}
	}

	body, errata := b.renderer.Render(card.Text)

	return models.Document{
		Title:       cardTitle(card),
		URL:         b.cardURL(card),
		Description: b.headerLine(card) + "\n" + body,
		Color:       FactionColor(card.Faction),
		Footer:      footer(snap, card, pack, cycle, errata),
		Thumbnail:   b.imageURL(card, "large"),
	}, nil
}

func (b *DocumentBuilder) BuildImage(card *models.Card) (models.Document, error) {
	if err := checkRequired(card); err != nil {
		return models.Document{}, err
	}
	return models.Document{
		Title: cardTitle(card),
		URL:   b.cardURL(card),
		Color: FactionColor(card.Faction),
		Image: b.imageURL(card, "large"),
	}, nil
}

func (b *DocumentBuilder) BuildFlavor(card *models.Card) (models.Document, error) {
	if err := checkRequired(card); err != nil {
		return models.Document{}, err
	}

	flavor := noFlavorText
	if card.Flavor != nil {
		text, _ := b.renderer.Render(*card.Flavor)
		flavor = "*" + text + "*"
	}

	return models.Document{
		Description: flavor,
		Color:       FactionColor(card.Faction),
		Author: &models.DocumentLink{
			Name:    cardTitle(card),
			URL:     b.cardURL(card),
			IconURL: b.imageURL(card, "small"),
		},
	}, nil
}

func checkRequired(card *models.Card) error {
	switch {
	case card == nil:
		return &MalformedCardError{Field: "card"}
	case card.Code == "":
		return &MalformedCardError{Code: card.Title, Field: "code"}
	case card.Title == "":
		return &MalformedCardError{Code: card.Code, Field: "title"}
	case card.Type == "":
		return &MalformedCardError{Code: card.Code, Field: "type_code"}
	case card.Faction == "":
		return &MalformedCardError{Code: card.Code, Field: "faction_code"}
	case card.Stats == nil:
		return &MalformedCardError{Code: card.Code, Field: "stats"}
	}
	return nil
}

func cardTitle(card *models.Card) string {
	if card.Unique {
		return uniqueGlyph + card.Title
	}
	return card.Title
}

func (b *DocumentBuilder) cardURL(card *models.Card) string {
	return b.cardURLBase + "/" + card.Code
}

func (b *DocumentBuilder) imageURL(card *models.Card, size string) string {
	return fmt.Sprintf("%s/%s/%s.jpg", b.imageURLBase, size, card.Code)
}

// headerLine renders e.g. "**ICE: Barrier** (4<rez>, 5 Strength) ●●○○○".
func (b *DocumentBuilder) headerLine(card *models.Card) string {
	keywords := ""
	if card.Keywords != nil {
		keywords = ": " + *card.Keywords
	}
	return fmt.Sprintf("**%s%s** (%s)%s", typeLabel(card.Type), keywords, b.statSummary(card), influencePips(card))
}

func typeLabel(t models.CardType) string {
	if t == models.TypeICE {
		return "ICE"
	}
	return titleCase(string(t))
}

// statSummary lists, in fixed order and skipping absent fields: advancement
// cost, agenda points, cost, memory, strength, trash cost, base link and the
// deck size / influence pair.
func (b *DocumentBuilder) statSummary(card *models.Card) string {
	var parts []string
	add := func(v models.OptionalInt, suffix string) {
		if v.Set && v.Valid {
			parts = append(parts, strconv.Itoa(v.Value)+suffix)
		}
	}
	// cost is always shown for cards that have one; null means X
	addCost := func(v models.OptionalInt, icon string) {
		if v.Set && v.Valid {
			parts = append(parts, strconv.Itoa(v.Value)+icon)
			return
		}
		parts = append(parts, "X"+icon)
	}

	switch s := card.Stats.(type) {
	case models.IdentityStats:
		add(s.BaseLink, b.renderer.Symbol(SymbolLink))
		if s.MinimumDeckSize.Set && s.InfluenceLimit.Set {
			parts = append(parts, orUnlimited(s.MinimumDeckSize)+" / "+orUnlimited(s.InfluenceLimit))
		}
	case models.AgendaStats:
		add(s.AdvancementCost, b.renderer.Symbol(SymbolRez))
		add(s.AgendaPoints, b.renderer.Symbol(SymbolAgenda))
	case models.InstallStats:
		addCost(s.RezCost, b.renderer.Symbol(SymbolRez))
		add(s.Strength, " Strength")
		add(s.TrashCost, b.renderer.Symbol(SymbolTrash))
	case models.PlayStats:
		addCost(s.Cost, b.renderer.Symbol(SymbolCredit))
		add(s.MemoryCost, b.renderer.Symbol(SymbolMU))
		add(s.Strength, " Strength")
		add(s.TrashCost, b.renderer.Symbol(SymbolTrash))
	}

	return strings.Join(parts, ", ")
}

func orUnlimited(v models.OptionalInt) string {
	if !v.Valid || v.Value == 0 {
		return unlimited
	}
	return strconv.Itoa(v.Value)
}

// influencePips shows faction cost for everything but identities, and for
// agendas only when they are neutral.
func influencePips(card *models.Card) string {
	if !card.FactionCost.Valid || card.Type == models.TypeIdentity {
		return ""
	}
	if card.Type == models.TypeAgenda && card.Faction != models.FactionNeutralCorp {
		return ""
	}

	filled := max(card.FactionCost.Value, 0)
	empty := max(influenceMax-filled, 0)
	return " " + strings.Repeat(influenceFilled, filled) + strings.Repeat(influenceEmpty, empty)
}

func factionLabel(f models.Faction) string {
	name := strings.ReplaceAll(string(f), "-", " ")
	if f == models.FactionNBN {
		return strings.ToUpper(name)
	}
	return titleCase(name)
}

// footer renders "Faction [/ Pack ]/ Cycle #pos[ (Rotated)][ - errata]" and,
// on a second line, the ban list when the card is on it.
func footer(snap *Snapshot, card *models.Card, pack models.Pack, cycle models.Cycle, errata string) string {
	var line strings.Builder
	line.WriteString(factionLabel(card.Faction))
	line.WriteString(" ")
	if cycle.Size != 1 && pack.Name != "" {
		line.WriteString("/ " + pack.Name + " ")
	}
	fmt.Fprintf(&line, "/ %s #%d", cycle.Name, card.Position)
	if cycle.Rotated {
		line.WriteString(" (Rotated)")
	}
	if errata != "" {
		line.WriteString(" - " + errata)
	}

	banned := ""
	if snap.IsBanned(card.Code) {
		banned = snap.BanListName() + " - Banned"
	}

	return line.String() + "\n" + banned
}
