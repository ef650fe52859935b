package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/jeeves/internal/models"
)

func newTestBuilder() *DocumentBuilder {
	return NewDocumentBuilder(NewRenderer(DefaultSymbols()), "", "")
}

func cardByCode(t *testing.T, snap *Snapshot, code string) *models.Card {
	t.Helper()
	card, ok := snap.CardByCode(code)
	require.True(t, ok, "card %s not in catalog", code)
	return card
}

func TestBuildCardICE(t *testing.T) {
	snap := loadTestCatalog(t).Snapshot()
	b := newTestBuilder()

	doc, err := b.BuildCard(snap, cardByCode(t, snap, "01103"))
	require.NoError(t, err)

	assert.Equal(t, "Ice Wall", doc.Title)
	assert.Equal(t, "https://netrunnerdb.com/en/card/01103", doc.URL)
	assert.Equal(t, "https://netrunnerdb.com/card_image/large/01103.jpg", doc.Thumbnail)
	assert.Equal(t, 0x11806a, doc.Color)
	assert.Equal(t, "**ICE: Barrier** (1"+rezGlyph+", 1 Strength) ●○○○○\n↳ End the run.", doc.Description)
	assert.Equal(t, "Weyland Consortium / Core Set #103 (Rotated)\n", doc.Footer)
}

func TestBuildCardPackShownForMultiPackCycles(t *testing.T) {
	snap := loadTestCatalog(t).Snapshot()

	doc, err := newTestBuilder().BuildCard(snap, cardByCode(t, snap, "02069"))
	require.NoError(t, err)

	assert.Equal(t, "◆ Scrubber", doc.Title)
	assert.Equal(t, "**Resource** (2"+creditGlyph+") ●○○○○\n", doc.Description)
	assert.Equal(t, "Criminal / What Lies Ahead / Genesis #69 (Rotated)\n", doc.Footer)
}

func TestBuildCardErrataAndBan(t *testing.T) {
	cards := testCards()
	cards[2].Text = "[subroutine] End the run.<errata>Updated FAQ 6.1."

	store := NewCatalogStore()
	snap, err := store.Load(cards, testCycles(), testPacks(), []models.BanList{
		{Code: "sbl", Name: "Standard Ban List 24.09", Cards: map[string]struct{}{"01103": {}}},
	})
	require.NoError(t, err)

	doc, err := newTestBuilder().BuildCard(snap, cardByCode(t, snap, "01103"))
	require.NoError(t, err)

	assert.NotContains(t, doc.Description, "Updated FAQ")
	assert.Equal(t, "Weyland Consortium / Core Set #103 (Rotated) - Updated FAQ 6.1.\nStandard Ban List 24.09 - Banned", doc.Footer)
}

func TestStatSummary(t *testing.T) {
	b := newTestBuilder()
	link := b.renderer.Symbol(SymbolLink)
	agenda := b.renderer.Symbol(SymbolAgenda)
	mu := b.renderer.Symbol(SymbolMU)
	trash := b.renderer.Symbol(SymbolTrash)

	tests := []struct {
		name  string
		card  models.Card
		want  string
		pips  string
		label string
	}{
		{
			name: "identity with unlimited influence",
			card: models.Card{Type: models.TypeIdentity, Faction: models.FactionShaper, FactionCost: models.Int(0),
				Stats: models.IdentityStats{BaseLink: models.Int(1), MinimumDeckSize: models.Int(45), InfluenceLimit: models.Null()}},
			want:  "1" + link + ", 45 / ∞",
			label: "Identity",
		},
		{
			name: "faction agenda hides influence",
			card: models.Card{Type: models.TypeAgenda, Faction: models.FactionHaasBioroid, FactionCost: models.Int(0),
				Stats: models.AgendaStats{AdvancementCost: models.Int(5), AgendaPoints: models.Int(3)}},
			want:  "5" + rezGlyph + ", 3" + agenda,
			label: "Agenda",
		},
		{
			name: "neutral agenda shows influence",
			card: models.Card{Type: models.TypeAgenda, Faction: models.FactionNeutralCorp, FactionCost: models.Int(0),
				Stats: models.AgendaStats{AdvancementCost: models.Int(3), AgendaPoints: models.Int(1)}},
			want:  "3" + rezGlyph + ", 1" + agenda,
			pips:  " ○○○○○",
			label: "Agenda",
		},
		{
			name: "asset uses rez cost",
			card: models.Card{Type: models.TypeAsset, Faction: models.FactionJinteki, FactionCost: models.Int(2),
				Stats: models.InstallStats{RezCost: models.Int(0), TrashCost: models.Int(3)}},
			want:  "0" + rezGlyph + ", 3" + trash,
			pips:  " ●●○○○",
			label: "Asset",
		},
		{
			name: "program with memory and strength",
			card: models.Card{Type: models.TypeProgram, Faction: models.FactionShaper, FactionCost: models.Int(5),
				Stats: models.PlayStats{Cost: models.Int(3), MemoryCost: models.Int(1), Strength: models.Int(2)}},
			want:  "3" + creditGlyph + ", 1" + mu + ", 2 Strength",
			pips:  " ●●●●●",
			label: "Program",
		},
		{
			name: "null cost is X",
			card: models.Card{Type: models.TypeEvent, Faction: models.FactionAnarch, FactionCost: models.Null(),
				Stats: models.PlayStats{Cost: models.Null()}},
			want:  "X" + creditGlyph,
			label: "Event",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.statSummary(&tt.card))
			assert.Equal(t, tt.pips, influencePips(&tt.card))
			assert.Equal(t, tt.label, typeLabel(tt.card.Type))
		})
	}
}

func TestFactionLabel(t *testing.T) {
	assert.Equal(t, "NBN", factionLabel(models.FactionNBN))
	assert.Equal(t, "Haas Bioroid", factionLabel(models.FactionHaasBioroid))
	assert.Equal(t, "Neutral Runner", factionLabel(models.FactionNeutralRunner))
	assert.Equal(t, "Sunny Lebeau", factionLabel(models.FactionSunnyLebeau))
}

func TestBuildImage(t *testing.T) {
	snap := loadTestCatalog(t).Snapshot()

	doc, err := newTestBuilder().BuildImage(cardByCode(t, snap, "01050"))
	require.NoError(t, err)

	assert.Equal(t, "Sure Gamble", doc.Title)
	assert.Equal(t, "https://netrunnerdb.com/card_image/large/01050.jpg", doc.Image)
	assert.Empty(t, doc.Description)
	assert.Equal(t, 0x0f9c9f, doc.Color)
}

func TestBuildFlavor(t *testing.T) {
	snap := loadTestCatalog(t).Snapshot()
	b := newTestBuilder()

	doc, err := b.BuildFlavor(cardByCode(t, snap, "02069"))
	require.NoError(t, err)
	assert.Equal(t, "*Bits and pieces.*", doc.Description)
	require.NotNil(t, doc.Author)
	assert.Equal(t, "◆ Scrubber", doc.Author.Name)
	assert.Equal(t, "https://netrunnerdb.com/card_image/small/02069.jpg", doc.Author.IconURL)

	doc, err = b.BuildFlavor(cardByCode(t, snap, "01050"))
	require.NoError(t, err)
	assert.Equal(t, "*No flavor text.*", doc.Description)
}

func TestBuildMalformed(t *testing.T) {
	snap := loadTestCatalog(t).Snapshot()
	b := newTestBuilder()

	t.Run("missing stats", func(t *testing.T) {
		card := *cardByCode(t, snap, "01050")
		card.Stats = nil

		_, err := b.BuildCard(snap, &card)
		var malformed *MalformedCardError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "stats", malformed.Field)
	})

	t.Run("unknown pack", func(t *testing.T) {
		card := *cardByCode(t, snap, "01050")
		card.PackCode = "nope"

		_, err := b.BuildCard(snap, &card)
		var malformed *MalformedCardError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "01050", malformed.Code)
	})

	t.Run("nil card", func(t *testing.T) {
		_, err := b.BuildImage(nil)
		assert.Error(t, err)
	})
}

func TestBuildDispatch(t *testing.T) {
	snap := loadTestCatalog(t).Snapshot()
	b := newTestBuilder()
	card := cardByCode(t, snap, "01050")

	doc, err := b.Build(models.QueryImage, snap, card)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Image)

	doc, err = b.Build(models.QueryFlavor, snap, card)
	require.NoError(t, err)
	assert.NotNil(t, doc.Author)

	doc, err = b.Build(models.QueryCard, snap, card)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Footer)
}
