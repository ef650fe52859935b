package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type CardType string

const (
	TypeIdentity  CardType = "identity"
	TypeAgenda    CardType = "agenda"
	TypeAsset     CardType = "asset"
	TypeICE       CardType = "ice"
	TypeUpgrade   CardType = "upgrade"
	TypeOperation CardType = "operation"
	TypeEvent     CardType = "event"
	TypeHardware  CardType = "hardware"
	TypeResource  CardType = "resource"
	TypeProgram   CardType = "program"
)

// IsRezzable reports whether the card's cost is paid on rez rather than on play or install.
func (t CardType) IsRezzable() bool {
	return t == TypeAsset || t == TypeICE || t == TypeUpgrade
}

type Faction string

const (
	FactionWeyland       Faction = "weyland-consortium"
	FactionNBN           Faction = "nbn"
	FactionJinteki       Faction = "jinteki"
	FactionHaasBioroid   Faction = "haas-bioroid"
	FactionNeutralCorp   Faction = "neutral-corp"
	FactionAnarch        Faction = "anarch"
	FactionCriminal      Faction = "criminal"
	FactionShaper        Faction = "shaper"
	FactionAdam          Faction = "adam"
	FactionSunnyLebeau   Faction = "sunny-lebeau"
	FactionApex          Faction = "apex"
	FactionNeutralRunner Faction = "neutral-runner"
)

// OptionalInt distinguishes a field that is absent from the feed, present but
// null, and present with a value.
type OptionalInt struct {
	Set   bool
	Valid bool
	Value int
}

func Int(v int) OptionalInt { return OptionalInt{Set: true, Valid: true, Value: v} }

func Null() OptionalInt { return OptionalInt{Set: true} }

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Valid = false
		o.Value = 0
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(o.Value)), nil
}

// Stats holds the per-type numeric fields of a card. Exactly one of the
// concrete types below backs it, selected by the card's type.
type Stats interface {
	isStats()
}

type IdentityStats struct {
	BaseLink        OptionalInt `json:"base_link"`
	MinimumDeckSize OptionalInt `json:"minimum_deck_size"`
	InfluenceLimit  OptionalInt `json:"influence_limit"`
}

type AgendaStats struct {
	AdvancementCost OptionalInt `json:"advancement_cost"`
	AgendaPoints    OptionalInt `json:"agenda_points"`
}

// InstallStats covers assets, ICE and upgrades: cards with a rez cost.
type InstallStats struct {
	RezCost   OptionalInt `json:"cost"`
	Strength  OptionalInt `json:"strength"`
	TrashCost OptionalInt `json:"trash_cost"`
}

// PlayStats covers every other card type: operations, events, hardware, resources and programs.
type PlayStats struct {
	Cost       OptionalInt `json:"cost"`
	MemoryCost OptionalInt `json:"memory_cost"`
	Strength   OptionalInt `json:"strength"`
	TrashCost  OptionalInt `json:"trash_cost"`
}

func (IdentityStats) isStats() {}
func (AgendaStats) isStats()   {}
func (InstallStats) isStats()  {}
func (PlayStats) isStats()     {}

type Card struct {
	Code        string      `json:"code"`
	Title       string      `json:"title"`
	Type        CardType    `json:"type_code"`
	Faction     Faction     `json:"faction_code"`
	FactionCost OptionalInt `json:"faction_cost"`
	Unique      bool        `json:"uniqueness"`
	Text        string      `json:"text,omitempty"`
	Flavor      *string     `json:"flavor,omitempty"`
	Keywords    *string     `json:"keywords,omitempty"`
	PackCode    string      `json:"pack_code"`
	Position    int         `json:"position"`
	Stats       Stats       `json:"stats"`
}

type Pack struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	CycleCode string `json:"cycle_code"`
	Position  int    `json:"position"`
}

type Cycle struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Size    int    `json:"size"`
	Rotated bool   `json:"rotated"`
}

// BanList is the most recent entry of the ban-list feed.
type BanList struct {
	Code  string              `json:"code"`
	Name  string              `json:"name"`
	Cards map[string]struct{} `json:"-"`
}

func (b *BanList) Contains(code string) bool {
	if b == nil {
		return false
	}
	_, ok := b.Cards[code]
	return ok
}
