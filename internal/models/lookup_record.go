package models

import "time"

// LookupRecord is one resolved query kept in the lookup history.
type LookupRecord struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Kind       QueryKind `json:"kind" gorm:"not null;index"`
	Query      string    `json:"query"`
	Normalized string    `json:"normalized"`
	CardCode   string    `json:"card_code" gorm:"index"`
	Title      string    `json:"title"`
	Score      int       `json:"score"`
	Channel    string    `json:"channel,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}
