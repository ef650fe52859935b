package models

// Document is a platform-neutral rich reply. The chat transport converts it
// into its own message format.
type Document struct {
	Title       string        `json:"title,omitempty"`
	URL         string        `json:"url,omitempty"`
	Description string        `json:"description,omitempty"`
	Color       int           `json:"color"`
	Footer      string        `json:"footer,omitempty"`
	Thumbnail   string        `json:"thumbnail,omitempty"`
	Image       string        `json:"image,omitempty"`
	Author      *DocumentLink `json:"author,omitempty"`
}

type DocumentLink struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type QueryKind string

const (
	QueryCard   QueryKind = "card"
	QueryImage  QueryKind = "image"
	QueryFlavor QueryKind = "flavor"
)

func ParseQueryKind(s string) (QueryKind, bool) {
	switch QueryKind(s) {
	case QueryCard, QueryImage, QueryFlavor:
		return QueryKind(s), true
	case "":
		return QueryCard, true
	}
	return "", false
}
