package bot

import (
	"github.com/bwmarrin/discordgo"

	"github.com/codyseavey/jeeves/internal/models"
)

// toEmbed maps a reply document onto a Discord embed. Empty parts are left
// nil so Discord does not render blank sections.
func toEmbed(doc models.Document) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Type:        discordgo.EmbedTypeRich,
		Title:       doc.Title,
		URL:         doc.URL,
		Description: doc.Description,
		Color:       doc.Color,
	}
	if doc.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: doc.Footer}
	}
	if doc.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: doc.Thumbnail}
	}
	if doc.Image != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: doc.Image}
	}
	if doc.Author != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name:    doc.Author.Name,
			URL:     doc.Author.URL,
			IconURL: doc.Author.IconURL,
		}
	}
	return embed
}
