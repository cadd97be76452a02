package model

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ToDiscordEmbed renders the reminder for the occurrence starting at start.
func (e *Event) ToDiscordEmbed(start time.Time, when string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Timestamp:   start.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Type",
				Value:  e.EventType,
				Inline: true,
			},
			{
				Name:   "Starts",
				Value:  fmt.Sprintf("<t:%d:R>", start.Unix()),
				Inline: true,
			},
			{
				Name:  "Date",
				Value: when,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: e.UID,
		},
	}
	if e.IsRecurring {
		embed.Footer.Text = "recurring · " + e.UID
	}
	return embed
}
