package bot

import (
	"github.com/bwmarrin/discordgo"

	"github.com/kryuchenko/kartoshka-bot/handler"
	"github.com/kryuchenko/kartoshka-bot/handler/meme"
)

func registerEventHandlers(s *discordgo.Session) {
	s.AddHandler(handler.OnInteractionCreate)
	s.AddHandler(meme.MessageCreate)

	// Intake reads message content and attachments, votes run in guilds,
	// status updates go out as DMs.
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages | discordgo.IntentMessageContent
}
