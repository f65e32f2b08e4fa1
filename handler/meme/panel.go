package meme

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/kryuchenko/kartoshka-bot/config"
	"github.com/kryuchenko/kartoshka-bot/utils"
)

func createPanelCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member == nil || !utils.IsReviewer(i.Member.User.ID, i.Member.Roles) {
		respondEphemeral(s, i, "У вас нет прав для этой команды.")
		return
	}

	panel := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title: fmt.Sprintf("Привет! Я %s.", config.Cfg.BotName),
				Description: "Предложите мем на публикацию.\n\n" +
					"Как вы хотите опубликовать мем?",
				Color: 0xD4A373,
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "👤 От своего имени",
						Style:    discordgo.PrimaryButton,
						CustomID: "choose_visibility:user",
					},
					discordgo.Button{
						Label:    "🥔 Анонимно (от «Картошки»)",
						Style:    discordgo.SecondaryButton,
						CustomID: "choose_visibility:potato",
					},
				},
			},
		},
	}

	if _, err := s.ChannelMessageSendComplex(i.ChannelID, panel); err != nil {
		log.Printf("Error sending submission panel: %v", err)
		respondEphemeral(s, i, "Не удалось создать панель.")
		return
	}
	respondEphemeral(s, i, "Панель создана.")
}

func queueStatusCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member == nil || !utils.IsReviewer(i.Member.User.ID, i.Member.Roles) {
		respondEphemeral(s, i, "У вас нет прав для этой команды.")
		return
	}

	entries, err := store.Entries()
	if err != nil {
		log.Printf("Failed to read publication queue: %v", err)
		respondEphemeral(s, i, "Не удалось прочитать очередь.")
		return
	}
	if len(entries) == 0 {
		respondEphemeral(s, i, "Очередь публикации пуста.")
		return
	}

	text := fmt.Sprintf("В очереди %d мемов:\n", len(entries))
	for _, entry := range entries {
		text += fmt.Sprintf("• №%d — %s UTC\n", entry.Submission.ID, entry.ScheduledAt.Format("02.01 15:04"))
	}
	respondEphemeral(s, i, text)
}

// respondEphemeral acknowledges an interaction with a message only the
// invoking user can see.
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending interaction response: %v", err)
	}
}
