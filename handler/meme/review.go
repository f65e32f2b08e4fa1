package meme

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/kryuchenko/kartoshka-bot/config"
	"github.com/kryuchenko/kartoshka-bot/model"
	"github.com/kryuchenko/kartoshka-bot/moderation"
	"github.com/kryuchenko/kartoshka-bot/utils"
	"github.com/kryuchenko/kartoshka-bot/vote"
)

const voteStatusTitle = "Текущее голосование"

// sendToReviewChannel posts the submission with vote buttons to the review
// channel.
func sendToReviewChannel(s *discordgo.Session, sub *model.Submission) {
	embeds, components := buildReviewComponents(sub)
	_, err := s.ChannelMessageSendComplex(config.Cfg.Channels.ReviewChannelID, &discordgo.MessageSend{
		Content:    fmt.Sprintf("Новый мем №%d на модерации", sub.ID),
		Embeds:     embeds,
		Components: components,
	})
	if err != nil {
		log.Printf("Failed to post submission %d to the review channel: %v", sub.ID, err)
	}
}

// buildReviewComponents builds the review embed plus the three vote buttons.
func buildReviewComponents(sub *model.Submission) ([]*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	from := "Картошка (анонимно)"
	if sub.Visibility == model.Attributed {
		from = fmt.Sprintf("<@%s>", sub.AuthorID)
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Мем №%d", sub.ID),
		Description: fmt.Sprintf("**От:** %s\n**Тип:** %s\n\n%s",
			from, sub.Payload.Kind, sub.Payload.DisplayText()),
		Color: 0x0099ff,
	}
	switch sub.Payload.Kind {
	case model.KindPhoto, model.KindAnimation:
		embed.Image = &discordgo.MessageEmbedImage{URL: sub.Payload.FileURL}
	default:
		if sub.Payload.IsMedia() {
			embed.Description += "\n" + sub.Payload.FileURL
		}
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Одобрить",
					Style:    discordgo.SuccessButton,
					CustomID: fmt.Sprintf("vote:approve:%d", sub.ID),
					Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
				},
				discordgo.Button{
					Label:    "Срочно",
					Style:    discordgo.PrimaryButton,
					CustomID: fmt.Sprintf("vote:urgent:%d", sub.ID),
					Emoji:    &discordgo.ComponentEmoji{Name: "⚡"},
				},
				discordgo.Button{
					Label:    "Отклонить",
					Style:    discordgo.DangerButton,
					CustomID: fmt.Sprintf("vote:reject:%d", sub.ID),
					Emoji:    &discordgo.ComponentEmoji{Name: "❌"},
				},
			},
		},
	}

	return []*discordgo.MessageEmbed{embed}, components
}

// voteButtonHandler records a reviewer's vote and keeps the review message
// in sync with the tally.
func voteButtonHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUserID(i)
	var roles []string
	if i.Member != nil {
		roles = i.Member.Roles
	}
	if !utils.IsReviewer(userID, roles) {
		respondEphemeral(s, i, "Голосовать могут только модераторы.")
		return
	}

	parts := strings.Split(i.MessageComponentData().CustomID, ":")
	if len(parts) != 3 {
		return
	}
	submissionID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		log.Printf("Malformed vote custom id %q: %v", i.MessageComponentData().CustomID, err)
		return
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		log.Printf("Failed to acknowledge vote interaction: %v", err)
		return
	}

	res, err := service.Vote(submissionID, userID, vote.Value(parts[1]))
	if errors.Is(err, moderation.ErrNotFound) {
		followupEphemeral(s, i, "Заявка не найдена или уже обработана.")
		return
	}
	if err != nil {
		log.Printf("Failed to record vote on submission %d: %v", submissionID, err)
		return
	}

	if res.Decision.Terminal() {
		finalizeReviewMessage(s, i, res)
		return
	}
	updateReviewMessage(s, i, res.Summary)
}

// updateReviewMessage replaces or appends the vote-status embed on the
// review message.
func updateReviewMessage(s *discordgo.Session, i *discordgo.InteractionCreate, summary string) {
	statusEmbed := &discordgo.MessageEmbed{
		Title:       voteStatusTitle,
		Description: summary,
		Color:       0xffcc00,
	}

	embeds := i.Message.Embeds
	replaced := false
	for idx, embed := range embeds {
		if embed.Title == voteStatusTitle {
			embeds[idx] = statusEmbed
			replaced = true
			break
		}
	}
	if !replaced {
		embeds = append(embeds, statusEmbed)
	}

	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &embeds,
	})
	if err != nil {
		log.Printf("Failed to update review message: %v", err)
	}
}

// finalizeReviewMessage shows the terminal decision and strips the vote
// buttons so late clicks have nothing to press.
func finalizeReviewMessage(s *discordgo.Session, i *discordgo.InteractionCreate, res *moderation.Result) {
	finalEmbed := &discordgo.MessageEmbed{
		Title:       "Итог голосования",
		Description: fmt.Sprintf("%s %s", resolutionText(res.Decision), res.Summary),
		Color:       colorForDecision(res.Decision),
	}

	embeds := append(i.Message.Embeds, finalEmbed)
	components := []discordgo.MessageComponent{}
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		log.Printf("Failed to finalize review message for submission %d: %v", res.Submission.ID, err)
	}
}

func resolutionText(d vote.Decision) string {
	switch d {
	case vote.ApprovedUrgent:
		return "⚡ Одобрен срочно."
	case vote.Rejected:
		return "❌ Отклонён."
	default:
		return "✅ Одобрен."
	}
}

func colorForDecision(d vote.Decision) int {
	switch d {
	case vote.Rejected:
		return 0xff0000
	default:
		return 0x00ff00
	}
}

// followupEphemeral sends an ephemeral followup after a deferred response.
func followupEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: text,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Printf("Failed to send followup message: %v", err)
	}
}
