package meme

import (
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/kryuchenko/kartoshka-bot/model"
	"github.com/kryuchenko/kartoshka-bot/utils"
)

// chooseVisibilityHandler remembers the user's attribution choice and asks
// for the content. The choice lives in the intake cache until the next
// message from that user arrives or the entry expires.
func chooseVisibilityHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	parts := strings.SplitN(i.MessageComponentData().CustomID, ":", 2)
	if len(parts) != 2 {
		return
	}

	visibility := model.Attributed
	reply := "Буду публиковать от вашего имени. Пришлите мем следующим сообщением."
	if parts[1] == string(model.Anonymous) {
		visibility = model.Anonymous
		reply = "Буду публиковать анонимно (от «Картошки»). Пришлите мем следующим сообщением."
	}

	userID := interactionUserID(i)
	if userID == "" {
		return
	}

	utils.AddIntakeSession(model.IntakeSession{UserID: userID, Visibility: visibility})
	respondEphemeral(s, i, reply)
}

// MessageCreate consumes the content message of a user with a pending
// visibility choice and turns it into a submission.
func MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	session, ok := utils.IntakeSessionByUser(m.Author.ID)
	if !ok {
		return
	}

	payload, ok := payloadFromMessage(m.Message)
	if !ok {
		return
	}
	utils.RemoveIntakeSessionsForUser(m.Author.ID)

	sub, err := service.Submit(session.Visibility, payload, m.Author.ID)
	if err != nil {
		log.Printf("Failed to register submission from user %s: %v", m.Author.ID, err)
		s.ChannelMessageSendReply(m.ChannelID, "Не удалось принять мем, попробуйте ещё раз.", m.Reference())
		return
	}

	sendToReviewChannel(s, sub)

	status := fmt.Sprintf("Ваш мем отправлен на модерацию.\nГолосование: %s", sub.Votes.Summary())
	if _, err := s.ChannelMessageSendReply(m.ChannelID, status, m.Reference()); err != nil {
		log.Printf("Failed to acknowledge submission %d: %v", sub.ID, err)
	}
}

// payloadFromMessage maps a Discord message onto a payload variant. The
// first attachment wins; its content type picks the kind.
func payloadFromMessage(m *discordgo.Message) (model.Payload, bool) {
	if len(m.Attachments) > 0 {
		att := m.Attachments[0]
		kind := kindForContentType(att.ContentType)
		if kind == "" {
			return model.Payload{}, false
		}
		return model.Payload{Kind: kind, FileURL: att.URL, Caption: m.Content}, true
	}

	if strings.TrimSpace(m.Content) == "" {
		return model.Payload{}, false
	}
	return model.Payload{Kind: model.KindText, Text: m.Content}, true
}

func kindForContentType(contentType string) model.PayloadKind {
	switch {
	case strings.HasPrefix(contentType, "image/gif"):
		return model.KindAnimation
	case strings.HasPrefix(contentType, "image/"):
		return model.KindPhoto
	case strings.HasPrefix(contentType, "video/"):
		return model.KindVideo
	case strings.HasPrefix(contentType, "audio/"):
		return model.KindVoice
	default:
		return ""
	}
}

// interactionUserID works for both guild and DM interactions.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
