package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/kryuchenko/kartoshka-bot/config"
	"github.com/kryuchenko/kartoshka-bot/model"
)

// channelPublisher posts publication-ready content to the publish channel.
type channelPublisher struct {
	session *discordgo.Session
}

func (p *channelPublisher) Publish(caption string, payload model.Payload) error {
	msg := &discordgo.MessageSend{Content: caption}
	if payload.IsMedia() {
		// Discord unfurls the CDN link into an inline preview, so the file
		// travels as part of the message body.
		msg.Content = caption + "\n" + payload.FileURL
	}

	_, err := p.session.ChannelMessageSendComplex(config.Cfg.Channels.PublishChannelID, msg)
	if err != nil {
		return fmt.Errorf("publish to channel %s: %w", config.Cfg.Channels.PublishChannelID, err)
	}
	return nil
}

// directNotifier delivers status updates over a DM channel.
type directNotifier struct {
	session *discordgo.Session
}

func (n *directNotifier) Notify(userID, text string) error {
	channel, err := n.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("create DM channel for user %s: %w", userID, err)
	}
	if _, err := n.session.ChannelMessageSend(channel.ID, text); err != nil {
		return fmt.Errorf("send DM to user %s: %w", userID, err)
	}
	return nil
}
