package command

import "github.com/bwmarrin/discordgo"

// CreatePanelCommand posts the submission panel into the current channel.
var CreatePanelCommand = &discordgo.ApplicationCommand{
	Name:        "kartoshka-panel",
	Description: "Создать панель для приёма мемов в этом канале",
}

// QueueStatusCommand shows reviewers the state of the publication queue.
var QueueStatusCommand = &discordgo.ApplicationCommand{
	Name:        "kartoshka-queue",
	Description: "Показать очередь публикации",
}

// AllCommands lists every slash command the bot registers on startup.
var AllCommands = []*discordgo.ApplicationCommand{
	CreatePanelCommand,
	QueueStatusCommand,
}
