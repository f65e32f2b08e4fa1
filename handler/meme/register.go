package meme

import (
	"github.com/kryuchenko/kartoshka-bot/command"
	"github.com/kryuchenko/kartoshka-bot/db"
	"github.com/kryuchenko/kartoshka-bot/handler"
	"github.com/kryuchenko/kartoshka-bot/moderation"
)

var (
	// service is the moderation core all handlers in this package talk to.
	service *moderation.Service
	// store is read directly only for the reviewer-facing queue status.
	store *db.Store
)

// RegisterHandlers wires the Discord-facing handlers to the moderation
// service.
func RegisterHandlers(svc *moderation.Service, st *db.Store) {
	service = svc
	store = st

	handler.AddCommandHandler(command.CreatePanelCommand.Name, createPanelCommandHandler)
	handler.AddCommandHandler(command.QueueStatusCommand.Name, queueStatusCommandHandler)

	// Intake flow: visibility choice first, then the content message.
	handler.AddComponentHandler("choose_visibility", chooseVisibilityHandler)

	// Review flow: one handler for the whole vote button family.
	handler.AddComponentHandler("vote", voteButtonHandler)
}
