package bot

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"github.com/kryuchenko/kartoshka-bot/command"
	"github.com/kryuchenko/kartoshka-bot/config"
	"github.com/kryuchenko/kartoshka-bot/db"
	"github.com/kryuchenko/kartoshka-bot/handler/meme"
	"github.com/kryuchenko/kartoshka-bot/moderation"
	"github.com/kryuchenko/kartoshka-bot/scheduler"
	"github.com/kryuchenko/kartoshka-bot/vote"
)

const dbSource = "./data/kartoshka.db"

// Start wires the stores, the scheduler and the moderation service to a
// Discord session and blocks until SIGINT or SIGTERM.
func Start() {
	if err := config.LoadConfig(); err != nil {
		log.Printf("Failed to load config: %v", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(dbSource), 0o755); err != nil {
		log.Printf("Failed to create data directory: %v", err)
		return
	}
	store, err := db.Open(dbSource)
	if err != nil {
		log.Printf("Failed to open database: %v", err)
		return
	}
	defer store.Close()

	dg, err := discordgo.New("Bot " + config.Cfg.Token)
	if err != nil {
		log.Printf("Failed to create Discord session: %v", err)
		return
	}

	pub := &channelPublisher{session: dg}
	notify := &directNotifier{session: dg}

	sched, err := scheduler.New(store, pub, notify, config.Cfg.Schedule)
	if err != nil {
		log.Printf("Failed to initialize the scheduler: %v", err)
		return
	}

	policy := vote.Policy{
		Quorum:         config.Cfg.Review.Quorum,
		VotesToApprove: config.Cfg.Review.VotesToApprove,
		VotesToReject:  config.Cfg.Review.VotesToReject,
	}
	service, err := moderation.NewService(store, sched, policy, pub, notify)
	if err != nil {
		log.Printf("Failed to initialize the moderation service: %v", err)
		return
	}

	meme.RegisterHandlers(service, store)
	registerEventHandlers(dg)

	if err = dg.Open(); err != nil {
		log.Printf("Failed to open the Discord connection: %v", err)
		return
	}
	defer dg.Close()

	registerCommands(dg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	log.Printf("Bot is now running. Press CTRL-C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}

// registerCommands creates the slash commands, per guild when a guild list
// is configured and globally otherwise.
func registerCommands(s *discordgo.Session) {
	guilds := config.Cfg.Commands.AllowGuilds
	if len(guilds) == 0 {
		guilds = []string{""}
	}
	for _, guildID := range guilds {
		for _, cmd := range command.AllCommands {
			if _, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd); err != nil {
				log.Fatalf("Cannot create '%v' command: %v", cmd.Name, err)
			}
		}
	}
}
