// Package discord is the presentation layer: slash commands, activity
// handlers and announcements. It holds no game rules; every decision is
// delegated to the services it wraps.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"github.com/tutien/tutienbot/internal/catalog"
	"github.com/tutien/tutienbot/internal/config"
	"github.com/tutien/tutienbot/internal/crafting"
	"github.com/tutien/tutienbot/internal/cultivation"
	"github.com/tutien/tutienbot/internal/economy"
	"github.com/tutien/tutienbot/internal/event"
	"github.com/tutien/tutienbot/internal/user"
)

// Deps bundles the services the command handlers delegate to.
type Deps struct {
	Cultivation cultivation.Service
	Crafting    crafting.Service
	Economy     economy.Service
	Users       user.Service
	Catalog     *catalog.Catalog
	Bonus       *BonusResolver
}

// Bot represents the Discord bot
type Bot struct {
	Session  *discordgo.Session
	AppID    string
	Registry *CommandRegistry

	deps     Deps
	cfg      *config.Config
	activity *activityTracker
}

// New creates a new Discord bot
func New(cfg *config.Config, deps Deps) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates

	b := &Bot{
		Session:  s,
		Registry: NewCommandRegistry(),
		deps:     deps,
		cfg:      cfg,
	}
	b.activity = newActivityTracker(deps.Cultivation, deps.Bonus)
	b.registerAll()
	return b, nil
}

// registerAll wires up every slash command.
func (b *Bot) registerAll() {
	b.Registry.Register(PingCommand())
	b.Registry.Register(StatusCommand())
	b.Registry.Register(BreakthroughCommand())
	b.Registry.Register(FarmCommand())
	b.Registry.Register(CraftCommand())
	b.Registry.Register(FuseCommand())
	b.Registry.Register(InventoryCommand())
	b.Registry.Register(ShopCommand())
	b.Registry.Register(BuyCommand())
	b.Registry.Register(TopCommand())
}

// SubscribeAnnouncements hooks the eligibility and breakthrough events to
// the announcement channel. Call before the bus starts receiving traffic.
func (b *Bot) SubscribeAnnouncements(bus event.Bus) {
	if b.cfg.AnnounceChannel == "" {
		slog.Info("No announcement channel configured, skipping announcements")
		return
	}
	n := &notifier{session: b.Session, channelID: b.cfg.AnnounceChannel}
	bus.Subscribe(event.BreakthroughEligible, n.onEligible)
	bus.Subscribe(event.BreakthroughSucceeded, n.onBreakthrough)
}

// Start opens the gateway connection and registers handlers.
func (b *Bot) Start() error {
	b.Session.AddHandler(b.ready)
	b.Session.AddHandler(b.interactionCreate)
	b.Session.AddHandler(b.activity.onMessageCreate)
	b.Session.AddHandler(b.activity.onVoiceStateUpdate)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	b.AppID = b.Session.State.User.ID

	if err := b.RegisterCommands(false); err != nil {
		return fmt.Errorf("error registering commands: %w", err)
	}

	b.activity.start()

	slog.Info("Discord bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop flushes pending voice credit and closes the session.
func (b *Bot) Stop() {
	b.activity.stop()
	b.Session.Close()
}

// Run runs the bot until a signal is received or the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Start(); err != nil {
		return err
	}
	defer b.Stop()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	select {
	case <-sc:
	case <-ctx.Done():
	}
	return nil
}

func (b *Bot) ready(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("Bot is ready", "user", s.State.User.Username)
}

func (b *Bot) interactionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	b.Registry.Handle(s, i, &b.deps)
}
