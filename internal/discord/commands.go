package discord

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// CommandHandler handles a slash command
type CommandHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps)

// CommandRegistry holds the registered commands
type CommandRegistry struct {
	Commands map[string]*discordgo.ApplicationCommand
	Handlers map[string]CommandHandler
}

// NewCommandRegistry creates a new registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		Commands: make(map[string]*discordgo.ApplicationCommand),
		Handlers: make(map[string]CommandHandler),
	}
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(cmd *discordgo.ApplicationCommand, handler CommandHandler) {
	r.Commands[cmd.Name] = cmd
	r.Handlers[cmd.Name] = handler
}

// Handle processes an interaction
func (r *CommandRegistry) Handle(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	if h, ok := r.Handlers[i.ApplicationCommandData().Name]; ok {
		h(s, i, deps)
	}
}

// RegisterCommands syncs the registry with Discord. The bulk overwrite is
// skipped when nothing changed to avoid burning the rate limit on every
// restart.
func (b *Bot) RegisterCommands(forceUpdate bool) error {
	existing, err := b.Session.ApplicationCommands(b.AppID, b.cfg.DiscordGuildID)
	if err != nil {
		return fmt.Errorf("failed to fetch existing commands: %w", err)
	}

	desired := make([]*discordgo.ApplicationCommand, 0, len(b.Registry.Commands))
	for _, cmd := range b.Registry.Commands {
		desired = append(desired, cmd)
	}

	if !forceUpdate && commandsEqual(existing, desired) {
		slog.Info("Commands unchanged, skipping registration", "count", len(existing))
		return nil
	}

	if _, err := b.Session.ApplicationCommandBulkOverwrite(b.AppID, b.cfg.DiscordGuildID, desired); err != nil {
		return fmt.Errorf("failed to overwrite commands: %w", err)
	}
	slog.Info("Commands updated", "count", len(desired))
	return nil
}

// commandsEqual checks whether the registered set already matches.
func commandsEqual(existing, desired []*discordgo.ApplicationCommand) bool {
	if len(existing) != len(desired) {
		return false
	}
	byName := make(map[string]*discordgo.ApplicationCommand, len(existing))
	for _, cmd := range existing {
		byName[cmd.Name] = cmd
	}
	for _, want := range desired {
		have, ok := byName[want.Name]
		if !ok || have.Description != want.Description || len(have.Options) != len(want.Options) {
			return false
		}
		for idx := range want.Options {
			if have.Options[idx].Name != want.Options[idx].Name ||
				have.Options[idx].Type != want.Options[idx].Type ||
				have.Options[idx].Required != want.Options[idx].Required {
				return false
			}
		}
	}
	return true
}
