package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/tutien/tutienbot/internal/event"
)

// notifier posts progression announcements to the configured channel.
// Handler errors are returned so the bus can count them, but announcements
// are best-effort and never affect the originating operation.
type notifier struct {
	session   *discordgo.Session
	channelID string
}

func (n *notifier) onEligible(ctx context.Context, e event.Event) error {
	payload, ok := e.Payload.(event.EligiblePayloadV1)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", e.Type)
	}
	msg := fmt.Sprintf("✨ <@%s> đã tích lũy đủ tu vi tại cảnh giới **%s** (%d/%d). Dùng `/breakthrough` để đột phá!",
		payload.UserID, payload.LevelName, payload.Exp, payload.ExpThreshold)
	return n.send(msg)
}

func (n *notifier) onBreakthrough(ctx context.Context, e event.Event) error {
	payload, ok := e.Payload.(event.BreakthroughPayloadV1)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", e.Type)
	}
	msg := fmt.Sprintf("🎉 <@%s> đã đột phá thành công lên cảnh giới **%s**!",
		payload.UserID, payload.NewLevel)
	return n.send(msg)
}

func (n *notifier) send(msg string) error {
	if _, err := n.session.ChannelMessageSend(n.channelID, msg); err != nil {
		slog.Error("Failed to send announcement", "channel", n.channelID, "error", err)
		return err
	}
	return nil
}
