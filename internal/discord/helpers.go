package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tutien/tutienbot/internal/domain"
	"github.com/tutien/tutienbot/internal/logger"
)

const embedColor = 0x8e44ad

// commandContext tags the handler's context with a fresh request id so
// service logs from one interaction can be correlated.
func commandContext() context.Context {
	return logger.WithRequestID(context.Background(), logger.GenerateRequestID())
}

// interactionUser returns the invoking user for both guild and DM
// interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		slog.Error("Failed to send deferred response", "error", err)
		return false
	}
	return true
}

func editEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	}); err != nil {
		slog.Error("Failed to edit interaction response", "error", err)
	}
}

func editContent(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	}); err != nil {
		slog.Error("Failed to edit interaction response", "error", err)
	}
}

// respondError maps domain errors to player-facing messages. Unrecognized
// errors get a generic line; the detail stays in the logs.
func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	slog.Warn("Command failed", "command", i.ApplicationCommandData().Name, "error", err)
	editContent(s, i, friendlyError(err))
}

func friendlyError(err error) string {
	var cdErr *domain.CooldownError
	if errors.As(err, &cdErr) {
		return fmt.Sprintf("⏳ Chưa thể thực hiện, hãy chờ thêm %s.", formatDuration(cdErr.Remaining))
	}

	var matErr *domain.InsufficientMaterialsError
	if errors.As(err, &matErr) {
		return fmt.Sprintf("❌ Thiếu nguyên liệu (%d loại). Dùng `/craft` để xem công thức.", len(matErr.Missing))
	}

	switch {
	case errors.Is(err, domain.ErrNotEligible):
		return "❌ Chưa đủ tu vi để đột phá."
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "❌ Không đủ linh thạch."
	case errors.Is(err, domain.ErrNotBuyable):
		return "❌ Vật phẩm này không bán."
	case errors.Is(err, domain.ErrRecipeNotFound):
		return "❌ Không có công thức này."
	case errors.Is(err, domain.ErrItemNotFound):
		return "❌ Không tìm thấy vật phẩm."
	case errors.Is(err, domain.ErrUserNotInitialized):
		return "❌ Đạo hữu chưa bắt đầu tu luyện. Hãy trò chuyện để tích lũy tu vi."
	default:
		return "⚠️ Có lỗi xảy ra, thử lại sau."
	}
}

// formatDuration renders a remaining wait as "1h 5m" / "12m 30s" / "45s".
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
