package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// StatusCommand returns the cultivation status command definition and handler
func StatusCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "status",
		Description: "Xem tu vi và cảnh giới hiện tại",
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
		if !deferResponse(s, i) {
			return
		}
		ctx := commandContext()
		user := interactionUser(i)

		// touching status from the bot always initializes the record
		if _, err := deps.Users.GetOrCreateRecord(ctx, user.ID); err != nil {
			respondError(s, i, err)
			return
		}
		status, err := deps.Cultivation.GetStatus(ctx, user.ID)
		if err != nil {
			respondError(s, i, err)
			return
		}

		var progress string
		if status.Terminal {
			progress = "Đã đạt cảnh giới tối cao"
		} else {
			progress = fmt.Sprintf("%d / %d tu vi", status.Exp, status.ExpThreshold)
		}

		fields := []*discordgo.MessageEmbedField{
			{Name: "Cảnh giới", Value: status.LevelName, Inline: true},
			{Name: "Tu vi", Value: progress, Inline: true},
		}
		if status.Eligible {
			fields = append(fields, &discordgo.MessageEmbedField{
				Name:  "Đột phá",
				Value: fmt.Sprintf("Sẵn sàng! Tỉ lệ thành công %d%%", status.BreakthroughRate),
			})
		}

		remaining, err := deps.Cultivation.GetFarmCooldownRemaining(ctx, user.ID)
		if err == nil {
			value := "Sẵn sàng"
			if remaining > 0 {
				value = "Chờ " + formatDuration(remaining)
			}
			fields = append(fields, &discordgo.MessageEmbedField{Name: "Farm", Value: value, Inline: true})
		}

		editEmbed(s, i, &discordgo.MessageEmbed{
			Title:     fmt.Sprintf("Tu vi của %s", user.Username),
			Color:     embedColor,
			Fields:    fields,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	return cmd, handler
}
