package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// FarmCommand returns the farm command definition and handler
func FarmCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "farm",
		Description: "Thu thập nguyên liệu, linh thạch và tu vi (mỗi giờ một lần)",
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
		if !deferResponse(s, i) {
			return
		}
		ctx := commandContext()
		user := interactionUser(i)

		result, err := deps.Cultivation.Farm(ctx, user.ID, deps.Bonus.Resolve(i.Member))
		if err != nil {
			respondError(s, i, err)
			return
		}

		material := deps.Catalog.ResolveStorageInfo(result.Material.ItemID)
		stones := deps.Catalog.ResolveStorageInfo(result.SpiritStones.ItemID)
		editEmbed(s, i, &discordgo.MessageEmbed{
			Title: "🌿 Thu hoạch",
			Description: fmt.Sprintf("%s x%d\n%s x%d\n+%d tu vi",
				material.DisplayName, result.Material.Quantity,
				stones.DisplayName, result.SpiritStones.Quantity,
				result.ExpGained),
			Color: embedColor,
			Footer: &discordgo.MessageEmbedFooter{
				Text: "Lần farm tiếp theo sau 1 giờ",
			},
		})
	}

	return cmd, handler
}
