package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// BreakthroughCommand returns the breakthrough command definition and handler
func BreakthroughCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "breakthrough",
		Description: "Thử đột phá lên cảnh giới tiếp theo",
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
		if !deferResponse(s, i) {
			return
		}
		ctx := commandContext()
		user := interactionUser(i)

		result, err := deps.Cultivation.AttemptBreakthrough(ctx, user.ID)
		if err != nil {
			respondError(s, i, err)
			return
		}

		if result.Succeeded {
			var rewards []string
			for _, stack := range result.RewardsGranted {
				info := deps.Catalog.ResolveStorageInfo(stack.ItemID)
				rewards = append(rewards, fmt.Sprintf("%s x%d", info.DisplayName, stack.Quantity))
			}
			desc := fmt.Sprintf("**%s** → **%s**", result.PreviousLevel, result.NewLevel)
			if len(rewards) > 0 {
				desc += "\nPhần thưởng: " + strings.Join(rewards, ", ")
			}
			editEmbed(s, i, &discordgo.MessageEmbed{
				Title:       "🎉 Đột phá thành công!",
				Description: desc,
				Color:       0x2ecc71,
			})
			return
		}

		lines := []string{fmt.Sprintf("Mất %d tu vi.", result.ExpLost)}
		for _, stack := range result.ItemsLost {
			info := deps.Catalog.ResolveStorageInfo(stack.ItemID)
			lines = append(lines, fmt.Sprintf("Mất %s x%d.", info.DisplayName, stack.Quantity))
		}
		editEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "💥 Đột phá thất bại",
			Description: strings.Join(lines, "\n"),
			Color:       0xe74c3c,
		})
	}

	return cmd, handler
}
