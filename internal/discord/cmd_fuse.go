package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// FuseCommand returns the spirit stone fusion command definition and handler
func FuseCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "fuse",
		Description: "Hợp nhất linh thạch cấp thấp thành cấp cao",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "target",
				Description: "Linh thạch muốn hợp nhất (bỏ trống để xem công thức)",
				Required:    false,
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
		if !deferResponse(s, i) {
			return
		}
		ctx := commandContext()
		user := interactionUser(i)

		var target string
		if opts := i.ApplicationCommandData().Options; len(opts) > 0 {
			target = resolveItemArg(deps, opts[0].StringValue())
		}

		if target == "" {
			var lines []string
			for _, id := range deps.Crafting.Fusions() {
				recipe, err := deps.Crafting.GetFusionRecipe(id)
				if err != nil {
					continue
				}
				lines = append(lines, fmt.Sprintf("**%s** (%d%%): %s x%d",
					deps.Catalog.ResolveStorageInfo(id).DisplayName,
					recipe.SuccessRate,
					deps.Catalog.ResolveStorageInfo(recipe.SourceItemID).DisplayName,
					recipe.SourceQuantity))
			}
			editEmbed(s, i, &discordgo.MessageEmbed{
				Title:       "💎 Công thức hợp nhất",
				Description: strings.Join(lines, "\n"),
				Color:       embedColor,
			})
			return
		}

		result, err := deps.Crafting.AttemptFusion(ctx, user.ID, target)
		if err != nil {
			respondShortfall(s, i, deps, err)
			return
		}

		info := deps.Catalog.ResolveStorageInfo(target)
		if result.Succeeded {
			editEmbed(s, i, &discordgo.MessageEmbed{
				Title:       "💎 Hợp nhất thành công!",
				Description: fmt.Sprintf("Nhận được **%s** x1.", info.DisplayName),
				Color:       0x2ecc71,
			})
			return
		}
		editEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "💔 Hợp nhất thất bại",
			Description: "Linh thạch vỡ vụn, nguyên liệu đã mất.",
			Color:       0xe74c3c,
		})
	}

	return cmd, handler
}
