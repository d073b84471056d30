package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// ShopCommand returns the shop listing command definition and handler
func ShopCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "shop",
		Description: "Xem vật phẩm đang bán",
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
		if !deferResponse(s, i) {
			return
		}

		items := deps.Economy.ListShop()
		if len(items) == 0 {
			editContent(s, i, "Cửa hàng đang trống.")
			return
		}

		var lines []string
		for _, item := range items {
			lines = append(lines, fmt.Sprintf("**%s** — %d linh thạch (`/buy item:%s`)",
				item.DisplayName, item.BaseValue, item.ID))
		}

		editEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "🏪 Cửa hàng",
			Description: strings.Join(lines, "\n"),
			Color:       embedColor,
			Footer: &discordgo.MessageEmbedFooter{
				Text: "Giá tính bằng Hạ Phẩm Linh Thạch",
			},
		})
	}

	return cmd, handler
}
