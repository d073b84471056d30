package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// BuyCommand returns the purchase command definition and handler
func BuyCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	minQuantity := float64(1)
	cmd := &discordgo.ApplicationCommand{
		Name:        "buy",
		Description: "Mua vật phẩm bằng linh thạch",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "item",
				Description: "Vật phẩm muốn mua",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "quantity",
				Description: "Số lượng (mặc định 1)",
				Required:    false,
				MinValue:    &minQuantity,
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
		if !deferResponse(s, i) {
			return
		}
		ctx := commandContext()
		user := interactionUser(i)

		opts := i.ApplicationCommandData().Options
		itemID := resolveItemArg(deps, opts[0].StringValue())
		quantity := 1
		if len(opts) > 1 {
			quantity = int(opts[1].IntValue())
		}

		result, err := deps.Economy.Buy(ctx, user.ID, itemID, quantity)
		if err != nil {
			respondError(s, i, err)
			return
		}

		info := deps.Catalog.ResolveStorageInfo(result.Item.ItemID)
		editEmbed(s, i, &discordgo.MessageEmbed{
			Title: "🛒 Mua thành công",
			Description: fmt.Sprintf("Nhận **%s** x%d với giá %d linh thạch.\nCòn lại: %d linh thạch.",
				info.DisplayName, result.Item.Quantity, result.Cost.Quantity, result.StonesLeft),
			Color: 0x2ecc71,
		})
	}

	return cmd, handler
}
