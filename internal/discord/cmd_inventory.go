package discord

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/tutien/tutienbot/internal/domain"
)

// categoryOrder fixes the display order of inventory sections.
var categoryOrder = []domain.ItemCategory{
	domain.CategoryMaterial,
	domain.CategoryMedicine,
	domain.CategorySpiritStone,
	domain.CategoryBook,
	domain.CategoryUnknown,
}

var categoryHeadings = map[domain.ItemCategory]string{
	domain.CategoryMaterial:    "🌿 Nguyên liệu",
	domain.CategoryMedicine:    "💊 Đan dược",
	domain.CategorySpiritStone: "💎 Linh thạch",
	domain.CategoryBook:        "📚 Công pháp",
	domain.CategoryUnknown:     "❓ Khác",
}

// InventoryCommand returns the inventory command definition and handler
func InventoryCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "inventory",
		Description: "Xem túi đồ của bạn",
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
		if !deferResponse(s, i) {
			return
		}
		ctx := commandContext()
		user := interactionUser(i)

		if _, err := deps.Users.GetOrCreateRecord(ctx, user.ID); err != nil {
			respondError(s, i, err)
			return
		}
		inv, err := deps.Users.GetInventory(ctx, user.ID)
		if err != nil {
			respondError(s, i, err)
			return
		}

		entries := inv.NonEmpty()
		if len(entries) == 0 {
			editContent(s, i, "Túi đồ trống.")
			return
		}

		byCategory := make(map[domain.ItemCategory][]string)
		for _, entry := range entries {
			info := deps.Catalog.ResolveStorageInfo(entry.ItemID)
			name := info.DisplayName
			if info.Category == domain.CategoryUnknown {
				name = entry.ItemID
			}
			byCategory[entry.Category] = append(byCategory[entry.Category],
				fmt.Sprintf("%s x%d", name, entry.Quantity))
		}

		var sections []string
		for _, category := range categoryOrder {
			lines := byCategory[category]
			if len(lines) == 0 {
				continue
			}
			sort.Strings(lines)
			sections = append(sections, fmt.Sprintf("**%s**\n%s", categoryHeadings[category], strings.Join(lines, "\n")))
		}

		editEmbed(s, i, &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Túi đồ của %s", user.Username),
			Description: strings.Join(sections, "\n\n"),
			Color:       embedColor,
		})
	}

	return cmd, handler
}
