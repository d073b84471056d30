package discord

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/tutien/tutienbot/internal/domain"
)

// CraftCommand returns the alchemy command definition and handler
func CraftCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "craft",
		Description: "Luyện đan dược từ nguyên liệu",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "item",
				Description: "Đan dược muốn luyện (bỏ trống để xem công thức)",
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
			editEmbed(s, i, &discordgo.MessageEmbed{
				Title:       "📜 Công thức luyện đan",
				Description: craftRecipeList(deps),
				Color:       embedColor,
			})
			return
		}

		result, err := deps.Crafting.AttemptCraft(ctx, user.ID, target)
		if err != nil {
			respondShortfall(s, i, deps, err)
			return
		}

		info := deps.Catalog.ResolveStorageInfo(target)
		if result.Succeeded {
			editEmbed(s, i, &discordgo.MessageEmbed{
				Title:       "⚗️ Luyện đan thành công!",
				Description: fmt.Sprintf("Nhận được **%s** x1.", info.DisplayName),
				Color:       0x2ecc71,
			})
			return
		}
		editEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "💨 Luyện đan thất bại",
			Description: fmt.Sprintf("Lô đan **%s** hỏng, nguyên liệu đã mất.", info.DisplayName),
			Color:       0xe74c3c,
		})
	}

	return cmd, handler
}

// resolveItemArg accepts either a catalog id or a display name.
func resolveItemArg(deps *Deps, raw string) string {
	raw = strings.TrimSpace(raw)
	if _, ok := deps.Catalog.Item(raw); ok {
		return raw
	}
	if info := deps.Catalog.ResolveByName(raw); info.Category != domain.CategoryUnknown {
		return info.CanonicalID
	}
	return raw
}

func craftRecipeList(deps *Deps) string {
	var lines []string
	for _, target := range deps.Crafting.Recipes() {
		recipe, err := deps.Crafting.GetRecipe(target)
		if err != nil {
			continue
		}
		var inputs []string
		for id, qty := range recipe.Materials {
			inputs = append(inputs, fmt.Sprintf("%s x%d", deps.Catalog.ResolveStorageInfo(id).DisplayName, qty))
		}
		for id, qty := range recipe.Medicines {
			inputs = append(inputs, fmt.Sprintf("%s x%d", deps.Catalog.ResolveStorageInfo(id).DisplayName, qty))
		}
		sort.Strings(inputs)
		lines = append(lines, fmt.Sprintf("**%s** (%d%%): %s",
			deps.Catalog.ResolveStorageInfo(target).DisplayName, recipe.SuccessRate, strings.Join(inputs, ", ")))
	}
	return strings.Join(lines, "\n")
}

// respondShortfall renders a materials shortfall with per-item have/need
// counts; other errors fall through to the generic mapping.
func respondShortfall(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, err error) {
	var matErr *domain.InsufficientMaterialsError
	if !errors.As(err, &matErr) {
		respondError(s, i, err)
		return
	}
	lines := []string{"Thiếu nguyên liệu:"}
	for _, short := range matErr.Missing {
		info := deps.Catalog.ResolveStorageInfo(short.ItemID)
		lines = append(lines, fmt.Sprintf("• %s: %d/%d", info.DisplayName, short.Have, short.Required))
	}
	editContent(s, i, strings.Join(lines, "\n"))
}
