package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// TopCommand returns the leaderboard command definition and handler
func TopCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	minLimit := float64(1)
	maxLimit := float64(25)
	cmd := &discordgo.ApplicationCommand{
		Name:        "top",
		Description: "Bảng xếp hạng tu vi",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "limit",
				Description: "Số người hiển thị (mặc định 10)",
				Required:    false,
				MinValue:    &minLimit,
				MaxValue:    maxLimit,
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
		if !deferResponse(s, i) {
			return
		}
		ctx := commandContext()

		limit := 10
		if opts := i.ApplicationCommandData().Options; len(opts) > 0 {
			limit = int(opts[0].IntValue())
		}

		entries, err := deps.Cultivation.GetLeaderboard(ctx, limit)
		if err != nil {
			respondError(s, i, err)
			return
		}
		if len(entries) == 0 {
			editContent(s, i, "Chưa có ai tu luyện.")
			return
		}

		medals := []string{"🥇", "🥈", "🥉"}
		var lines []string
		for _, entry := range entries {
			rank := fmt.Sprintf("#%d", entry.Rank)
			if entry.Rank <= len(medals) {
				rank = medals[entry.Rank-1]
			}
			lines = append(lines, fmt.Sprintf("%s <@%s> — **%s** (%d tu vi)",
				rank, entry.UserID, entry.LevelName, entry.Exp))
		}

		editEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "🏆 Bảng xếp hạng",
			Description: strings.Join(lines, "\n"),
			Color:       0xf1c40f,
		})
	}

	return cmd, handler
}
