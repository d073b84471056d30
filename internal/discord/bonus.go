package discord

import (
	"github.com/bwmarrin/discordgo"
)

// BonusResolver computes a member's additive exp bonus percent from their
// roles. Stacking is additive: a server booster holding two VIP roles gets
// the sum of all three.
type BonusResolver struct {
	boosterRoleID  string
	boosterPct     int
	vipRoleBonuses map[string]int
}

// NewBonusResolver creates a resolver from role configuration.
func NewBonusResolver(boosterRoleID string, boosterPct int, vipRoleBonuses map[string]int) *BonusResolver {
	return &BonusResolver{
		boosterRoleID:  boosterRoleID,
		boosterPct:     boosterPct,
		vipRoleBonuses: vipRoleBonuses,
	}
}

// Resolve returns the total bonus percent for a guild member. A nil
// member (DM context) gets no bonus.
func (r *BonusResolver) Resolve(member *discordgo.Member) int {
	if r == nil || member == nil {
		return 0
	}
	total := 0
	for _, roleID := range member.Roles {
		if roleID == r.boosterRoleID && r.boosterRoleID != "" {
			total += r.boosterPct
		}
		if pct, ok := r.vipRoleBonuses[roleID]; ok {
			total += pct
		}
	}
	// premium_since also marks boosters when the booster role id is not
	// configured explicitly
	if r.boosterRoleID == "" && member.PremiumSince != nil {
		total += r.boosterPct
	}
	return total
}
