package cultivation

// Activity accrual rates
const (
	// expPerMessage is the EXP granted per chat message.
	expPerMessage = 1

	// voiceBlockSeconds of voice time grant expPerVoiceBlock EXP.
	voiceBlockSeconds = 60
	expPerVoiceBlock  = 5
)

// Farm reward base ranges, each boosted independently by the user's bonus
// percent before granting.
const (
	farmMaterialMin = 1
	farmMaterialMax = 3

	farmStoneMin = 1
	farmStoneMax = 5

	farmExpMin = 10
	farmExpMax = 50

	// farmStoneItemID is the spirit stone grade dropped by farming.
	farmStoneItemID = "lt1"
)

// Breakthrough failure item penalty: each selected row loses a random
// amount in [itemLossMin, itemLossMax], capped at the row quantity.
const (
	itemLossMin = 1
	itemLossMax = 3
)

const defaultLeaderboardLimit = 10
