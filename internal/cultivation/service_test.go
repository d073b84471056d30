package cultivation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutien/tutienbot/configs"
	"github.com/tutien/tutienbot/internal/catalog"
	"github.com/tutien/tutienbot/internal/concurrency"
	"github.com/tutien/tutienbot/internal/domain"
	"github.com/tutien/tutienbot/internal/event"
	"github.com/tutien/tutienbot/internal/ladder"
	"github.com/tutien/tutienbot/internal/user"
)

const testSeed = 42

func testLadder(t *testing.T, entries []domain.LadderEntry) *ladder.Ladder {
	t.Helper()
	l, err := ladder.New(entries)
	require.NoError(t, err)
	return l
}

// defaultTestLadder has a deterministic first tier (rate 100) and a
// never-succeeding second tier (rate 0 also marks it terminal).
func defaultTestLadder(t *testing.T) *ladder.Ladder {
	return testLadder(t, []domain.LadderEntry{
		{
			Name:              "Phàm Nhân",
			ExpThreshold:      100,
			BreakthroughRate:  100,
			ExpPenaltyPercent: 10,
			ItemPenaltyCount:  1,
		},
		{
			Name:              "Luyện Khí",
			ExpThreshold:      500,
			BreakthroughRate:  0,
			ExpPenaltyPercent: 20,
			ItemPenaltyCount:  2,
			Rewards: []domain.RewardGrant{
				{ItemID: "d1", Quantity: 2},
				{ItemID: "lt1", Quantity: 10},
			},
		},
	})
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load(configs.Items)
	require.NoError(t, err)
	return c
}

type testEnv struct {
	repo *user.FakeRepository
	bus  *event.MemoryBus
	svc  Service
}

func newTestEnv(t *testing.T, l *ladder.Ladder) *testEnv {
	t.Helper()
	repo := user.NewFakeRepository()
	bus := event.NewMemoryBus()
	users := user.NewService(repo, l)
	svc := NewService(repo, users, l, testCatalog(t), bus, concurrency.NewLockManager(), testSeed)
	return &testEnv{repo: repo, bus: bus, svc: svc}
}

func TestAccrueActivity_MessageExp(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))
	ctx := context.Background()

	status, err := env.svc.AccrueActivity(ctx, "user1", domain.ActivityDelta{Messages: 3}, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, status.Exp)
	assert.Equal(t, "Phàm Nhân", status.LevelName)
	assert.False(t, status.Eligible)
}

func TestAccrueActivity_VoiceBlockRemainder(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))
	ctx := context.Background()

	// 90s crosses one full minute block
	status, err := env.svc.AccrueActivity(ctx, "user1", domain.ActivityDelta{VoiceSeconds: 90}, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, status.Exp)

	// the 30s remainder combines with the next 30s to cross a second block
	status, err = env.svc.AccrueActivity(ctx, "user1", domain.ActivityDelta{VoiceSeconds: 30}, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, status.Exp)
}

func TestAccrueActivity_BonusPercent(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))
	ctx := context.Background()

	// 10 messages at +15% = 10 + floor(10*15/100) = 11
	status, err := env.svc.AccrueActivity(ctx, "user1", domain.ActivityDelta{Messages: 10}, 15)
	require.NoError(t, err)
	assert.Equal(t, 11, status.Exp)
}

func TestAccrueActivity_EligibilityEventFiresOnce(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))
	ctx := context.Background()

	var fired int
	env.bus.Subscribe(event.BreakthroughEligible, func(ctx context.Context, e event.Event) error {
		fired++
		payload, ok := e.Payload.(event.EligiblePayloadV1)
		require.True(t, ok)
		assert.Equal(t, "user1", payload.UserID)
		assert.GreaterOrEqual(t, payload.Exp, payload.ExpThreshold)
		return nil
	})

	_, err := env.svc.AccrueActivity(ctx, "user1", domain.ActivityDelta{Messages: 99}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, fired)

	// crossing the threshold fires exactly once
	_, err = env.svc.AccrueActivity(ctx, "user1", domain.ActivityDelta{Messages: 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	// further activity above the threshold stays silent
	_, err = env.svc.AccrueActivity(ctx, "user1", domain.ActivityDelta{Messages: 50}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
}

func TestAccrueActivity_ConcurrentIncrements(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.AccrueActivity(ctx, "user1", domain.ActivityDelta{Messages: 1}, 0)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	status, err := env.svc.GetStatus(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, workers, status.Exp)
}

func TestGetStatus_DoesNotMutate(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))
	ctx := context.Background()

	env.repo.SeedRecord(&domain.CultivationRecord{UserID: "user1", Exp: 150, LevelName: "Phàm Nhân"})

	for i := 0; i < 3; i++ {
		status, err := env.svc.GetStatus(ctx, "user1")
		require.NoError(t, err)
		assert.Equal(t, 150, status.Exp)
		assert.True(t, status.Eligible)
	}
	assert.Equal(t, 150, env.repo.Records["user1"].Exp)
}

func TestGetStatus_UninitializedUser(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))

	_, err := env.svc.GetStatus(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrUserNotInitialized)
}

func TestAttemptBreakthrough_GuaranteedSuccess(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))
	ctx := context.Background()

	env.repo.SeedRecord(&domain.CultivationRecord{UserID: "user1", Exp: 150, LevelName: "Phàm Nhân"})

	result, err := env.svc.AttemptBreakthrough(ctx, "user1")
	require.NoError(t, err)

	assert.True(t, result.Succeeded)
	assert.Equal(t, "Phàm Nhân", result.PreviousLevel)
	assert.Equal(t, "Luyện Khí", result.NewLevel)
	require.Len(t, result.RewardsGranted, 2)
	assert.Equal(t, "d1", result.RewardsGranted[0].ItemID)
	assert.Equal(t, 2, result.RewardsGranted[0].Quantity)
	assert.Equal(t, "lt1", result.RewardsGranted[1].ItemID)
	assert.Equal(t, 10, result.RewardsGranted[1].Quantity)

	// exp is kept on success
	rec := env.repo.Records["user1"]
	assert.Equal(t, 150, rec.Exp)
	assert.Equal(t, "Luyện Khí", rec.LevelName)

	assert.Equal(t, 2, env.repo.ItemQuantity("user1", domain.CategoryMedicine, "d1"))
	assert.Equal(t, 10, env.repo.ItemQuantity("user1", domain.CategorySpiritStone, "lt1"))
}

func TestAttemptBreakthrough_GuaranteedFailurePenalties(t *testing.T) {
	l := testLadder(t, []domain.LadderEntry{
		{Name: "Trúc Cơ", ExpThreshold: 500, BreakthroughRate: 0, ExpPenaltyPercent: 20, ItemPenaltyCount: 2},
		{Name: "Kim Đan", ExpThreshold: 2000, BreakthroughRate: 0},
	})
	env := newTestEnv(t, l)
	ctx := context.Background()

	env.repo.SeedRecord(&domain.CultivationRecord{UserID: "user1", Exp: 1000, LevelName: "Trúc Cơ"})
	env.repo.SeedItem("user1", domain.CategoryMaterial, "1", 50)
	env.repo.SeedItem("user1", domain.CategoryMedicine, "d1", 2)

	result, err := env.svc.AttemptBreakthrough(ctx, "user1")
	require.NoError(t, err)

	assert.False(t, result.Succeeded)
	assert.Equal(t, "Trúc Cơ", result.PreviousLevel)
	assert.Empty(t, result.NewLevel)
	assert.Equal(t, 200, result.ExpLost)
	assert.Equal(t, 800, env.repo.Records["user1"].Exp)
	assert.Equal(t, "Trúc Cơ", env.repo.Records["user1"].LevelName)

	// up to ItemPenaltyCount distinct rows each lose 1-3, never below zero
	assert.LessOrEqual(t, len(result.ItemsLost), 2)
	for _, lost := range result.ItemsLost {
		assert.GreaterOrEqual(t, lost.Quantity, 1)
		assert.LessOrEqual(t, lost.Quantity, 3)
		assert.GreaterOrEqual(t, env.repo.ItemQuantity("user1", lost.Category, lost.ItemID), 0)
	}
}

func TestAttemptBreakthrough_ItemLossCappedAtHeld(t *testing.T) {
	l := testLadder(t, []domain.LadderEntry{
		{Name: "Trúc Cơ", ExpThreshold: 100, BreakthroughRate: 0, ExpPenaltyPercent: 0, ItemPenaltyCount: 5},
		{Name: "Kim Đan", ExpThreshold: 2000, BreakthroughRate: 0},
	})
	env := newTestEnv(t, l)
	ctx := context.Background()

	env.repo.SeedRecord(&domain.CultivationRecord{UserID: "user1", Exp: 100, LevelName: "Trúc Cơ"})
	env.repo.SeedItem("user1", domain.CategoryMaterial, "1", 1)

	result, err := env.svc.AttemptBreakthrough(ctx, "user1")
	require.NoError(t, err)

	assert.False(t, result.Succeeded)
	require.Len(t, result.ItemsLost, 1)
	assert.Equal(t, 1, result.ItemsLost[0].Quantity)
	assert.Equal(t, 0, env.repo.ItemQuantity("user1", domain.CategoryMaterial, "1"))
}

func TestAttemptBreakthrough_EmptyInventoryOnlyExpPenalty(t *testing.T) {
	l := testLadder(t, []domain.LadderEntry{
		{Name: "Trúc Cơ", ExpThreshold: 100, BreakthroughRate: 0, ExpPenaltyPercent: 50, ItemPenaltyCount: 3},
		{Name: "Kim Đan", ExpThreshold: 2000, BreakthroughRate: 0},
	})
	env := newTestEnv(t, l)

	env.repo.SeedRecord(&domain.CultivationRecord{UserID: "user1", Exp: 101, LevelName: "Trúc Cơ"})

	result, err := env.svc.AttemptBreakthrough(context.Background(), "user1")
	require.NoError(t, err)

	assert.False(t, result.Succeeded)
	// round(101*50/100) = 51
	assert.Equal(t, 51, result.ExpLost)
	assert.Equal(t, 50, env.repo.Records["user1"].Exp)
	assert.Empty(t, result.ItemsLost)
}

func TestAttemptBreakthrough_NotEligible(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))
	ctx := context.Background()

	env.repo.SeedRecord(&domain.CultivationRecord{UserID: "user1", Exp: 99, LevelName: "Phàm Nhân"})

	_, err := env.svc.AttemptBreakthrough(ctx, "user1")
	assert.ErrorIs(t, err, domain.ErrNotEligible)
	assert.Equal(t, 99, env.repo.Records["user1"].Exp)
	assert.Equal(t, "Phàm Nhân", env.repo.Records["user1"].LevelName)
}

func TestAttemptBreakthrough_TerminalTierNotEligible(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))

	env.repo.SeedRecord(&domain.CultivationRecord{UserID: "user1", Exp: 100000, LevelName: "Luyện Khí"})

	_, err := env.svc.AttemptBreakthrough(context.Background(), "user1")
	assert.ErrorIs(t, err, domain.ErrNotEligible)
}

func TestAttemptBreakthrough_CommitFailureRollsBack(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))

	env.repo.SeedRecord(&domain.CultivationRecord{UserID: "user1", Exp: 150, LevelName: "Phàm Nhân"})
	env.repo.FailCommit = errors.New("connection reset")

	_, err := env.svc.AttemptBreakthrough(context.Background(), "user1")
	require.Error(t, err)

	assert.Equal(t, "Phàm Nhân", env.repo.Records["user1"].LevelName)
	assert.Equal(t, 150, env.repo.Records["user1"].Exp)
	assert.Equal(t, 0, env.repo.ItemQuantity("user1", domain.CategoryMedicine, "d1"))
}

func TestFarm_GrantsRewardsAndSetsCooldown(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))
	ctx := context.Background()

	result, err := env.svc.Farm(ctx, "user1", 0)
	require.NoError(t, err)

	assert.Equal(t, domain.CategoryMaterial, result.Material.Category)
	assert.GreaterOrEqual(t, result.Material.Quantity, farmMaterialMin)
	assert.LessOrEqual(t, result.Material.Quantity, farmMaterialMax)

	assert.Equal(t, "lt1", result.SpiritStones.ItemID)
	assert.GreaterOrEqual(t, result.SpiritStones.Quantity, farmStoneMin)
	assert.LessOrEqual(t, result.SpiritStones.Quantity, farmStoneMax)

	assert.GreaterOrEqual(t, result.ExpGained, farmExpMin)
	assert.LessOrEqual(t, result.ExpGained, farmExpMax)

	rec := env.repo.Records["user1"]
	assert.Equal(t, result.ExpGained, rec.Exp)
	require.NotNil(t, rec.LastFarmAt)
	assert.WithinDuration(t, rec.LastFarmAt.Add(time.Hour), result.NextFarmAt, time.Second)

	assert.Equal(t, result.Material.Quantity, env.repo.ItemQuantity("user1", domain.CategoryMaterial, result.Material.ItemID))
	assert.Equal(t, result.SpiritStones.Quantity, env.repo.ItemQuantity("user1", domain.CategorySpiritStone, "lt1"))
}

func TestFarm_SecondAttemptOnCooldown(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))
	ctx := context.Background()

	first, err := env.svc.Farm(ctx, "user1", 0)
	require.NoError(t, err)

	expBefore := env.repo.Records["user1"].Exp
	qtyBefore := env.repo.ItemQuantity("user1", domain.CategoryMaterial, first.Material.ItemID)

	_, err = env.svc.Farm(ctx, "user1", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOnCooldown)

	var cdErr *domain.CooldownError
	require.ErrorAs(t, err, &cdErr)
	assert.Equal(t, "farm", cdErr.Action)
	assert.Greater(t, cdErr.Remaining, time.Duration(0))
	assert.LessOrEqual(t, cdErr.Remaining, time.Hour)

	// nothing mutated by the rejected attempt
	assert.Equal(t, expBefore, env.repo.Records["user1"].Exp)
	assert.Equal(t, qtyBefore, env.repo.ItemQuantity("user1", domain.CategoryMaterial, first.Material.ItemID))
}

func TestFarm_CooldownExpiryAllowsRetry(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))
	ctx := context.Background()

	stale := time.Now().UTC().Add(-2 * time.Hour)
	env.repo.SeedRecord(&domain.CultivationRecord{UserID: "user1", Exp: 0, LevelName: "Phàm Nhân", LastFarmAt: &stale})

	_, err := env.svc.Farm(ctx, "user1", 0)
	assert.NoError(t, err)
}

func TestFarm_BonusBoostsEveryGrant(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))

	// +100% doubles every base draw
	result, err := env.svc.Farm(context.Background(), "user1", 100)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.Material.Quantity, 2*farmMaterialMin)
	assert.LessOrEqual(t, result.Material.Quantity, 2*farmMaterialMax)
	assert.GreaterOrEqual(t, result.SpiritStones.Quantity, 2*farmStoneMin)
	assert.GreaterOrEqual(t, result.ExpGained, 2*farmExpMin)
	assert.Equal(t, 0, result.ExpGained%2)
}

func TestGetFarmCooldownRemaining(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))
	ctx := context.Background()

	recent := time.Now().UTC().Add(-30 * time.Minute)
	env.repo.SeedRecord(&domain.CultivationRecord{UserID: "user1", LevelName: "Phàm Nhân", LastFarmAt: &recent})

	remaining, err := env.svc.GetFarmCooldownRemaining(ctx, "user1")
	require.NoError(t, err)
	assert.Greater(t, remaining, 29*time.Minute)
	assert.LessOrEqual(t, remaining, 30*time.Minute)

	env.repo.SeedRecord(&domain.CultivationRecord{UserID: "user2", LevelName: "Phàm Nhân"})
	remaining, err = env.svc.GetFarmCooldownRemaining(ctx, "user2")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), remaining)
}

func TestGetLeaderboard(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))
	ctx := context.Background()

	env.repo.SeedRecord(&domain.CultivationRecord{UserID: "a", Exp: 100, LevelName: "Phàm Nhân"})
	env.repo.SeedRecord(&domain.CultivationRecord{UserID: "b", Exp: 300, LevelName: "Phàm Nhân"})
	env.repo.SeedRecord(&domain.CultivationRecord{UserID: "c", Exp: 200, LevelName: "Phàm Nhân"})

	entries, err := env.svc.GetLeaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "c", entries[1].UserID)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestIsEligibleForBreakthrough(t *testing.T) {
	env := newTestEnv(t, defaultTestLadder(t))
	ctx := context.Background()

	env.repo.SeedRecord(&domain.CultivationRecord{UserID: "user1", Exp: 100, LevelName: "Phàm Nhân"})
	eligible, err := env.svc.IsEligibleForBreakthrough(ctx, "user1")
	require.NoError(t, err)
	assert.True(t, eligible)

	env.repo.SeedRecord(&domain.CultivationRecord{UserID: "user2", Exp: 99, LevelName: "Phàm Nhân"})
	eligible, err = env.svc.IsEligibleForBreakthrough(ctx, "user2")
	require.NoError(t, err)
	assert.False(t, eligible)
}

func TestApplyBonus(t *testing.T) {
	assert.Equal(t, 10, applyBonus(10, 0))
	assert.Equal(t, 10, applyBonus(10, -5))
	assert.Equal(t, 11, applyBonus(10, 15))
	assert.Equal(t, 20, applyBonus(10, 100))
	assert.Equal(t, 0, applyBonus(0, 50))
}
