package economy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutien/tutienbot/configs"
	"github.com/tutien/tutienbot/internal/catalog"
	"github.com/tutien/tutienbot/internal/concurrency"
	"github.com/tutien/tutienbot/internal/domain"
	"github.com/tutien/tutienbot/internal/ladder"
	"github.com/tutien/tutienbot/internal/user"
)

type testEnv struct {
	repo *user.FakeRepository
	svc  Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cat, err := catalog.Load(configs.Items)
	require.NoError(t, err)
	l, err := ladder.Load(configs.Ladder)
	require.NoError(t, err)

	repo := user.NewFakeRepository()
	users := user.NewService(repo, l)
	svc := NewService(repo, users, cat, concurrency.NewLockManager())
	return &testEnv{repo: repo, svc: svc}
}

func shopPrice(t *testing.T, env *testEnv, itemID string) int {
	t.Helper()
	for _, item := range env.svc.ListShop() {
		if item.ID == itemID {
			return item.BaseValue
		}
	}
	t.Fatalf("item %s not in shop", itemID)
	return 0
}

func TestListShop_OnlyBuyablesSortedByPrice(t *testing.T) {
	env := newTestEnv(t)

	items := env.svc.ListShop()
	require.NotEmpty(t, items)
	for i, item := range items {
		assert.Greater(t, item.BaseValue, 0)
		if i > 0 {
			assert.GreaterOrEqual(t, item.BaseValue, items[i-1].BaseValue)
		}
	}
}

func TestBuy_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	price := shopPrice(t, env, "s1")
	env.repo.SeedItem("user1", domain.CategorySpiritStone, "lt1", price+7)

	result, err := env.svc.Buy(ctx, "user1", "s1", 1)
	require.NoError(t, err)

	assert.Equal(t, "s1", result.Item.ItemID)
	assert.Equal(t, 1, result.Item.Quantity)
	assert.Equal(t, price, result.Cost.Quantity)
	assert.Equal(t, 7, result.StonesLeft)

	assert.Equal(t, 1, env.repo.ItemQuantity("user1", domain.CategoryBook, "s1"))
	assert.Equal(t, 7, env.repo.ItemQuantity("user1", domain.CategorySpiritStone, "lt1"))
}

func TestBuy_MultipleQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	price := shopPrice(t, env, "s1")
	env.repo.SeedItem("user1", domain.CategorySpiritStone, "lt1", price*3)

	result, err := env.svc.Buy(ctx, "user1", "s1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Item.Quantity)
	assert.Equal(t, price*3, result.Cost.Quantity)
	assert.Equal(t, 0, result.StonesLeft)
	assert.Equal(t, 3, env.repo.ItemQuantity("user1", domain.CategoryBook, "s1"))
}

func TestBuy_InsufficientFundsNoMutation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	price := shopPrice(t, env, "s1")
	env.repo.SeedItem("user1", domain.CategorySpiritStone, "lt1", price-1)

	_, err := env.svc.Buy(ctx, "user1", "s1", 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.Equal(t, price-1, env.repo.ItemQuantity("user1", domain.CategorySpiritStone, "lt1"))
	assert.Equal(t, 0, env.repo.ItemQuantity("user1", domain.CategoryBook, "s1"))
}

func TestBuy_UnknownItem(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Buy(context.Background(), "user1", "no-such-item", 1)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestBuy_NotBuyable(t *testing.T) {
	env := newTestEnv(t)

	// farm materials have no base value
	_, err := env.svc.Buy(context.Background(), "user1", "1", 1)
	assert.ErrorIs(t, err, domain.ErrNotBuyable)
}

func TestBuy_CommitFailureRestoresStones(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	price := shopPrice(t, env, "s1")
	env.repo.SeedItem("user1", domain.CategorySpiritStone, "lt1", price)
	env.repo.FailCommit = errors.New("connection reset")

	_, err := env.svc.Buy(ctx, "user1", "s1", 1)
	require.Error(t, err)

	assert.Equal(t, price, env.repo.ItemQuantity("user1", domain.CategorySpiritStone, "lt1"))
	assert.Equal(t, 0, env.repo.ItemQuantity("user1", domain.CategoryBook, "s1"))
}

func TestGetBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.repo.SeedRecord(&domain.CultivationRecord{UserID: "user1", LevelName: "Phàm Nhân"})
	env.repo.SeedItem("user1", domain.CategorySpiritStone, "lt1", 42)

	balance, err := env.svc.GetBalance(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, 42, balance)
}
