package ladder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutien/tutienbot/configs"
	"github.com/tutien/tutienbot/internal/domain"
)

func TestLoadEmbeddedConfig(t *testing.T) {
	l, err := Load(configs.Ladder)
	require.NoError(t, err)

	assert.Equal(t, "Phàm Nhân", l.First().Name)

	last := l.All()[len(l.All())-1]
	assert.True(t, l.IsTerminal(last.Name))
	assert.Equal(t, 0, last.BreakthroughRate)
}

func TestNewRejectsDecreasingThresholds(t *testing.T) {
	_, err := New([]domain.LadderEntry{
		{Name: "a", ExpThreshold: 100, BreakthroughRate: 50},
		{Name: "b", ExpThreshold: 50, BreakthroughRate: 0},
	})
	assert.ErrorIs(t, err, ErrThresholdOrder)
}

func TestNewRejectsNonTerminalLast(t *testing.T) {
	_, err := New([]domain.LadderEntry{
		{Name: "a", ExpThreshold: 100, BreakthroughRate: 50},
		{Name: "b", ExpThreshold: 200, BreakthroughRate: 10},
	})
	assert.ErrorIs(t, err, ErrTerminalNotLast)
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New([]domain.LadderEntry{
		{Name: "a", ExpThreshold: 100, BreakthroughRate: 50},
		{Name: "a", ExpThreshold: 200, BreakthroughRate: 0},
	})
	assert.ErrorIs(t, err, ErrDuplicateLevel)
}

func TestNextWalksTheSequence(t *testing.T) {
	l, err := Load(configs.Ladder)
	require.NoError(t, err)

	next, ok := l.Next("Phàm Nhân")
	require.True(t, ok)
	assert.Equal(t, "Luyện Khí", next.Name)

	last := l.All()[len(l.All())-1]
	_, ok = l.Next(last.Name)
	assert.False(t, ok)
}

func TestByNameUnknownLevel(t *testing.T) {
	l, err := Load(configs.Ladder)
	require.NoError(t, err)

	_, err = l.ByName("nope")
	assert.ErrorIs(t, err, ErrUnknownLevel)
}
