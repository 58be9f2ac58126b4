package repositories

import (
	"context"
	"testing"

	"github.com/ch1nq/arcadio-go/pkg/repositories/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLiteRepository(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close(context.Background())
	})
	return repo
}

func TestSQLiteRepository_SaveAndGetMatch(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	winner := int64(3)
	won := &models.Match{
		ID:         "5f0c",
		Host:       "localhost:8080",
		Strategy:   "avoid",
		PlayerID:   3,
		WinnerID:   &winner,
		Won:        true,
		Timestep:   1204,
		Players:    4,
		StartedAt:  1700000000000,
		DurationMs: 60200,
	}
	draw := &models.Match{
		ID:         "9a1d",
		Host:       "localhost:8080",
		Strategy:   "random",
		PlayerID:   1,
		Timestep:   88,
		Players:    2,
		StartedAt:  1700000060000,
		DurationMs: 4400,
	}
	require.NoError(t, repo.SaveMatch(ctx, won))
	require.NoError(t, repo.SaveMatch(ctx, draw))

	got, err := repo.GetMatch(ctx, "5f0c")
	require.NoError(t, err)
	assert.Equal(t, won, got)

	got, err = repo.GetMatch(ctx, "9a1d")
	require.NoError(t, err)
	assert.Equal(t, draw, got)
	assert.Nil(t, got.WinnerID)
}

func TestSQLiteRepository_GetMatch_NotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetMatch(context.Background(), "unknown")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSQLiteRepository_ListMatches(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	for i, id := range []string{"first", "second", "third"} {
		require.NoError(t, repo.SaveMatch(ctx, &models.Match{
			ID:        id,
			Host:      "localhost:8080",
			Strategy:  "forward",
			PlayerID:  int64(i),
			StartedAt: int64(i * 1000),
		}))
	}

	matches, err := repo.ListMatches(ctx, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "third", matches[0].ID)
	assert.Equal(t, "second", matches[1].ID)
}

func TestSQLiteRepository_GetStrategyStats(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	saved := []*models.Match{
		{ID: "a", Strategy: "avoid", Won: true},
		{ID: "b", Strategy: "avoid", Won: false},
		{ID: "c", Strategy: "random", Won: false},
	}
	for _, match := range saved {
		require.NoError(t, repo.SaveMatch(ctx, match))
	}

	stats, err := repo.GetStrategyStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*models.StrategyStats{
		{Strategy: "avoid", Matches: 2, Wins: 1},
		{Strategy: "random", Matches: 1, Wins: 0},
	}, stats)
}
