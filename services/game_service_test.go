package services

import (
	"context"
	"testing"

	"squadfinder_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListGamesSorted(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	require.NoError(t, env.dynamo.PutItem(ctx, models.GamesTable, models.Game{GameID: "2", Name: "Dota 2"}))
	require.NoError(t, env.dynamo.PutItem(ctx, models.GamesTable, models.Game{GameID: "1", Name: "Valorant"}))

	games, err := env.games.ListGames(ctx)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "Valorant", games[0].Name)
	assert.Equal(t, "Dota 2", games[1].Name)
}

func TestListGamesEmpty(t *testing.T) {
	env := newTestEnv()

	games, err := env.games.ListGames(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, games)
	assert.Empty(t, games)
}
