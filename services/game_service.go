package services

import (
	"context"
	"fmt"
	"sort"

	"squadfinder_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/rs/zerolog"
)

// GameService serves the read-only games list used by the feed filter.
type GameService struct {
	Dynamo DynamoAPI
	Logger zerolog.Logger
}

// NewGameService builds the games reader.
func NewGameService(dynamo DynamoAPI, logger zerolog.Logger) *GameService {
	return &GameService{Dynamo: dynamo, Logger: logger}
}

// ListGames returns all games sorted by id.
func (gs *GameService) ListGames(ctx context.Context) ([]models.Game, error) {
	items, err := gs.Dynamo.ScanAll(ctx, models.GamesTable)
	if err != nil {
		return nil, fmt.Errorf("failed to scan games: %w", err)
	}

	var games []models.Game
	if err := attributevalue.UnmarshalListOfMaps(items, &games); err != nil {
		return nil, fmt.Errorf("failed to parse games: %w", err)
	}

	sort.Slice(games, func(i, j int) bool { return games[i].GameID < games[j].GameID })
	if games == nil {
		games = []models.Game{}
	}
	return games, nil
}
