package models

// Game is a feed filter key, nothing more.
type Game struct {
	GameID string `dynamodbav:"gameId" json:"id"`
	Name   string `dynamodbav:"name" json:"name"`
}

// GamesTable is the DynamoDB table name for games
const GamesTable = "Games"
