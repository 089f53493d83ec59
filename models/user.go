package models

// User is a player profile. Registration and profile edits happen in the
// external profile service; this server only ever reads these records.
type User struct {
	UserID    string `dynamodbav:"userId" json:"id"`
	Username  string `dynamodbav:"username" json:"username"`
	Bio       string `dynamodbav:"bio" json:"bio"`
	RankTier  string `dynamodbav:"rankTier" json:"rank_tier"`
	Role      string `dynamodbav:"role" json:"role"`
	GameID    string `dynamodbav:"gameId" json:"game_id"`
	GameName  string `dynamodbav:"gameName" json:"game_name"`
	AvatarKey string `dynamodbav:"avatarKey,omitempty" json:"-"`
}

// UserSummary is the card shape served to feed and match screens. AvatarRef
// is a presigned read URL, empty when the profile has no avatar.
type UserSummary struct {
	UserID    string `json:"id"`
	Username  string `json:"username"`
	RankTier  string `json:"rank_tier"`
	Role      string `json:"role"`
	GameName  string `json:"game_name"`
	Bio       string `json:"bio"`
	AvatarRef string `json:"avatar_ref,omitempty"`
}

// UsersTable is the DynamoDB table name for player profiles
const UsersTable = "Users"
