package models

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "UserProfiles"

// UserProfile carries the display name and lifetime match tallies for a
// user. Identity issuance lives in the external gateway; this document is
// only read for display names and written for win/loss/draw bookkeeping.
type UserProfile struct {
	UserID        string `dynamodbav:"userId" json:"userId"`
	Name          string `dynamodbav:"name" json:"name"`
	MatchesPlayed int    `dynamodbav:"matchesPlayed" json:"matchesPlayed"`
	Wins          int    `dynamodbav:"wins" json:"wins"`
	Losses        int    `dynamodbav:"losses" json:"losses"`
}
