package services

import (
	"context"
	"errors"
	"fmt"

	"matchday_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Outcome of one match for one participant.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

// StatsSink receives one result per participant when a match ends.
type StatsSink interface {
	RecordResult(ctx context.Context, userID string, outcome Outcome) error
}

// ProfileDirectory resolves user ids to display names.
type ProfileDirectory interface {
	GetDisplayName(ctx context.Context, userID string) (string, error)
}

// UserProfileService reads display names from and writes lifetime match
// tallies to the UserProfiles table.
type UserProfileService struct {
	Dynamo *DynamoService
}

// GetUserProfile retrieves a user profile by ID
func (ups *UserProfileService) GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := ups.Dynamo.GetItem(ctx, models.UserProfilesTable, key)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, fmt.Errorf("%w: profile %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal profile: %v", ErrStoreUnavailable, err)
	}
	return &profile, nil
}

// GetDisplayName resolves userID to a display name, falling back to the id
// itself when the profile is missing.
func (ups *UserProfileService) GetDisplayName(ctx context.Context, userID string) (string, error) {
	profile, err := ups.GetUserProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return userID, nil
		}
		return "", err
	}
	return profile.Name, nil
}

// RecordResult atomically bumps matchesPlayed plus wins or losses for
// userID. ADD creates the attributes on first write, so users without
// prior tallies are handled in the same expression.
func (ups *UserProfileService) RecordResult(ctx context.Context, userID string, outcome Outcome) error {
	updateExpression := "ADD matchesPlayed :one"
	switch outcome {
	case OutcomeWin:
		updateExpression = "ADD matchesPlayed :one, wins :one"
	case OutcomeLoss:
		updateExpression = "ADD matchesPlayed :one, losses :one"
	}

	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	expressionValues := map[string]types.AttributeValue{
		":one": &types.AttributeValueMemberN{Value: "1"},
	}

	if err := ups.Dynamo.UpdateItem(ctx, models.UserProfilesTable, updateExpression, key, expressionValues, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
