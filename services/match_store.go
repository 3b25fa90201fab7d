package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"matchday_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MatchStore is the durable record of match documents.
type MatchStore interface {
	GetMatch(ctx context.Context, matchID string) (*models.Match, error)
	PutMatch(ctx context.Context, match *models.Match) error
	DeleteMatch(ctx context.Context, matchID string) error
	ListByStatus(ctx context.Context, statuses []string) ([]models.Match, error)
	ListEndedByUser(ctx context.Context, userID string) ([]models.Match, error)
}

// DynamoMatchStore stores match documents in the Matches table, keyed by
// matchId.
type DynamoMatchStore struct {
	Dynamo *DynamoService
}

func (s *DynamoMatchStore) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	key := map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchID},
	}

	item, err := s.Dynamo.GetItem(ctx, models.MatchesTable, key)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, matchID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var match models.Match
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal match: %v", ErrStoreUnavailable, err)
	}
	return &match, nil
}

func (s *DynamoMatchStore) PutMatch(ctx context.Context, match *models.Match) error {
	if err := s.Dynamo.PutItem(ctx, models.MatchesTable, match); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *DynamoMatchStore) DeleteMatch(ctx context.Context, matchID string) error {
	key := map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchID},
	}
	if err := s.Dynamo.DeleteItem(ctx, models.MatchesTable, key); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ListByStatus returns matches in any of the given statuses, newest first.
func (s *DynamoMatchStore) ListByStatus(ctx context.Context, statuses []string) ([]models.Match, error) {
	filters := make([]string, 0, len(statuses))
	expressionValues := map[string]types.AttributeValue{}
	for i, status := range statuses {
		placeholder := fmt.Sprintf(":s%d", i)
		filters = append(filters, fmt.Sprintf("#status = %s", placeholder))
		expressionValues[placeholder] = &types.AttributeValueMemberS{Value: status}
	}
	filterExpression := ""
	for i, f := range filters {
		if i > 0 {
			filterExpression += " OR "
		}
		filterExpression += f
	}
	expressionNames := map[string]string{
		"#status": "status", // "status" is a DynamoDB reserved word
	}

	items, err := s.Dynamo.ScanItems(ctx, models.MatchesTable, filterExpression, expressionValues, expressionNames)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var matches []models.Match
	if err := attributevalue.UnmarshalListOfMaps(items, &matches); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal matches: %v", ErrStoreUnavailable, err)
	}

	sortMatchesNewestFirst(matches)
	return matches, nil
}

// ListEndedByUser returns ended matches with userID on either roster,
// newest first.
func (s *DynamoMatchStore) ListEndedByUser(ctx context.Context, userID string) ([]models.Match, error) {
	filterExpression := "#status = :ended AND (contains(teamA, :userId) OR contains(teamB, :userId))"
	expressionValues := map[string]types.AttributeValue{
		":ended":  &types.AttributeValueMemberS{Value: models.StatusEnded},
		":userId": &types.AttributeValueMemberS{Value: userID},
	}
	expressionNames := map[string]string{
		"#status": "status",
	}

	items, err := s.Dynamo.ScanItems(ctx, models.MatchesTable, filterExpression, expressionValues, expressionNames)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var matches []models.Match
	if err := attributevalue.UnmarshalListOfMaps(items, &matches); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal matches: %v", ErrStoreUnavailable, err)
	}

	sortMatchesNewestFirst(matches)
	return matches, nil
}

func sortMatchesNewestFirst(matches []models.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt > matches[j].CreatedAt
	})
}
