package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"matchday_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ChatStore is the durable append-only record of chat messages per match.
type ChatStore interface {
	AppendMessage(ctx context.Context, message models.ChatMessage) error
	ListByMatch(ctx context.Context, matchID string) ([]models.ChatMessage, error)
	DeleteByMatch(ctx context.Context, matchID string) error
}

// DynamoChatStore stores chat messages in the Messages table, keyed by
// matchId + createdAt.
type DynamoChatStore struct {
	Dynamo *DynamoService
}

func (s *DynamoChatStore) AppendMessage(ctx context.Context, message models.ChatMessage) error {
	if err := s.Dynamo.PutItem(ctx, models.MessagesTable, message); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ListByMatch returns all messages for matchID in ascending timestamp
// order.
func (s *DynamoChatStore) ListByMatch(ctx context.Context, matchID string) ([]models.ChatMessage, error) {
	keyCondition := "#matchId = :matchId"
	expressionValues := map[string]types.AttributeValue{
		":matchId": &types.AttributeValueMemberS{Value: matchID},
	}
	expressionNames := map[string]string{
		"#matchId": "matchId",
	}

	items, err := s.Dynamo.QueryItems(ctx, models.MessagesTable, keyCondition, expressionValues, expressionNames)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var messages []models.ChatMessage
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal messages: %v", ErrStoreUnavailable, err)
	}

	SortMessagesAscending(messages)
	return messages, nil
}

// DeleteByMatch removes every persisted message for matchID.
func (s *DynamoChatStore) DeleteByMatch(ctx context.Context, matchID string) error {
	messages, err := s.ListByMatch(ctx, matchID)
	if err != nil {
		return err
	}

	for _, message := range messages {
		key := map[string]types.AttributeValue{
			"matchId":   &types.AttributeValueMemberS{Value: message.MatchID},
			"createdAt": &types.AttributeValueMemberS{Value: message.CreatedAt},
		}
		if err := s.Dynamo.DeleteItem(ctx, models.MessagesTable, key); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	log.Printf("🧹 Deleted %d chat messages for matchId: %s\n", len(messages), matchID)
	return nil
}

// SortMessagesAscending orders messages by parsed timestamp, oldest first.
func SortMessagesAscending(messages []models.ChatMessage) {
	sort.SliceStable(messages, func(i, j int) bool {
		ti, erri := time.Parse(time.RFC3339Nano, messages[i].CreatedAt)
		tj, errj := time.Parse(time.RFC3339Nano, messages[j].CreatedAt)
		if erri != nil || errj != nil {
			return messages[i].CreatedAt < messages[j].CreatedAt
		}
		return ti.Before(tj)
	})
}
