package models

// MessagesTable is the DynamoDB table name for chat messages
const MessagesTable = "Messages"

// ChatMessage is one chat utterance scoped to a match. Messages are
// immutable once written; they are bulk-deleted when their match ends or
// is deleted.
type ChatMessage struct {
	MatchID    string `dynamodbav:"matchId" json:"matchId"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
	MessageID  string `dynamodbav:"messageId" json:"messageId"`
	SenderID   string `dynamodbav:"senderId" json:"senderId"`
	SenderName string `dynamodbav:"senderName" json:"senderName"`
	Text       string `dynamodbav:"text" json:"text"`
}
