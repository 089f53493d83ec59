package models

// Message is one chat message. Seq is assigned by the message store, never by
// the client, and is strictly increasing within a conversation.
type Message struct {
	ConversationKey string `dynamodbav:"conversationKey" json:"conversation_key"`
	Seq             int64  `dynamodbav:"seq" json:"seq"`
	MessageID       string `dynamodbav:"messageId" json:"message_id"`
	SenderID        string `dynamodbav:"senderId" json:"sender_id"`
	Body            string `dynamodbav:"body" json:"body"`
	CreatedAt       string `dynamodbav:"createdAt" json:"created_at"`
}

// PollResult is a page of new messages plus the cursor to present on the next
// poll. Cursor equals the request cursor when nothing new arrived.
type PollResult struct {
	Messages []Message `json:"messages"`
	Cursor   int64     `json:"cursor"`
}

// MessagesTable is the DynamoDB table name for chat messages
const MessagesTable = "Messages"
