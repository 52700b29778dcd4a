package eventbus

import (
	"encoding/json"
	"time"
)

// Event kinds published to the bus.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionDeleted = "transaction.deleted"
	EventMemberChanged      = "member.changed"
)

// Message is the wire format for ledger change notifications. Consumers
// fetch full records from the database; the message carries only ids.
type Message struct {
	Event         string    `json:"event"`
	GroupID       int64     `json:"group_id"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	UserID        int64     `json:"user_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionCreated builds a transaction.created message.
func NewTransactionCreated(groupID, transactionID int64) Message {
	return Message{
		Event:         EventTransactionCreated,
		GroupID:       groupID,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

// NewTransactionDeleted builds a transaction.deleted message.
func NewTransactionDeleted(groupID, transactionID int64) Message {
	return Message{
		Event:         EventTransactionDeleted,
		GroupID:       groupID,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

// NewMemberChanged builds a member.changed message.
func NewMemberChanged(groupID, userID int64) Message {
	return Message{
		Event:     EventMemberChanged,
		GroupID:   groupID,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON decodes a message from JSON bytes.
func MessageFromJSON(data []byte) (Message, error) {
	var msg Message
	err := json.Unmarshal(data, &msg)

	return msg, err
}
