package chat

import (
	"errors"
	"time"
)

// Role identifies who authored a transcript entry.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one immutable transcript entry.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Turn is a user message together with the reply it produced.
type Turn struct {
	User  Message `json:"user"`
	Reply Message `json:"reply"`
}

var (
	// ErrEmptyMessage is returned for blank input; nothing is appended.
	ErrEmptyMessage = errors.New("chat: message is empty")

	// ErrReplyPending is returned while the previous turn is unresolved.
	ErrReplyPending = errors.New("chat: reply pending")

	// ErrClosed is returned once the session has been torn down.
	ErrClosed = errors.New("chat: session closed")
)
