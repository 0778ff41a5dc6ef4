package models

import "time"

// Turn is one message in a conversation log.
type Turn struct {
	ID      string    `json:"id,omitempty"`
	Role    string    `json:"role"` // "user" or "assistant"
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}
