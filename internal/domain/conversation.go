package domain

import "time"

// Turn is a single persisted conversation turn: the user's question and the
// agent's answer.
type Turn struct {
	ConversationID string
	Question       string
	Answer         string
	CreatedAt      time.Time
}
