package models

import (
	"time"

	"github.com/google/uuid"
)

type BrainstormResult struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Input     string    `json:"input"`
	Context   string    `json:"context,omitempty"`
	Response  string    `json:"response"`
}

func NewBrainstormResult(input, context, response string) BrainstormResult {
	return BrainstormResult{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Input:     input,
		Context:   context,
		Response:  response,
	}
}
