package models

import "github.com/rizzard/rizzard/internal/conversation"

// ChatRequest is the body accepted by POST /api/chat
type ChatRequest struct {
	Messages []conversation.Message `json:"messages" validate:"required,min=1,dive"`
}
