package chat

import "errors"

// Domain-level errors for chat behaviors
var (
	ErrInvalidConversation = errors.New("chat: conversation/message mismatch")
	ErrNotParticipant      = errors.New("chat: user is not a participant in the conversation")
	ErrUnauthorized        = errors.New("chat: no authenticated user")
	ErrNotFound            = errors.New("chat: record not found")
	ErrEmptyContent        = errors.New("chat: message content is empty")
	ErrContentTooLong      = errors.New("chat: message content exceeds the size limit")
)
