package domain

import "errors"

var (
	ErrThreadNotFound       = errors.New("chat thread not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotParticipant       = errors.New("you are not a participant of this chat")
	ErrNotRecipient         = errors.New("only the recipient can mark a message as read")
	ErrSubscriptionRequired = errors.New("an active subscription with this trainer is required")
	ErrTrainerUnavailable   = errors.New("trainer is not available")
	ErrContentRequired      = errors.New("text messages need content")
	ErrContentTooLong       = errors.New("message content must be at most 2000 characters")
	ErrMediaRequired        = errors.New("media messages need a media URL")
	ErrInvalidMessageType   = errors.New("message type must be Text, Image, Video, Audio or File")
)
