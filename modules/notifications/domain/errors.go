package domain

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrTitleRequired        = errors.New("notification title is required")
	ErrInvalidType          = errors.New("invalid notification type")
)
