package domain

import (
	"regexp"
	"strings"
)

var handlePattern = regexp.MustCompile(`^[a-z0-9_-]{3,50}$`)

// Handle is the public, unique name of a trainer (shown as @handle).
type Handle struct {
	value string
}

// NewHandle lowercases s and strips a leading '@'.
func NewHandle(s string) (Handle, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "@"))
	if !handlePattern.MatchString(s) {
		return Handle{}, ErrHandleInvalid
	}
	return Handle{value: s}, nil
}

func (h Handle) String() string { return h.value }
