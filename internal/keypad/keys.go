// Package keypad turns keypad input (HTTP strings, serial bytes, a terminal)
// into panel keypresses.
package keypad

import (
	"errors"
	"fmt"
	"strings"

	"control_panel/internal/panel"
)

var ErrUnknownKey = errors.New("unknown key")

// ParseKey accepts "0".."9", "cancel"/"*" and "panic"/"!".
func ParseKey(s string) (panel.Key, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "cancel", "*":
		return panel.KeyCancel, nil
	case "panic", "!":
		return panel.KeyPanic, nil
	}
	if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		return panel.Key(s[0]), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, s)
}
