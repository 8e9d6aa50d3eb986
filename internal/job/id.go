package job

import (
	"errors"
	"fmt"
	"unicode"
)

// ID is a validated job identifier. The workflow engine mints these and hands
// them to clients out-of-band; the relay only ever trusts an ID that passed
// ParseID, so routing keys are never raw strings internally.
type ID string

const maxIDLength = 128

var (
	ErrEmptyID   = errors.New("job id is empty")
	ErrIDTooLong = fmt.Errorf("job id exceeds %d characters", maxIDLength)
)

// ParseID validates a raw identifier from an untrusted boundary (a client
// command or a bus message). Identifiers are opaque, but a usable one is
// non-empty, bounded, and printable without whitespace.
func ParseID(raw string) (ID, error) {
	if raw == "" {
		return "", ErrEmptyID
	}
	if len(raw) > maxIDLength {
		return "", ErrIDTooLong
	}
	for _, r := range raw {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return "", fmt.Errorf("job id contains invalid character %q", r)
		}
	}
	return ID(raw), nil
}

func (id ID) String() string { return string(id) }
