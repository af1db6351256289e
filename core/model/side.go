package model

import (
	"fmt"
	"strings"
)

// Side identifies one of the two pumping facilities.
type Side int

const (
	North Side = iota
	South
)

// Sides lists every facility side in planning order.
var Sides = [...]Side{North, South}

// String returns the lowercase name used in reference files and exports.
func (s Side) String() string {
	switch s {
	case North:
		return "north"
	case South:
		return "south"
	default:
		return "unknown"
	}
}

// Sibling returns the other facility of the same cell.
func (s Side) Sibling() Side {
	if s == North {
		return South
	}
	return North
}

// ParseSide converts a side name to a Side.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north":
		return North, nil
	case "south":
		return South, nil
	default:
		return 0, fmt.Errorf("unknown side %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(text []byte) error {
	v, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
