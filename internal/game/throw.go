// Package game holds the rock-paper-scissors rules played with finger counts.
package game

import (
	"fmt"
	"strings"
)

// Throw is one of the three rock-paper-scissors hands. The zero value means
// no throw has been made yet.
type Throw string

const (
	None     Throw = ""
	Rock     Throw = "rock"
	Paper    Throw = "paper"
	Scissors Throw = "scissors"
)

// Throws lists the valid throws in a fixed order.
var Throws = []Throw{Rock, Paper, Scissors}

// ParseThrow parses a throw name, case-insensitively.
func ParseThrow(s string) (Throw, error) {
	switch t := Throw(strings.ToLower(strings.TrimSpace(s))); t {
	case Rock, Paper, Scissors:
		return t, nil
	default:
		return None, fmt.Errorf("unknown throw %q", s)
	}
}

// Beats reports whether t defeats other.
func (t Throw) Beats(other Throw) bool {
	switch t {
	case Rock:
		return other == Scissors
	case Scissors:
		return other == Paper
	case Paper:
		return other == Rock
	}
	return false
}

// String returns the throw name, or "none".
func (t Throw) String() string {
	if t == None {
		return "none"
	}
	return string(t)
}

// Mapping turns a stabilized finger count into a throw.
type Mapping string

const (
	// MappingWide treats one to three fingers as scissors.
	MappingWide Mapping = "wide"
	// MappingStrict only treats exactly two fingers as scissors.
	MappingStrict Mapping = "strict"
)

// ParseMapping parses a mapping name. An empty string selects MappingWide.
func ParseMapping(s string) (Mapping, error) {
	switch m := Mapping(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MappingWide, nil
	case MappingWide, MappingStrict:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mapping %q", s)
	}
}

// Throw returns the throw for count. ok is false for counts the mapping
// leaves unassigned.
func (m Mapping) Throw(count int) (Throw, bool) {
	switch count {
	case 0:
		return Rock, true
	case 4, 5:
		return Paper, true
	case 2:
		return Scissors, true
	case 1, 3:
		if m == MappingStrict {
			return None, false
		}
		return Scissors, true
	}
	return None, false
}
