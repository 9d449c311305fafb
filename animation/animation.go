// Package animation computes time budgets for character-by-character text
// reveal animations.
package animation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/graphemes"
)

// Historical defaults used when callers do not supply their own timings.
const (
	DefaultSpeed      = 100 * time.Millisecond
	DefaultStartDelay = 200 * time.Millisecond
)

// ErrUnknownCounter is returned by CounterByName for unsupported names.
var ErrUnknownCounter = errors.New("animation: unknown counter")

// Counter reports how many animation steps a text takes.
type Counter func(text string) int

// Runes counts Unicode code points.
func Runes(text string) int {
	return utf8.RuneCountInString(text)
}

// UTF16Units counts UTF-16 code units, the unit a browser string is split into.
// Runes outside the Basic Multilingual Plane count twice.
func UTF16Units(text string) int {
	n := 0
	for _, r := range text {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// Graphemes counts user-perceived characters (extended grapheme clusters).
func Graphemes(text string) int {
	n := 0
	tokens := graphemes.FromString(text)
	for tokens.Next() {
		n++
	}
	return n
}

// CounterByName resolves "runes", "utf16" or "graphemes" to a Counter.
func CounterByName(name string) (Counter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "runes":
		return Runes, nil
	case "utf16":
		return UTF16Units, nil
	case "graphemes":
		return Graphemes, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCounter, name)
	}
}

// Duration returns startDelay plus one speed step per rune of text.
// Inputs are not validated; negative values reduce the result.
func Duration(text string, speed, startDelay time.Duration) time.Duration {
	return Calculator{Speed: speed, StartDelay: startDelay}.Duration(text)
}

// DefaultDuration is Duration with DefaultSpeed and DefaultStartDelay.
func DefaultDuration(text string) time.Duration {
	return Duration(text, DefaultSpeed, DefaultStartDelay)
}

// Calculator holds animation timings and the counting strategy.
// A nil Count counts runes.
type Calculator struct {
	Speed      time.Duration
	StartDelay time.Duration
	Count      Counter
}

// Steps returns the number of characters the calculator animates in text.
func (c Calculator) Steps(text string) int {
	if c.Count == nil {
		return Runes(text)
	}
	return c.Count(text)
}

// Duration returns the total animation time for text.
func (c Calculator) Duration(text string) time.Duration {
	return c.StartDelay + time.Duration(c.Steps(text))*c.Speed
}
