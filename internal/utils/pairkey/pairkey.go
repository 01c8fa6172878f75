// Package pairkey canonicalizes unordered pairs of ids. Every place that forms
// a match or conversation key goes through here so lookups and inserts agree
// on one ordering.
package pairkey

import "fmt"

// Pair is an unordered pair stored in canonical order (Low <= High).
type Pair struct {
	Low  uint64
	High uint64
}

// Of returns the canonical pair for a and b.
func Of(a, b uint64) Pair {
	if a <= b {
		return Pair{Low: a, High: b}
	}
	return Pair{Low: b, High: a}
}

// Key renders the pair as "low:high", usable as a cache or lock key.
func (p Pair) Key() string {
	return fmt.Sprintf("%d:%d", p.Low, p.High)
}

// Key is shorthand for Of(a, b).Key().
func Key(a, b uint64) string {
	return Of(a, b).Key()
}

// Slots places two (user, item) sides into canonical conversation slots:
// user1 is the lower user id and item1 is user1's item.
type Slots struct {
	User1ID uint64
	Item1ID uint64
	User2ID uint64
	Item2ID uint64
}

// SlotsFor orders (userA, itemA) and (userB, itemB) by user id.
func SlotsFor(userA, itemA, userB, itemB uint64) Slots {
	if userA <= userB {
		return Slots{User1ID: userA, Item1ID: itemA, User2ID: userB, Item2ID: itemB}
	}
	return Slots{User1ID: userB, Item1ID: itemB, User2ID: userA, Item2ID: itemA}
}
