// Package negotiation builds barter proposals and posts them into the
// conversation between two users.
package negotiation

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	svcErr "github.com/rafipicu1/bartertalco-sub000/internal/errors"
)

// Kind of negotiation.
type Kind string

const (
	// StraightBarter swaps the items as they are, whatever their values.
	StraightBarter Kind = "straight_barter"
	// ValueAdjusted ("tuker tambah") adds a cash top-up to one side.
	ValueAdjusted Kind = "value_adjusted"
)

func (k Kind) Valid() bool {
	return k == StraightBarter || k == ValueAdjusted
}

// Direction says who pays the top-up, from the proposer's point of view.
type Direction string

const (
	PayExtra     Direction = "pay_extra"
	RequestExtra Direction = "request_extra"
)

func (d Direction) Valid() bool {
	return d == PayExtra || d == RequestExtra
}

// ItemRef is the part of an item a proposal embeds.
type ItemRef struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// Suggestion is the default top-up for a value-adjusted offer.
type Suggestion struct {
	Delta     int64     `json:"delta"`
	TopUp     int64     `json:"top_up"`
	Direction Direction `json:"direction"`
}

// Suggest computes delta = target - mine and the default top-up |delta|.
// The proposer pays when their item is cheaper (or equal) and requests
// otherwise.
func Suggest(mine, target ItemRef) Suggestion {
	delta := target.Value - mine.Value
	s := Suggestion{Delta: delta, TopUp: delta, Direction: PayExtra}
	if delta < 0 {
		s.TopUp = -delta
		s.Direction = RequestExtra
	}
	return s
}

// Input is what the proposer picked. TopUp and Direction override the
// suggestion and only matter for ValueAdjusted.
type Input struct {
	MyItem     ItemRef
	TargetItem ItemRef
	Kind       Kind
	TopUp      *int64
	Direction  *Direction
}

// Proposal is the structured offer stored as the message payload.
type Proposal struct {
	Kind       Kind       `json:"kind"`
	MyItem     ItemRef    `json:"my_item"`
	TargetItem ItemRef    `json:"target_item"`
	Delta      int64      `json:"delta"`
	TopUp      *int64     `json:"top_up,omitempty"`
	Direction  *Direction `json:"direction,omitempty"`
	Text       string     `json:"text"`
}

// Propose validates in and renders the proposal. Nothing is written.
//
// Behavior:
//   - StraightBarter ignores TopUp/Direction and carries no money figure.
//   - ValueAdjusted defaults to Suggest; an explicit TopUp must be > 0
//     (ErrNegativeTopUp, ErrZeroTopUp) and so must the default, so equal
//     values cannot be value-adjusted without an override.
func Propose(in Input) (Proposal, error) {
	if !in.Kind.Valid() {
		return Proposal{}, fmt.Errorf("%q: %w", in.Kind, svcErr.ErrInvalidKind)
	}
	s := Suggest(in.MyItem, in.TargetItem)
	p := Proposal{
		Kind:       in.Kind,
		MyItem:     in.MyItem,
		TargetItem: in.TargetItem,
		Delta:      s.Delta,
	}
	if in.Kind == StraightBarter {
		p.Text = render(p)
		return p, nil
	}

	amount := s.TopUp
	if in.TopUp != nil {
		amount = *in.TopUp
	}
	switch {
	case amount < 0:
		return Proposal{}, svcErr.ErrNegativeTopUp
	case amount == 0:
		return Proposal{}, svcErr.ErrZeroTopUp
	}

	dir := s.Direction
	if in.Direction != nil {
		if !in.Direction.Valid() {
			return Proposal{}, fmt.Errorf("%q: %w", *in.Direction, svcErr.ErrInvalidTopUpSide)
		}
		dir = *in.Direction
	}
	p.TopUp = &amount
	p.Direction = &dir
	p.Text = render(p)
	return p, nil
}

var idr = message.NewPrinter(language.Indonesian)

// FormatIDR renders an amount the Indonesian way, e.g. "Rp 50.000".
func FormatIDR(amount int64) string {
	return "Rp " + idr.Sprintf("%d", amount)
}

func render(p Proposal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trade offer: my %s (%s) for your %s (%s).",
		p.MyItem.Name, FormatIDR(p.MyItem.Value), p.TargetItem.Name, FormatIDR(p.TargetItem.Value))
	if p.Kind == StraightBarter {
		b.WriteString(" Straight barter, no top-up.")
		return b.String()
	}
	if *p.Direction == PayExtra {
		fmt.Fprintf(&b, " I add %s on top.", FormatIDR(*p.TopUp))
	} else {
		fmt.Fprintf(&b, " I ask %s on top from you.", FormatIDR(*p.TopUp))
	}
	return b.String()
}
