package negotiation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcErr "github.com/rafipicu1/bartertalco-sub000/internal/errors"
)

func ptr[T any](v T) *T { return &v }

var (
	sepeda = ItemRef{ID: 1, Name: "Sepeda", Value: 100_000}
	kamera = ItemRef{ID: 2, Name: "Kamera", Value: 150_000}
)

func TestSuggest(t *testing.T) {
	s := Suggest(sepeda, kamera)
	assert.Equal(t, Suggestion{Delta: 50_000, TopUp: 50_000, Direction: PayExtra}, s)

	s = Suggest(kamera, sepeda)
	assert.Equal(t, Suggestion{Delta: -50_000, TopUp: 50_000, Direction: RequestExtra}, s)

	s = Suggest(sepeda, sepeda)
	assert.Equal(t, Suggestion{Delta: 0, TopUp: 0, Direction: PayExtra}, s)
}

func TestProposeValueAdjustedDefaults(t *testing.T) {
	p, err := Propose(Input{MyItem: sepeda, TargetItem: kamera, Kind: ValueAdjusted})
	require.NoError(t, err)
	require.NotNil(t, p.TopUp)
	require.NotNil(t, p.Direction)
	assert.Equal(t, int64(50_000), *p.TopUp)
	assert.Equal(t, PayExtra, *p.Direction)
	assert.Contains(t, p.Text, "Sepeda")
	assert.Contains(t, p.Text, "Kamera")
	assert.Contains(t, p.Text, "Rp 100.000")
	assert.Contains(t, p.Text, "Rp 150.000")
	assert.Contains(t, p.Text, "I add Rp 50.000 on top")
}

func TestProposeRequestExtraWhenMineIsPricier(t *testing.T) {
	p, err := Propose(Input{MyItem: kamera, TargetItem: sepeda, Kind: ValueAdjusted})
	require.NoError(t, err)
	assert.Equal(t, RequestExtra, *p.Direction)
	assert.Contains(t, p.Text, "I ask Rp 50.000 on top")
}

func TestProposeStraightBarterHasNoMoney(t *testing.T) {
	p, err := Propose(Input{MyItem: sepeda, TargetItem: kamera, Kind: StraightBarter, TopUp: ptr(int64(999))})
	require.NoError(t, err)
	assert.Nil(t, p.TopUp)
	assert.Nil(t, p.Direction)
	assert.Equal(t, int64(50_000), p.Delta)
	assert.NotContains(t, p.Text, "999")
	assert.NotContains(t, p.Text, "Rp 50.000")
	assert.Contains(t, p.Text, "no top-up")
	// item values stay on the card; only the top-up figure is omitted
	assert.Contains(t, p.Text, "Rp 100.000")
	assert.Contains(t, p.Text, "Rp 150.000")
	assert.NotContains(t, p.Text, "on top")
}

func TestProposeOverridesAndValidation(t *testing.T) {
	p, err := Propose(Input{MyItem: sepeda, TargetItem: kamera, Kind: ValueAdjusted,
		TopUp: ptr(int64(20_000)), Direction: ptr(RequestExtra)})
	require.NoError(t, err)
	assert.Equal(t, int64(20_000), *p.TopUp)
	assert.Equal(t, RequestExtra, *p.Direction)

	_, err = Propose(Input{MyItem: sepeda, TargetItem: kamera, Kind: ValueAdjusted, TopUp: ptr(int64(0))})
	assert.ErrorIs(t, err, svcErr.ErrZeroTopUp)

	_, err = Propose(Input{MyItem: sepeda, TargetItem: kamera, Kind: ValueAdjusted, TopUp: ptr(int64(-1))})
	assert.ErrorIs(t, err, svcErr.ErrNegativeTopUp)

	// equal values: default top-up is zero, so value-adjusted needs an amount
	_, err = Propose(Input{MyItem: sepeda, TargetItem: sepeda, Kind: ValueAdjusted})
	assert.ErrorIs(t, err, svcErr.ErrZeroTopUp)

	_, err = Propose(Input{MyItem: sepeda, TargetItem: kamera, Kind: "swap"})
	assert.ErrorIs(t, err, svcErr.ErrInvalidKind)

	_, err = Propose(Input{MyItem: sepeda, TargetItem: kamera, Kind: ValueAdjusted, Direction: ptr(Direction("sideways"))})
	assert.ErrorIs(t, err, svcErr.ErrInvalidTopUpSide)
}

func TestFormatIDR(t *testing.T) {
	assert.Equal(t, "Rp 0", FormatIDR(0))
	assert.Equal(t, "Rp 1.250.000", FormatIDR(1_250_000))
}
