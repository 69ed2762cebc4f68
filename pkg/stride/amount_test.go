package stride

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_BaseUnits(t *testing.T) {
	for _, h := range []int64{1, 6, 42, 1_000_000} {
		base, err := WholeTokens(h).BaseUnits()
		require.NoError(t, err)
		assert.Equal(t, uint64(h)*1_000_000, base)
		assert.Equal(t, uint64(h), base/BaseUnitsPerToken)
	}

	base, err := RawAmount(123).BaseUnits()
	require.NoError(t, err)
	assert.EqualValues(t, 123, base)

	// Above 2^53, where a float would lose precision
	base, err = RawAmount(9_007_199_254_740_993).BaseUnits()
	require.NoError(t, err)
	assert.EqualValues(t, uint64(9_007_199_254_740_993), base)

	base, err = WholeTokens(18_446_744_073_709).BaseUnits()
	require.NoError(t, err)
	assert.EqualValues(t, uint64(18_446_744_073_709_000_000), base)

	for _, amount := range []Amount{
		RawAmount(0),
		WholeTokens(0),
		WholeTokens(-5),
		WholeTokens(18_446_744_073_710),
		AllStaked(),
	} {
		_, err := amount.BaseUnits()
		assert.True(t, errors.Is(err, ErrInvalidAmount), amount.String())
	}
}

func TestParseAmount(t *testing.T) {
	for _, tc := range []struct {
		input    string
		expected Amount
	}{
		{"ALL", AllStaked()},
		{"all", AllStaked()},
		{" All ", AllStaked()},
		{"", AllStaked()},
		{"6", WholeTokens(6)},
		{"6.0", WholeTokens(6)},
		{"-3", WholeTokens(-3)},
	} {
		actual, err := ParseAmount(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.expected, actual, tc.input)
	}

	for _, input := range []string{
		"1.5",
		"0.000001",
		"abc",
		"99999999999999999999",
	} {
		_, err := ParseAmount(input)
		assert.True(t, errors.Is(err, ErrInvalidAmount), input)
	}
}

func TestFormatAmount(t *testing.T) {
	for _, tc := range []struct {
		base     uint64
		expected string
	}{
		{0, "0.000000"},
		{1, "0.000001"},
		{1_500_000, "1.500000"},
		{6_000_000, "6.000000"},
		{^uint64(0), "18446744073709.551615"},
	} {
		assert.Equal(t, tc.expected, FormatAmount(tc.base))
	}

	assert.Equal(t, "ALL", AllStaked().String())
	assert.Equal(t, "6", WholeTokens(6).String())
	assert.Equal(t, "0.000010", RawAmount(10).String())
}
