package moneypkg

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "Integer", input: "100", want: "100"},
		{name: "TwoDecimals", input: "-2300.00", want: "-2300"},
		{name: "FullPrecision", input: "33.333333", want: "33.333333"},
		{name: "Garbage", input: "!@#$", wantErr: ErrInvalidAmount},
		{name: "Empty", input: "", wantErr: ErrInvalidAmount},
		{name: "Float", input: "1e-2", want: "0.01"},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tc.input)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, got.String())
		})
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	d := decimal.RequireFromString("-2300")
	require.Equal(t, "-2300.00", String(d, 2))
	require.Equal(t, "-2300", String(d, 0))

	third := decimal.RequireFromString("33.335")
	require.Equal(t, "33.34", String(third, 2))
}

func TestRound(t *testing.T) {
	t.Parallel()

	require.Equal(t, "33.33", Round(decimal.RequireFromString("33.333333"), 2).String())
	require.Equal(t, "33.34", Round(decimal.RequireFromString("33.335"), 2).String())
	require.Equal(t, "120", Round(decimal.RequireFromString("119.5"), 0).String())
}

func TestEpsilon(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0.01", Epsilon(2).String())
	require.Equal(t, "1", Epsilon(0).String())
	require.Equal(t, "0.005", HalfEpsilon(2).String())
	require.Equal(t, "0.5", HalfEpsilon(0).String())
}
