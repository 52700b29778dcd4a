package ledger

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/splitpal/splitpal/internal/domain"
)

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	v, err := decimal.NewFromString(s)
	require.NoError(t, err)

	return v
}

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

func members(ids ...int64) map[int64]struct{} {
	m := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}

	return m
}

func countPtr(c int32) *int32 { return &c }

func TestAggregateShares(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		raw      []domain.ShareInput
		total    string
		scale    int32
		members  map[int64]struct{}
		want     map[int64]domain.Share
		wantErr  error
		wantWant string
		wantGot  string
	}{
		{
			name: "DuplicateLinesMerge",
			raw: []domain.ShareInput{
				{UserID: 1, Amount: decimal.RequireFromString("1.00")},
				{UserID: 1, Amount: decimal.RequireFromString("2.00")},
			},
			total:   "3.00",
			scale:   2,
			members: members(1),
			want: map[int64]domain.Share{
				1: {UserID: 1, Amount: decimal.RequireFromString("3.00")},
			},
		},
		{
			name: "Mismatch",
			raw: []domain.ShareInput{
				{UserID: 1, Amount: decimal.RequireFromString("1.00")},
				{UserID: 2, Amount: decimal.RequireFromString("1.99")},
			},
			total:    "3.00",
			scale:    2,
			members:  members(1, 2),
			wantErr:  domain.ErrShareMismatch,
			wantWant: "3",
			wantGot:  "2.99",
		},
		{
			name: "InvalidMember",
			raw: []domain.ShareInput{
				{UserID: 99, Amount: decimal.RequireFromString("3.00")},
			},
			total:   "3.00",
			scale:   2,
			members: members(1, 2),
			wantErr: domain.ErrInvalidMember,
		},
		{
			name: "RoundingAfterSummationNotPerLine",
			raw: []domain.ShareInput{
				// Each line rounds to zero on its own; the sum does not.
				{UserID: 1, Amount: decimal.RequireFromString("0.004")},
				{UserID: 1, Amount: decimal.RequireFromString("0.004")},
			},
			total:   "0.01",
			scale:   2,
			members: members(1),
			want: map[int64]domain.Share{
				1: {UserID: 1, Amount: decimal.RequireFromString("0.01")},
			},
		},
		{
			name: "ShareCountsSum",
			raw: []domain.ShareInput{
				{UserID: 1, Amount: decimal.RequireFromString("10.00"), ShareCount: countPtr(1)},
				{UserID: 1, Amount: decimal.RequireFromString("20.00"), ShareCount: countPtr(2)},
				{UserID: 2, Amount: decimal.RequireFromString("30.00")},
			},
			total:   "60.00",
			scale:   2,
			members: members(1, 2),
			want: map[int64]domain.Share{
				1: {UserID: 1, Amount: decimal.RequireFromString("30.00"), ShareCount: countPtr(3)},
				2: {UserID: 2, Amount: decimal.RequireFromString("30.00")},
			},
		},
		{
			name:    "ZeroScaleCurrency",
			raw:     []domain.ShareInput{{UserID: 1, Amount: decimal.RequireFromString("120")}},
			total:   "119.6",
			scale:   0,
			members: members(1),
			want: map[int64]domain.Share{
				1: {UserID: 1, Amount: decimal.RequireFromString("120")},
			},
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := AggregateShares(tc.raw, d(t, tc.total), tc.scale, tc.members)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				var mismatch *domain.ShareMismatchError
				if tc.wantGot != "" {
					require.ErrorAs(t, err, &mismatch)
					require.True(t, mismatch.Want.Equal(d(t, tc.wantWant)), "want sum %s", mismatch.Want)
					require.True(t, mismatch.Got.Equal(d(t, tc.wantGot)), "got sum %s", mismatch.Got)
				}

				return
			}

			require.NoError(t, err)

			if diff := cmp.Diff(tc.want, got, decimalComparer); diff != "" {
				t.Errorf("AggregateShares() returned unexpected diff: %v", diff)
			}
		})
	}
}

func TestAggregateSharesOrderIndependent(t *testing.T) {
	t.Parallel()

	forward := []domain.ShareInput{
		{UserID: 1, Amount: decimal.RequireFromString("10.50")},
		{UserID: 2, Amount: decimal.RequireFromString("20.25")},
		{UserID: 1, Amount: decimal.RequireFromString("9.25")},
	}

	backward := []domain.ShareInput{forward[2], forward[1], forward[0]}

	total := decimal.RequireFromString("40.00")

	got1, err := AggregateShares(forward, total, 2, members(1, 2))
	require.NoError(t, err)

	got2, err := AggregateShares(backward, total, 2, members(1, 2))
	require.NoError(t, err)

	if diff := cmp.Diff(got1, got2, decimalComparer); diff != "" {
		t.Errorf("aggregation depends on input order: %v", diff)
	}
}

func TestEqualShares(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		total   string
		scale   int32
		ids     []int64
		amounts map[int64]string
	}{
		{
			name:  "ExactSplit",
			total: "90.00", scale: 2, ids: []int64{3, 1, 2},
			amounts: map[int64]string{1: "30.00", 2: "30.00", 3: "30.00"},
		},
		{
			name:  "RemainderToLowestIDs",
			total: "100.00", scale: 2, ids: []int64{2, 1, 3},
			amounts: map[int64]string{1: "33.34", 2: "33.33", 3: "33.33"},
		},
		{
			name:  "ZeroScale",
			total: "100", scale: 0, ids: []int64{1, 2, 3},
			amounts: map[int64]string{1: "34", 2: "33", 3: "33"},
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := EqualShares(d(t, tc.total), tc.scale, tc.ids)
			require.Len(t, got, len(tc.ids))

			sum := decimal.Zero
			for _, share := range got {
				want := d(t, tc.amounts[share.UserID])
				require.True(t, share.Amount.Equal(want),
					"user %d got %s, want %s", share.UserID, share.Amount, want)
				sum = sum.Add(share.Amount)
			}

			require.True(t, sum.Equal(d(t, tc.total)), "shares sum to %s", sum)
		})
	}

	require.Nil(t, EqualShares(decimal.RequireFromString("10.00"), 2, nil))
}
