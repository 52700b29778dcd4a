// Package ledger implements the balance computation and debt-settlement
// engine: share aggregation, per-currency net balances, and the greedy
// settle-up planner. The package is pure; it never touches storage and
// operates on caller-supplied snapshots only.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/splitpal/splitpal/internal/domain"
	"github.com/splitpal/splitpal/pkg/moneypkg"
)

// AggregateShares merges raw share lines into one logical share per
// user and validates that the shares cover the transaction total.
//
// Lines for the same user are summed at full precision; rounding to the
// currency scale is applied once per user, after summation. Share
// counts sum as well when present on any line, else stay absent. The
// result is an unordered map; output is identical regardless of input
// order.
//
// Returns domain.ErrInvalidMember when a line references a user outside
// members, and a domain.ShareMismatchError when the rounded aggregated
// amounts do not exactly equal expectedTotal at the currency scale.
func AggregateShares(
	raw []domain.ShareInput,
	expectedTotal decimal.Decimal,
	scale int32,
	members map[int64]struct{},
) (map[int64]domain.Share, error) {
	sums := make(map[int64]decimal.Decimal)
	counts := make(map[int64]int32)
	hasCount := make(map[int64]bool)

	for _, line := range raw {
		if _, ok := members[line.UserID]; !ok {
			return nil, fmt.Errorf("share user %d: %w", line.UserID, domain.ErrInvalidMember)
		}

		sums[line.UserID] = sums[line.UserID].Add(line.Amount)

		if line.ShareCount != nil {
			counts[line.UserID] += *line.ShareCount
			hasCount[line.UserID] = true
		}
	}

	out := make(map[int64]domain.Share, len(sums))
	total := decimal.Zero

	for userID, sum := range sums {
		amount := moneypkg.Round(sum, scale)
		total = total.Add(amount)

		share := domain.Share{UserID: userID, Amount: amount}
		if hasCount[userID] {
			c := counts[userID]
			share.ShareCount = &c
		}

		out[userID] = share
	}

	want := moneypkg.Round(expectedTotal, scale)
	if !total.Equal(want) {
		return nil, &domain.ShareMismatchError{Want: want, Got: total}
	}

	return out, nil
}

// EqualShares materializes an equal split of total among the given
// members as explicit share lines. The rounding difference is
// distributed one smallest unit at a time to the lowest member ids, so
// the lines always sum to total exactly.
func EqualShares(total decimal.Decimal, scale int32, memberIDs []int64) []domain.ShareInput {
	if len(memberIDs) == 0 {
		return nil
	}

	ids := make([]int64, len(memberIDs))
	copy(ids, memberIDs)
	sortInt64s(ids)

	n := int64(len(ids))
	units := moneypkg.Round(total, scale).Shift(scale).IntPart()
	base := units / n
	remainder := units % n

	out := make([]domain.ShareInput, 0, len(ids))

	for i, id := range ids {
		u := base
		if int64(i) < remainder {
			u++
		}

		out = append(out, domain.ShareInput{
			UserID: id,
			Amount: decimal.New(u, -scale),
		})
	}

	return out
}
