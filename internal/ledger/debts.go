package ledger

import (
	"fmt"
	"sort"

	"github.com/splitpal/splitpal/internal/domain"
	"github.com/splitpal/splitpal/pkg/moneypkg"
)

// ScaleFunc resolves the rounding scale (decimal places) for a currency
// code. Implementations return domain.ErrUnknownCurrency for codes
// without reference data.
type ScaleFunc func(code string) (int32, error)

// HasDebts reports whether any member of any currency holds a balance
// beyond half of that currency's smallest unit, the same tolerance the
// member-removal gate uses, so a one-cent imbalance still counts.
//
// A scale lookup failure propagates: lifecycle decisions (archive,
// delete) must never be made on the basis of a suppressed error.
func HasDebts(nets domain.NetByCurrency, scaleOf ScaleFunc) (bool, error) {
	codes := make([]string, 0, len(nets))
	for code := range nets {
		codes = append(codes, code)
	}

	sort.Strings(codes)

	for _, code := range codes {
		scale, err := scaleOf(code)
		if err != nil {
			return false, fmt.Errorf("currency %s: %w", code, err)
		}

		eps := moneypkg.HalfEpsilon(scale)

		for _, balance := range nets[code] {
			if balance.Abs().GreaterThan(eps) {
				return true, nil
			}
		}
	}

	return false, nil
}

// MemberHasBalance reports whether one member holds a balance beyond
// half a smallest unit in any currency. Used to gate leaving a group or
// removing a member.
func MemberHasBalance(nets domain.NetByCurrency, userID int64, scaleOf ScaleFunc) (bool, error) {
	codes := make([]string, 0, len(nets))
	for code := range nets {
		codes = append(codes, code)
	}

	sort.Strings(codes)

	for _, code := range codes {
		scale, err := scaleOf(code)
		if err != nil {
			return false, fmt.Errorf("currency %s: %w", code, err)
		}

		if nets[code][userID].Abs().GreaterThan(moneypkg.HalfEpsilon(scale)) {
			return true, nil
		}
	}

	return false, nil
}
