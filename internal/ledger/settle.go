package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/splitpal/splitpal/internal/domain"
	"github.com/splitpal/splitpal/pkg/moneypkg"
)

type memberBalance struct {
	userID  int64
	balance decimal.Decimal
}

// PlanSettlements produces the greedy settle-up plan for one currency's
// net balance map: the largest creditor is repeatedly paired with the
// largest debtor until one side is exhausted.
//
// Members within one rounding unit of zero are left alone. Ties between
// equal balances break by member id ascending, so the plan is
// reproducible for the same input. Every emitted amount is strictly
// positive and rounded to the currency scale; the number of settlements
// never exceeds creditors + debtors - 1, and applying the whole plan
// leaves every member within one rounding unit of zero.
func PlanSettlements(net map[int64]decimal.Decimal, scale int32) []domain.Settlement {
	eps := moneypkg.Epsilon(scale)

	var creditors, debtors []memberBalance

	for userID, balance := range net {
		switch {
		case balance.GreaterThan(eps):
			creditors = append(creditors, memberBalance{userID, balance})
		case balance.LessThan(eps.Neg()):
			debtors = append(debtors, memberBalance{userID, balance})
		}
	}

	sort.Slice(creditors, func(i, j int) bool {
		if !creditors[i].balance.Equal(creditors[j].balance) {
			return creditors[i].balance.GreaterThan(creditors[j].balance)
		}

		return creditors[i].userID < creditors[j].userID
	})

	sort.Slice(debtors, func(i, j int) bool {
		if !debtors[i].balance.Equal(debtors[j].balance) {
			return debtors[i].balance.LessThan(debtors[j].balance)
		}

		return debtors[i].userID < debtors[j].userID
	})

	var settlements []domain.Settlement

	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debt := debtors[i].balance.Neg()
		credit := creditors[j].balance

		amount := moneypkg.Round(decimal.Min(debt, credit), scale)
		if amount.LessThan(eps) {
			if debt.LessThan(eps) {
				i++
			}

			if credit.LessThan(eps) {
				j++
			}

			continue
		}

		settlements = append(settlements, domain.Settlement{
			From:   debtors[i].userID,
			To:     creditors[j].userID,
			Amount: amount,
		})

		debtors[i].balance = debtors[i].balance.Add(amount)
		creditors[j].balance = creditors[j].balance.Sub(amount)

		if debtors[i].balance.Abs().LessThan(eps) {
			i++
		}

		if creditors[j].balance.Abs().LessThan(eps) {
			j++
		}
	}

	return settlements
}
