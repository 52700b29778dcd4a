package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/splitpal/splitpal/internal/domain"
	"github.com/splitpal/splitpal/pkg/currencypkg"
)

// SkippedTransaction reports one transaction the accumulator could not
// process. Skips are returned to the caller so they are never hidden
// from lifecycle decisions.
type SkippedTransaction struct {
	ID     int64
	Reason string
}

// Skip reasons for malformed historical records.
const (
	SkipExpenseWithoutPayer   = "expense without payer"
	SkipTransferWithoutSender = "transfer without sender"
	SkipUnknownKind           = "unknown transaction kind"
)

// ComputeBalances walks the group's transactions and produces, per
// currency, the net position of every member: positive means others owe
// them, negative means they owe others.
//
// Expenses accrue each share against the payer; a share held by the
// payer itself contributes nothing. Transfers accrue the full amount
// from the sender to EACH recipient independently; a sender listed
// among its own recipients is a no-op. Soft-deleted transactions are
// excluded. Currency codes are normalized upper-case and blank codes
// fall into the currencypkg.Unknown bucket so historical records stay
// visible.
//
// Only interactions between members of memberIDs contribute, so every
// returned currency map sums to exactly zero.
func ComputeBalances(txs []domain.Transaction, memberIDs []int64) (domain.NetByCurrency, []SkippedTransaction) {
	// debts[currency][debtor][creditor] accumulated at full precision.
	debts := make(map[string]map[int64]map[int64]decimal.Decimal)

	accrue := func(currency string, debtor, creditor int64, amount decimal.Decimal) {
		byDebtor, ok := debts[currency]
		if !ok {
			byDebtor = make(map[int64]map[int64]decimal.Decimal)
			debts[currency] = byDebtor
		}

		byCreditor, ok := byDebtor[debtor]
		if !ok {
			byCreditor = make(map[int64]decimal.Decimal)
			byDebtor[debtor] = byCreditor
		}

		byCreditor[creditor] = byCreditor[creditor].Add(amount)
	}

	var skipped []SkippedTransaction

	for _, tx := range txs {
		if tx.IsDeleted {
			continue
		}

		currency := currencypkg.Normalize(tx.Currency)

		switch tx.Kind {
		case domain.KindExpense:
			if tx.PaidBy == nil {
				skipped = append(skipped, SkippedTransaction{ID: tx.ID, Reason: SkipExpenseWithoutPayer})
				continue
			}

			payer := *tx.PaidBy
			for _, share := range tx.Shares {
				if share.UserID == payer {
					continue
				}

				accrue(currency, share.UserID, payer, share.Amount)
			}

		case domain.KindTransfer:
			if tx.TransferFrom == nil {
				skipped = append(skipped, SkippedTransaction{ID: tx.ID, Reason: SkipTransferWithoutSender})
				continue
			}

			sender := *tx.TransferFrom
			for _, recipient := range tx.TransferTo {
				if recipient == sender {
					continue
				}

				// The full amount goes to each recipient, not a split.
				accrue(currency, sender, recipient, tx.Amount)
			}

		default:
			skipped = append(skipped, SkippedTransaction{ID: tx.ID, Reason: SkipUnknownKind})
		}
	}

	nets := make(domain.NetByCurrency, len(debts))

	for currency, byDebtor := range debts {
		net := make(map[int64]decimal.Decimal, len(memberIDs))

		for _, m := range memberIDs {
			balance := decimal.Zero

			for _, other := range memberIDs {
				balance = balance.Add(byDebtor[other][m]).Sub(byDebtor[m][other])
			}

			net[m] = balance
		}

		nets[currency] = net
	}

	return nets, skipped
}

func sortInt64s(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
