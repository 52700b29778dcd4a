package ledger

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/splitpal/splitpal/internal/domain"
	"github.com/splitpal/splitpal/pkg/currencypkg"
	"github.com/splitpal/splitpal/pkg/randompkg"
)

func idPtr(id int64) *int64 { return &id }

func expense(id, payer int64, currency, amount string, shares map[int64]string) domain.Transaction {
	tx := domain.Transaction{
		ID:       id,
		GroupID:  1,
		Kind:     domain.KindExpense,
		Amount:   decimal.RequireFromString(amount),
		Currency: currency,
		Date:     time.Now(),
		PaidBy:   idPtr(payer),
	}

	for userID, share := range shares {
		tx.Shares = append(tx.Shares, domain.Share{
			UserID: userID,
			Amount: decimal.RequireFromString(share),
		})
	}

	return tx
}

func transfer(id, sender int64, currency, amount string, recipients ...int64) domain.Transaction {
	return domain.Transaction{
		ID:           id,
		GroupID:      1,
		Kind:         domain.KindTransfer,
		Amount:       decimal.RequireFromString(amount),
		Currency:     currency,
		Date:         time.Now(),
		TransferFrom: idPtr(sender),
		TransferTo:   recipients,
	}
}

func wantNets(t *testing.T, want map[string]map[int64]string, got domain.NetByCurrency) {
	t.Helper()

	expected := make(domain.NetByCurrency, len(want))
	for code, perUser := range want {
		expected[code] = make(map[int64]decimal.Decimal, len(perUser))
		for userID, amount := range perUser {
			expected[code][userID] = d(t, amount)
		}
	}

	if diff := cmp.Diff(expected, got, decimalComparer); diff != "" {
		t.Errorf("ComputeBalances() returned unexpected diff: %v", diff)
	}
}

func TestComputeBalancesExpense(t *testing.T) {
	t.Parallel()

	// Payer A fronts 90.00 split three ways; A's own share is a no-op.
	txs := []domain.Transaction{
		expense(1, 1, "USD", "90.00", map[int64]string{1: "30.00", 2: "30.00", 3: "30.00"}),
	}

	nets, skipped := ComputeBalances(txs, []int64{1, 2, 3})
	require.Empty(t, skipped)

	wantNets(t, map[string]map[int64]string{
		"USD": {1: "60.00", 2: "-30.00", 3: "-30.00"},
	}, nets)
}

func TestComputeBalancesTransfer(t *testing.T) {
	t.Parallel()

	// The full amount is attributed once per recipient, not split.
	txs := []domain.Transaction{
		transfer(1, 1, "USD", "20.00", 2, 3),
	}

	nets, skipped := ComputeBalances(txs, []int64{1, 2, 3})
	require.Empty(t, skipped)

	wantNets(t, map[string]map[int64]string{
		"USD": {1: "-40.00", 2: "20.00", 3: "20.00"},
	}, nets)
}

func TestComputeBalancesMultiCurrencyIsolation(t *testing.T) {
	t.Parallel()

	txs := []domain.Transaction{
		expense(1, 1, "USD", "100.00", map[int64]string{1: "50.00", 2: "50.00"}),
		transfer(2, 1, "EUR", "50.00", 2),
	}

	nets, skipped := ComputeBalances(txs, []int64{1, 2})
	require.Empty(t, skipped)

	wantNets(t, map[string]map[int64]string{
		"USD": {1: "50.00", 2: "-50.00"},
		"EUR": {1: "-50.00", 2: "50.00"},
	}, nets)
}

func TestComputeBalancesNetsBackAndForth(t *testing.T) {
	t.Parallel()

	txs := []domain.Transaction{
		expense(1, 1, "USD", "40.00", map[int64]string{1: "20.00", 2: "20.00"}),
		expense(2, 2, "USD", "30.00", map[int64]string{1: "15.00", 2: "15.00"}),
	}

	nets, skipped := ComputeBalances(txs, []int64{1, 2})
	require.Empty(t, skipped)

	wantNets(t, map[string]map[int64]string{
		"USD": {1: "5.00", 2: "-5.00"},
	}, nets)
}

func TestComputeBalancesEdgeCases(t *testing.T) {
	t.Parallel()

	t.Run("SoftDeletedExcluded", func(t *testing.T) {
		t.Parallel()

		deleted := expense(1, 1, "USD", "90.00", map[int64]string{2: "90.00"})
		deleted.IsDeleted = true

		nets, skipped := ComputeBalances([]domain.Transaction{deleted}, []int64{1, 2})
		require.Empty(t, skipped)
		require.Empty(t, nets)
	})

	t.Run("SenderAmongRecipients", func(t *testing.T) {
		t.Parallel()

		nets, skipped := ComputeBalances(
			[]domain.Transaction{transfer(1, 1, "USD", "20.00", 1, 2)},
			[]int64{1, 2},
		)
		require.Empty(t, skipped)

		wantNets(t, map[string]map[int64]string{
			"USD": {1: "-20.00", 2: "20.00"},
		}, nets)
	})

	t.Run("CurrencyCaseNormalized", func(t *testing.T) {
		t.Parallel()

		nets, skipped := ComputeBalances(
			[]domain.Transaction{
				transfer(1, 1, "usd", "10.00", 2),
				transfer(2, 1, "USD", "10.00", 2),
			},
			[]int64{1, 2},
		)
		require.Empty(t, skipped)

		wantNets(t, map[string]map[int64]string{
			"USD": {1: "-20.00", 2: "20.00"},
		}, nets)
	})

	t.Run("BlankCurrencyBucketsUnderUnknown", func(t *testing.T) {
		t.Parallel()

		nets, skipped := ComputeBalances(
			[]domain.Transaction{transfer(1, 1, "", "10.00", 2)},
			[]int64{1, 2},
		)
		require.Empty(t, skipped)
		require.Contains(t, nets, currencypkg.Unknown)
	})

	t.Run("MalformedRecordsSkippedAndReported", func(t *testing.T) {
		t.Parallel()

		noPayer := expense(7, 1, "USD", "10.00", map[int64]string{2: "10.00"})
		noPayer.PaidBy = nil

		noSender := transfer(8, 1, "USD", "10.00", 2)
		noSender.TransferFrom = nil

		unknownKind := transfer(9, 1, "USD", "10.00", 2)
		unknownKind.Kind = "refund"

		nets, skipped := ComputeBalances(
			[]domain.Transaction{noPayer, noSender, unknownKind},
			[]int64{1, 2},
		)
		require.Empty(t, nets)
		require.Equal(t, []SkippedTransaction{
			{ID: 7, Reason: SkipExpenseWithoutPayer},
			{ID: 8, Reason: SkipTransferWithoutSender},
			{ID: 9, Reason: SkipUnknownKind},
		}, skipped)
	})
}

// Conservation: every currency's net map sums to exactly zero, whatever
// the transaction mix.
func TestComputeBalancesConservation(t *testing.T) {
	t.Parallel()

	memberIDs := []int64{1, 2, 3, 4, 5}

	var txs []domain.Transaction

	for i := 0; i < 50; i++ {
		currency := randompkg.Currency()
		payer := memberIDs[randompkg.Intn(len(memberIDs))]

		if randompkg.Intn(2) == 0 {
			total := decimal.Zero
			shares := make(map[int64]string, len(memberIDs))

			for _, m := range memberIDs {
				amount := randompkg.Amount()
				total = total.Add(amount)
				shares[m] = amount.String()
			}

			txs = append(txs, expense(int64(i), payer, currency, total.String(), shares))

			continue
		}

		recipient := memberIDs[randompkg.Intn(len(memberIDs))]
		txs = append(txs, transfer(int64(i), payer, currency, randompkg.Amount().String(), recipient))
	}

	nets, skipped := ComputeBalances(txs, memberIDs)
	require.Empty(t, skipped)
	require.NotEmpty(t, nets)

	for currency, perUser := range nets {
		sum := decimal.Zero
		for _, balance := range perUser {
			sum = sum.Add(balance)
		}

		require.True(t, sum.IsZero(), "currency %s nets sum to %s", currency, sum)
	}
}
