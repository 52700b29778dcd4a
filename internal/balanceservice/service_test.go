package balanceservice

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/splitpal/splitpal/internal/domain"
)

const (
	testGroupID = int64(1)
	alice       = int64(1)
	bob         = int64(2)
	carol       = int64(3)
)

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	v, err := decimal.NewFromString(s)
	require.NoError(t, err)

	return v
}

func idPtr(v int64) *int64 { return &v }

func stubGroup(groups *MockGroups, times int) {
	groups.EXPECT().
		Get(gomock.Any(), gomock.Eq(testGroupID)).
		Times(times).
		Return(domain.Group{ID: testGroupID, OwnerID: alice, Status: domain.GroupStatusActive}, nil)
}

func stubMembers(groups *MockGroups, times int) {
	groups.EXPECT().
		ActiveMemberIDs(gomock.Any(), gomock.Eq(testGroupID)).
		Times(times).
		Return([]int64{alice, bob, carol}, nil)
}

// dinner: alice paid 90 USD split three ways.
func dinner(t *testing.T) domain.Transaction {
	return domain.Transaction{
		ID:       1,
		GroupID:  testGroupID,
		Kind:     domain.KindExpense,
		Amount:   d(t, "90.00"),
		Currency: "USD",
		PaidBy:   idPtr(alice),
		Shares: []domain.Share{
			{UserID: alice, Amount: d(t, "30.00")},
			{UserID: bob, Amount: d(t, "30.00")},
			{UserID: carol, Amount: d(t, "30.00")},
		},
	}
}

func TestBalances(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	transactions := NewMockTransactions(ctrl)
	groups := NewMockGroups(ctrl)
	scales := NewMockScales(ctrl)

	stubGroup(groups, 1)
	stubMembers(groups, 2)
	transactions.EXPECT().
		ListByGroup(gomock.Any(), gomock.Eq(testGroupID)).
		Return([]domain.Transaction{
			dinner(t),
			// Malformed record: expense with no payer must be skipped.
			{ID: 2, GroupID: testGroupID, Kind: domain.KindExpense, Amount: d(t, "5.00"), Currency: "USD"},
		}, nil)

	service := New(transactions, groups, scales)

	nets, skipped, err := service.Balances(context.Background(), testGroupID, bob)
	require.NoError(t, err)
	require.Equal(t, 1, skipped)

	usd := nets["USD"]
	require.True(t, usd[alice].Equal(d(t, "60.00")), usd[alice].String())
	require.True(t, usd[bob].Equal(d(t, "-30.00")), usd[bob].String())
	require.True(t, usd[carol].Equal(d(t, "-30.00")), usd[carol].String())
}

func TestBalancesNotMember(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	transactions := NewMockTransactions(ctrl)
	groups := NewMockGroups(ctrl)
	scales := NewMockScales(ctrl)

	stubGroup(groups, 1)
	stubMembers(groups, 1)

	service := New(transactions, groups, scales)

	_, _, err := service.Balances(context.Background(), testGroupID, int64(99))
	require.ErrorIs(t, err, domain.ErrNotGroupMember)
}

func TestSettleUp(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	transactions := NewMockTransactions(ctrl)
	groups := NewMockGroups(ctrl)
	scales := NewMockScales(ctrl)

	stubGroup(groups, 1)
	stubMembers(groups, 2)
	transactions.EXPECT().
		ListByGroup(gomock.Any(), gomock.Eq(testGroupID)).
		Return([]domain.Transaction{dinner(t)}, nil)
	scales.EXPECT().ScaleOf(gomock.Any(), gomock.Eq("USD")).Return(int32(2), nil)

	service := New(transactions, groups, scales)

	plan, skipped, err := service.SettleUp(context.Background(), testGroupID, alice)
	require.NoError(t, err)
	require.Zero(t, skipped)
	require.Len(t, plan, 1)

	usd := plan["USD"]
	require.Len(t, usd, 2)

	for _, settlement := range usd {
		require.Equal(t, alice, settlement.To)
		require.True(t, settlement.Amount.Equal(d(t, "30.00")), settlement.Amount.String())
	}
}

func TestHasDebts(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		txs  func(t *testing.T) []domain.Transaction
		want bool
	}{
		{
			name: "OutstandingDebt",
			txs:  func(t *testing.T) []domain.Transaction { return []domain.Transaction{dinner(t)} },
			want: true,
		},
		{
			name: "FullySettled",
			txs: func(t *testing.T) []domain.Transaction {
				return []domain.Transaction{
					dinner(t),
					{
						ID: 2, GroupID: testGroupID, Kind: domain.KindTransfer,
						Amount: d(t, "30.00"), Currency: "USD",
						TransferFrom: idPtr(bob), TransferTo: []int64{alice},
					},
					{
						ID: 3, GroupID: testGroupID, Kind: domain.KindTransfer,
						Amount: d(t, "30.00"), Currency: "USD",
						TransferFrom: idPtr(carol), TransferTo: []int64{alice},
					},
				}
			},
			want: false,
		},
		{
			name: "NoTransactions",
			txs:  func(t *testing.T) []domain.Transaction { return nil },
			want: false,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			transactions := NewMockTransactions(ctrl)
			groups := NewMockGroups(ctrl)
			scales := NewMockScales(ctrl)

			stubGroup(groups, 1)
			stubMembers(groups, 2)
			transactions.EXPECT().
				ListByGroup(gomock.Any(), gomock.Eq(testGroupID)).
				Return(tc.txs(t), nil)
			scales.EXPECT().
				ScaleOf(gomock.Any(), gomock.Eq("USD")).
				AnyTimes().
				Return(int32(2), nil)

			service := New(transactions, groups, scales)

			got, err := service.HasDebts(context.Background(), testGroupID, alice)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
