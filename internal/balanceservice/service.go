// Package balanceservice computes group balances and settlement plans.
package balanceservice

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/splitpal/splitpal/internal/domain"
	"github.com/splitpal/splitpal/internal/ledger"
)

// Transactions provides the transaction history feeding balance math.
//
//go:generate mockgen -source service.go -destination service_mock.go -package balanceservice
type Transactions interface {
	ListByGroup(ctx context.Context, groupID int64) ([]domain.Transaction, error)
}

// Groups provides group and membership lookups.
//
//go:generate mockgen -source service.go -destination service_mock.go -package balanceservice
type Groups interface {
	Get(ctx context.Context, groupID int64) (domain.Group, error)
	ActiveMemberIDs(ctx context.Context, groupID int64) ([]int64, error)
}

// Scales resolves currency codes to rounding scales.
//
//go:generate mockgen -source service.go -destination service_mock.go -package balanceservice
type Scales interface {
	ScaleOf(ctx context.Context, code string) (int32, error)
}

// Service facilitates balance service layer logic.
type Service struct {
	transactions Transactions
	groups       Groups
	scales       Scales
}

// New returns balance service struct to manage balance computation.
func New(tr Transactions, gr Groups, sc Scales) *Service {
	return &Service{
		transactions: tr,
		groups:       gr,
		scales:       sc,
	}
}

// Nets returns the per-currency net position of every active member.
// Malformed transactions are skipped, logged, and do not fail the
// computation.
func (s *Service) Nets(ctx context.Context, groupID int64) (domain.NetByCurrency, error) {
	nets, _, err := s.netsWithSkipped(ctx, groupID)
	return nets, err
}

// ScaleOf resolves the rounding scale for a currency code.
func (s *Service) ScaleOf(ctx context.Context, code string) (int32, error) {
	return s.scales.ScaleOf(ctx, code)
}

// Balances returns the group's net positions for an active member,
// along with the number of malformed transactions skipped.
func (s *Service) Balances(ctx context.Context, groupID, userID int64) (domain.NetByCurrency, int, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, 0, err
	}

	nets, skipped, err := s.netsWithSkipped(ctx, groupID)
	if err != nil {
		return nil, 0, err
	}

	return nets, len(skipped), nil
}

// SettleUp returns a minimal set of transfers per currency that would
// bring every member's net position within one smallest currency unit
// of zero.
func (s *Service) SettleUp(ctx context.Context, groupID, userID int64) (map[string][]domain.Settlement, int, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, 0, err
	}

	nets, skipped, err := s.netsWithSkipped(ctx, groupID)
	if err != nil {
		return nil, 0, err
	}

	plan := make(map[string][]domain.Settlement, len(nets))

	for _, code := range sortedCurrencies(nets) {
		scale, err := s.scales.ScaleOf(ctx, code)
		if err != nil {
			return nil, 0, err
		}

		settlements := ledger.PlanSettlements(nets[code], scale)
		if len(settlements) > 0 {
			plan[code] = settlements
		}
	}

	return plan, len(skipped), nil
}

// HasDebts reports whether any member of the group still owes another
// in any currency.
func (s *Service) HasDebts(ctx context.Context, groupID, userID int64) (bool, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return false, err
	}

	nets, _, err := s.netsWithSkipped(ctx, groupID)
	if err != nil {
		return false, err
	}

	return ledger.HasDebts(nets, func(code string) (int32, error) {
		return s.scales.ScaleOf(ctx, code)
	})
}

func (s *Service) netsWithSkipped(ctx context.Context, groupID int64) (domain.NetByCurrency, []ledger.SkippedTransaction, error) {
	l := zerolog.Ctx(ctx)

	memberIDs, err := s.groups.ActiveMemberIDs(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	txs, err := s.transactions.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	nets, skipped := ledger.ComputeBalances(txs, memberIDs)

	for _, skip := range skipped {
		l.Warn().
			Int64("transaction_id", skip.ID).
			Str("reason", skip.Reason).
			Int64("group_id", groupID).
			Msg("transaction excluded from balance math")
	}

	return nets, skipped, nil
}

func (s *Service) requireMember(ctx context.Context, groupID, userID int64) error {
	if _, err := s.groups.Get(ctx, groupID); err != nil {
		return err
	}

	memberIDs, err := s.groups.ActiveMemberIDs(ctx, groupID)
	if err != nil {
		return err
	}

	for _, id := range memberIDs {
		if id == userID {
			return nil
		}
	}

	return domain.ErrNotGroupMember
}

func sortedCurrencies(nets domain.NetByCurrency) []string {
	codes := make([]string, 0, len(nets))
	for code := range nets {
		codes = append(codes, code)
	}

	sort.Strings(codes)

	return codes
}
