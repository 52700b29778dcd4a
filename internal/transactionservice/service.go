// Package transactionservice manages business logic layer of transactions.
package transactionservice

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/splitpal/splitpal/internal/domain"
	"github.com/splitpal/splitpal/internal/eventbus"
	"github.com/splitpal/splitpal/internal/ledger"
	"github.com/splitpal/splitpal/pkg/currencypkg"
	"github.com/splitpal/splitpal/pkg/moneypkg"
)

// Repo provides data access layer interface needed by transaction service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error)
	Get(ctx context.Context, id int64) (domain.Transaction, error)
	ListByGroup(ctx context.Context, groupID int64) ([]domain.Transaction, error)
	SoftDelete(ctx context.Context, id int64) error
}

// Groups provides the group lookups needed to validate writes.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type Groups interface {
	Get(ctx context.Context, groupID int64) (domain.Group, error)
	ActiveMemberIDs(ctx context.Context, groupID int64) ([]int64, error)
}

// Scales resolves currency codes to rounding scales.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type Scales interface {
	ScaleOf(ctx context.Context, code string) (int32, error)
}

// Service facilitates transaction service layer logic.
type Service struct {
	repo      Repo
	groups    Groups
	scales    Scales
	publisher eventbus.Publisher
}

// New returns transaction service struct to manage transaction business logic.
func New(tr Repo, gr Groups, sc Scales, pub eventbus.Publisher) *Service {
	return &Service{
		repo:      tr,
		groups:    gr,
		scales:    sc,
		publisher: pub,
	}
}

// CreateExpenseParams is the input to record an expense.
type CreateExpenseParams struct {
	GroupID     int64
	CreatedBy   int64
	Amount      decimal.Decimal
	Currency    string
	Date        time.Time
	Comment     string
	CategoryID  *int64
	PaidBy      *int64
	SplitPolicy string
	Shares      []domain.ShareInput
}

// CreateTransferParams is the input to record a repayment transfer.
type CreateTransferParams struct {
	GroupID   int64
	CreatedBy int64
	Amount    decimal.Decimal
	Currency  string
	Date      time.Time
	Comment   string
	From      *int64
	To        []int64
}

// CreateExpense validates, splits, aggregates, and persists an expense.
// Equal splits without explicit shares are materialized into explicit
// per-member shares before aggregation.
func (s *Service) CreateExpense(ctx context.Context, arg CreateExpenseParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	var result domain.Transaction

	group, memberIDs, err := s.writableGroup(ctx, arg.GroupID, arg.CreatedBy)
	if err != nil {
		return result, err
	}

	if !arg.Amount.IsPositive() {
		return result, domain.ErrNegativeAmount
	}

	currency, scale, err := s.resolveCurrency(ctx, arg.Currency, group)
	if err != nil {
		return result, err
	}

	amount := moneypkg.Round(arg.Amount, scale)

	paidBy := arg.CreatedBy
	if arg.PaidBy != nil {
		paidBy = *arg.PaidBy
	}

	memberSet := toSet(memberIDs)
	if _, ok := memberSet[paidBy]; !ok {
		return result, domain.ErrInvalidMember
	}

	raw, err := s.materializeShares(arg, amount, scale, memberIDs)
	if err != nil {
		return result, err
	}

	aggregated, err := ledger.AggregateShares(raw, amount, scale, memberSet)
	if err != nil {
		return result, err
	}

	shares := make([]domain.Share, 0, len(aggregated))
	for _, share := range aggregated {
		shares = append(shares, share)
	}

	sort.Slice(shares, func(i, j int) bool { return shares[i].UserID < shares[j].UserID })

	result, err = s.repo.Create(ctx, domain.CreateTransactionParams{
		GroupID:     arg.GroupID,
		CreatedBy:   arg.CreatedBy,
		Kind:        domain.KindExpense,
		Amount:      amount,
		Currency:    currency,
		Date:        dateOrNow(arg.Date),
		Comment:     arg.Comment,
		CategoryID:  arg.CategoryID,
		PaidBy:      &paidBy,
		SplitPolicy: arg.SplitPolicy,
		Shares:      shares,
	})
	if err != nil {
		return result, err
	}

	if err := s.publisher.Publish(ctx, eventbus.NewTransactionCreated(result.GroupID, result.ID)); err != nil {
		l.Warn().Err(err).Int64("transaction_id", result.ID).Msg("publish failed")
	}

	return result, nil
}

// CreateTransfer validates and persists a repayment transfer. The full
// amount goes to each recipient.
func (s *Service) CreateTransfer(ctx context.Context, arg CreateTransferParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	var result domain.Transaction

	group, memberIDs, err := s.writableGroup(ctx, arg.GroupID, arg.CreatedBy)
	if err != nil {
		return result, err
	}

	if !arg.Amount.IsPositive() {
		return result, domain.ErrNegativeAmount
	}

	if len(arg.To) == 0 {
		return result, domain.ErrNoRecipients
	}

	currency, scale, err := s.resolveCurrency(ctx, arg.Currency, group)
	if err != nil {
		return result, err
	}

	from := arg.CreatedBy
	if arg.From != nil {
		from = *arg.From
	}

	memberSet := toSet(memberIDs)
	if _, ok := memberSet[from]; !ok {
		return result, domain.ErrInvalidMember
	}

	for _, to := range arg.To {
		if _, ok := memberSet[to]; !ok {
			return result, domain.ErrInvalidMember
		}
	}

	result, err = s.repo.Create(ctx, domain.CreateTransactionParams{
		GroupID:      arg.GroupID,
		CreatedBy:    arg.CreatedBy,
		Kind:         domain.KindTransfer,
		Amount:       moneypkg.Round(arg.Amount, scale),
		Currency:     currency,
		Date:         dateOrNow(arg.Date),
		Comment:      arg.Comment,
		TransferFrom: &from,
		TransferTo:   arg.To,
	})
	if err != nil {
		return result, err
	}

	if err := s.publisher.Publish(ctx, eventbus.NewTransactionCreated(result.GroupID, result.ID)); err != nil {
		l.Warn().Err(err).Int64("transaction_id", result.ID).Msg("publish failed")
	}

	return result, nil
}

// Get returns the transaction if the user is a member of its group.
func (s *Service) Get(ctx context.Context, id, userID int64) (domain.Transaction, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return t, err
	}

	if err := s.requireMember(ctx, t.GroupID, userID); err != nil {
		return domain.Transaction{}, err
	}

	return t, nil
}

// ListByGroup returns the group's live transactions for an active member.
func (s *Service) ListByGroup(ctx context.Context, groupID, userID int64) ([]domain.Transaction, error) {
	if _, err := s.groups.Get(ctx, groupID); err != nil {
		return nil, err
	}

	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	return s.repo.ListByGroup(ctx, groupID)
}

// Delete soft-deletes the transaction. Only its creator or the group
// owner may delete, and never in an archived group.
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	l := zerolog.Ctx(ctx)

	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	group, err := s.groups.Get(ctx, t.GroupID)
	if err != nil {
		return err
	}

	if group.Status == domain.GroupStatusArchived {
		return domain.ErrGroupArchived
	}

	if userID != t.CreatedBy && userID != group.OwnerID {
		return domain.ErrNotGroupOwner
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, eventbus.NewTransactionDeleted(t.GroupID, t.ID)); err != nil {
		l.Warn().Err(err).Int64("transaction_id", t.ID).Msg("publish failed")
	}

	return nil
}

// materializeShares produces the raw share lines handed to the
// aggregator according to the split policy.
func (s *Service) materializeShares(arg CreateExpenseParams, amount decimal.Decimal, scale int32, memberIDs []int64) ([]domain.ShareInput, error) {
	switch arg.SplitPolicy {
	case domain.SplitEqual, "":
		if len(arg.Shares) > 0 {
			return arg.Shares, nil
		}

		return ledger.EqualShares(amount, scale, memberIDs), nil

	case domain.SplitShares:
		if len(arg.Shares) == 0 {
			return nil, domain.ErrNoShares
		}

		return weightedShares(amount, scale, arg.Shares)

	case domain.SplitCustom:
		if len(arg.Shares) == 0 {
			return nil, domain.ErrNoShares
		}

		return arg.Shares, nil
	}

	return nil, domain.ErrInvalidSplitPolicy
}

// weightedShares splits the total proportionally to each line's share
// count. Leftover smallest units go to the lowest user ids so the
// result is deterministic and sums exactly to the total.
func weightedShares(total decimal.Decimal, scale int32, shares []domain.ShareInput) ([]domain.ShareInput, error) {
	var totalCount int64

	for _, share := range shares {
		if share.ShareCount == nil || *share.ShareCount <= 0 {
			return nil, domain.ErrNoShares
		}

		totalCount += int64(*share.ShareCount)
	}

	sorted := make([]domain.ShareInput, len(shares))
	copy(sorted, shares)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].UserID < sorted[j].UserID })

	units := total.Shift(scale).IntPart()
	assigned := int64(0)

	out := make([]domain.ShareInput, len(sorted))
	for i, share := range sorted {
		q := units * int64(*share.ShareCount) / totalCount
		assigned += q
		out[i] = domain.ShareInput{
			UserID:     share.UserID,
			Amount:     decimal.New(q, -scale),
			ShareCount: share.ShareCount,
		}
	}

	for i := 0; assigned < units; i++ {
		out[i%len(out)].Amount = out[i%len(out)].Amount.Add(decimal.New(1, -scale))
		assigned++
	}

	return out, nil
}

func (s *Service) writableGroup(ctx context.Context, groupID, userID int64) (domain.Group, []int64, error) {
	group, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return group, nil, err
	}

	if group.Status == domain.GroupStatusArchived {
		return group, nil, domain.ErrGroupArchived
	}

	memberIDs, err := s.groups.ActiveMemberIDs(ctx, groupID)
	if err != nil {
		return group, nil, err
	}

	if _, ok := toSet(memberIDs)[userID]; !ok {
		return group, nil, domain.ErrNotGroupMember
	}

	return group, memberIDs, nil
}

func (s *Service) resolveCurrency(ctx context.Context, code string, group domain.Group) (string, int32, error) {
	if code == "" {
		code = group.DefaultCurrency
	}

	code = currencypkg.Normalize(code)

	scale, err := s.scales.ScaleOf(ctx, code)
	if err != nil {
		return "", 0, err
	}

	return code, scale, nil
}

func (s *Service) requireMember(ctx context.Context, groupID, userID int64) error {
	memberIDs, err := s.groups.ActiveMemberIDs(ctx, groupID)
	if err != nil {
		return err
	}

	if _, ok := toSet(memberIDs)[userID]; !ok {
		return domain.ErrNotGroupMember
	}

	return nil
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set
}

func dateOrNow(d time.Time) time.Time {
	if d.IsZero() {
		return time.Now()
	}

	return d
}
