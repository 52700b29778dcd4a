package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInvalidKind indicates an unrecognized transaction kind.
	ErrInvalidKind = errors.New("invalid transaction kind")
	// ErrInvalidSplitPolicy indicates an unrecognized expense split policy.
	ErrInvalidSplitPolicy = errors.New("invalid split policy")
	// ErrInvalidMember indicates a share, payer, sender, or recipient
	// referencing a user outside the group's active member set.
	ErrInvalidMember = errors.New("user is not an active group member")
	// ErrUnknownCurrency indicates a currency with no known rounding scale.
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrNegativeAmount indicates a zero or negative amount.
	ErrNegativeAmount = errors.New("amount must be positive")
	// ErrNoRecipients indicates a transfer without recipients.
	ErrNoRecipients = errors.New("transfer requires at least one recipient")
	// ErrNoShares indicates an expense with a split policy that requires explicit shares but none supplied.
	ErrNoShares = errors.New("expense requires shares")
)

// ShareMismatchError indicates that aggregated shares do not sum to the
// transaction total. It carries both sums for field-level messaging and
// is never silently corrected.
type ShareMismatchError struct {
	Want decimal.Decimal
	Got  decimal.Decimal
}

func (e *ShareMismatchError) Error() string {
	return fmt.Sprintf("shares sum to %s, expected %s", e.Got, e.Want)
}

// ErrShareMismatch is the sentinel target for errors.Is checks against
// ShareMismatchError values.
var ErrShareMismatch = errors.New("shares do not sum to transaction total")

// Is reports that a ShareMismatchError matches ErrShareMismatch.
func (e *ShareMismatchError) Is(target error) bool {
	return target == ErrShareMismatch
}

// Transaction kinds.
const (
	KindExpense  = "expense"
	KindTransfer = "transfer"
)

// Split policies for expenses.
const (
	SplitEqual  = "equal"
	SplitShares = "shares"
	SplitCustom = "custom"
)

// Share identifies one group member and the amount that member owes
// toward an expense. ShareCount is populated only for split policy
// "shares".
type Share struct {
	UserID     int64           `json:"user_id"`
	Amount     decimal.Decimal `json:"amount"`
	ShareCount *int32          `json:"share_count,omitempty"`
}

// ShareInput is one raw share line of a transaction submission. Multiple
// lines for the same user are aggregated before persistence.
type ShareInput struct {
	UserID     int64
	Amount     decimal.Decimal
	ShareCount *int32
}

// Transaction is an expense or a transfer in a group. Amounts are exact
// decimals; soft-deleted records are excluded from all balance math.
type Transaction struct {
	ID           int64           `json:"id"`
	GroupID      int64           `json:"group_id"`
	CreatedBy    int64           `json:"created_by"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Date         time.Time       `json:"date"`
	Comment      string          `json:"comment,omitempty"`
	CategoryID   *int64          `json:"category_id,omitempty"`
	PaidBy       *int64          `json:"paid_by,omitempty"`
	SplitPolicy  string          `json:"split_policy,omitempty"`
	Shares       []Share         `json:"shares,omitempty"`
	TransferFrom *int64          `json:"transfer_from,omitempty"`
	TransferTo   []int64         `json:"transfer_to,omitempty"`
	IsDeleted    bool            `json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CreateTransactionParams is the input data to persist a transaction
// with its already-aggregated shares.
type CreateTransactionParams struct {
	GroupID      int64
	CreatedBy    int64
	Kind         string
	Amount       decimal.Decimal
	Currency     string
	Date         time.Time
	Comment      string
	CategoryID   *int64
	PaidBy       *int64
	SplitPolicy  string
	Shares       []Share
	TransferFrom *int64
	TransferTo   []int64
}
