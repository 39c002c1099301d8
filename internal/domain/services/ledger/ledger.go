// Package ledger maintains the cash balance and its append-only history.
// Every mutation of a user's cash balance goes through Post so that the
// sum of all entry amounts always reproduces currentBalance - initialBalance.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
)

// Posting is the result of applying one signed delta to a balance
type Posting struct {
	NewBalance decimal.Decimal
	Entry      entities.BalanceEntry
}

// Post applies a signed delta to the current balance and builds the
// matching history entry with BalanceAfter set to the new balance.
func Post(userID uuid.UUID, balance, delta decimal.Decimal, entryType entities.BalanceEntryType, description string, reference *uuid.UUID, now time.Time) Posting {
	newBalance := balance.Add(delta)
	return Posting{
		NewBalance: newBalance,
		Entry: entities.BalanceEntry{
			ID:           uuid.New(),
			UserID:       userID,
			Type:         entryType,
			Amount:       delta,
			Description:  description,
			Reference:    reference,
			BalanceAfter: newBalance,
			CreatedAt:    now,
		},
	}
}

// Debit validates that a buy of the given cost can be funded from balance.
// A non-positive balance fails immediately: an emptied account rejects
// buys whatever the cost.
func Debit(balance, cost decimal.Decimal) error {
	if !balance.IsPositive() {
		return apperrors.InsufficientFunds("cash balance is empty")
	}
	if balance.LessThan(cost) {
		return apperrors.InsufficientFunds(fmt.Sprintf(
			"trade costs %s but only %s is available", cost, balance))
	}
	return nil
}

// ValidateDeposit bounds a manual add-funds amount to (0, max]
func ValidateDeposit(amount, max decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.InvalidAmount("amount must be positive")
	}
	if amount.GreaterThan(max) {
		return apperrors.InvalidAmount(fmt.Sprintf(
			"amount exceeds the per-transaction maximum of %s", max))
	}
	return nil
}

// SameCalendarDay reports whether two instants fall on the same UTC
// calendar day. The daily bonus is gated on day boundaries, not on a
// rolling 24h window.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// CanClaimDailyBonus reports whether the bonus is still claimable today
func CanClaimDailyBonus(lastClaim *time.Time, now time.Time) bool {
	if lastClaim == nil {
		return true
	}
	return !SameCalendarDay(*lastClaim, now)
}

// Summarize folds a user's history into the balance-history summary
// fields. TotalEarned counts every credit except the initial grant.
func Summarize(entries []entities.BalanceEntry, currentBalance, initialBalance decimal.Decimal) entities.BalanceHistoryResponse {
	totalEarned := decimal.Zero
	for _, e := range entries {
		if e.Type != entities.EntryInitial && e.Amount.IsPositive() {
			totalEarned = totalEarned.Add(e.Amount)
		}
	}
	return entities.BalanceHistoryResponse{
		Entries:        entries,
		CurrentBalance: currentBalance,
		TotalEarned:    totalEarned,
		InitialBalance: initialBalance,
	}
}
