// Package wallet tracks the driver's balance, daily earnings and the
// append-only transaction history, including the anticipation cash-out.
package wallet

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/papaleguas-app/papaleguas/internal/domain"
	"github.com/papaleguas-app/papaleguas/internal/infra/clock"
)

// AnticipationFee is the flat fee charged on an early cash-out, in R$.
const AnticipationFee = 5.00

// Store persists history entries. A nil Store keeps the ledger in memory only.
type Store interface {
	AppendTransaction(tx domain.Transaction) error
}

// Wallet is the driver's money state. All mutations go through its methods.
type Wallet struct {
	mu      sync.Mutex
	clk     clock.Clock
	store   Store
	balance float64
	daily   float64
	ledger  []domain.Transaction
}

// New creates a wallet with an opening balance.
func New(openingBalance float64, store Store, clk clock.Clock) *Wallet {
	if clk == nil {
		clk = clock.System()
	}
	return &Wallet{clk: clk, store: store, balance: openingBalance}
}

// Balance returns the withdrawable balance.
func (w *Wallet) Balance() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// DailyEarnings returns the earnings accumulated this session.
func (w *Wallet) DailyEarnings() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.daily
}

// Transactions returns a copy of the ledger, newest first.
func (w *Wallet) Transactions() []domain.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.Transaction, len(w.ledger))
	copy(out, w.ledger)
	return out
}

// CreditDelivery applies a completed delivery's payout and appends its
// history entry. Returns the created transaction.
func (w *Wallet) CreditDelivery(missionID string, earnings float64) domain.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.balance += earnings
	w.daily += earnings

	now := w.clk.Now()
	tx := domain.Transaction{
		ID:     uuid.NewString(),
		Type:   fmt.Sprintf("Entrega #%s", missionID),
		Amount: earnings,
		Time:   now.Format("15:04"),
		Date:   "Hoje",
		WeekID: "current",
		Status: domain.TxCompleted,
		Details: &domain.TransactionDetails{
			Duration: "15 min",
			Stops:    2,
			Timeline: domain.DeliveryTimeline(now),
		},
	}
	w.appendLocked(tx)
	return tx
}

// Anticipate cashes out the whole balance for a flat fee. Refused when the
// balance does not cover the fee. Appends the withdrawal and fee entries.
func (w *Wallet) Anticipate() (withdrawn float64, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.balance <= AnticipationFee {
		return 0, domain.ErrInsufficientBalance
	}

	amount := w.balance
	w.balance = 0

	now := w.clk.Now()
	stamp := now.Format("15:04")
	w.appendLocked(domain.Transaction{
		ID:     uuid.NewString(),
		Type:   "Antecipação de Ganhos",
		Amount: -amount,
		Time:   stamp,
		Date:   "Hoje",
		WeekID: "current",
		Status: domain.TxCompleted,
	})
	w.appendLocked(domain.Transaction{
		ID:     uuid.NewString(),
		Type:   "Taxa de Antecipação",
		Amount: -AnticipationFee,
		Time:   stamp,
		Date:   "Hoje",
		WeekID: "current",
		Status: domain.TxCompleted,
	})
	return amount, nil
}

// appendLocked prepends to the in-memory ledger and mirrors to the store.
func (w *Wallet) appendLocked(tx domain.Transaction) {
	w.ledger = append([]domain.Transaction{tx}, w.ledger...)
	if w.store != nil {
		if err := w.store.AppendTransaction(tx); err != nil {
			// History persistence is best-effort; the in-memory ledger
			// stays authoritative for the session.
			log.Printf("wallet: persist transaction %s: %v", tx.ID, err)
		}
	}
}
