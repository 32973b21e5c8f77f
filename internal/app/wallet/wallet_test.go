package wallet

import (
	"testing"
	"time"

	"github.com/papaleguas-app/papaleguas/internal/domain"
	"github.com/papaleguas-app/papaleguas/internal/infra/clock"
)

type memStore struct {
	txs []domain.Transaction
}

func (m *memStore) AppendTransaction(tx domain.Transaction) error {
	m.txs = append(m.txs, tx)
	return nil
}

func newTestWallet(opening float64) (*Wallet, *memStore) {
	store := &memStore{}
	clk := clock.NewFake(time.Date(2024, 10, 22, 14, 20, 0, 0, time.UTC))
	return New(opening, store, clk), store
}

func TestCreditDelivery(t *testing.T) {
	w, store := newTestWallet(142.50)

	tx := w.CreditDelivery("PL-9842", 12.40)

	if got := w.Balance(); got != 154.90 {
		t.Errorf("Balance() = %.2f, want 154.90", got)
	}
	if got := w.DailyEarnings(); got != 12.40 {
		t.Errorf("DailyEarnings() = %.2f, want 12.40", got)
	}
	if tx.Type != "Entrega #PL-9842" {
		t.Errorf("tx.Type = %q", tx.Type)
	}
	if tx.Time != "14:20" {
		t.Errorf("tx.Time = %q, want 14:20", tx.Time)
	}
	if tx.Details == nil || len(tx.Details.Timeline) != 7 {
		t.Fatal("delivery transaction is missing its timeline")
	}
	if len(store.txs) != 1 {
		t.Errorf("store received %d transactions, want 1", len(store.txs))
	}
	if list := w.Transactions(); len(list) != 1 || list[0].ID != tx.ID {
		t.Errorf("ledger mismatch: %+v", list)
	}
}

func TestAnticipate(t *testing.T) {
	w, store := newTestWallet(100)

	amount, err := w.Anticipate()
	if err != nil {
		t.Fatalf("Anticipate() error: %v", err)
	}
	if amount != 100 {
		t.Errorf("withdrawn = %.2f, want 100.00", amount)
	}
	if got := w.Balance(); got != 0 {
		t.Errorf("Balance() after anticipation = %.2f, want 0", got)
	}

	if len(store.txs) != 2 {
		t.Fatalf("store received %d transactions, want 2", len(store.txs))
	}
	list := w.Transactions()
	// Newest first: fee entry, then withdrawal.
	if list[0].Type != "Taxa de Antecipação" || list[0].Amount != -AnticipationFee {
		t.Errorf("fee entry = %+v", list[0])
	}
	if list[1].Type != "Antecipação de Ganhos" || list[1].Amount != -100 {
		t.Errorf("withdrawal entry = %+v", list[1])
	}
}

func TestAnticipate_InsufficientBalance(t *testing.T) {
	w, _ := newTestWallet(AnticipationFee) // equal to the fee is not enough

	if _, err := w.Anticipate(); err != domain.ErrInsufficientBalance {
		t.Fatalf("Anticipate() error = %v, want ErrInsufficientBalance", err)
	}
	if got := w.Balance(); got != AnticipationFee {
		t.Errorf("balance mutated on refused anticipation: %.2f", got)
	}
	if len(w.Transactions()) != 0 {
		t.Error("refused anticipation appended transactions")
	}
}

func TestDailyEarnings_SurvivesAnticipation(t *testing.T) {
	w, _ := newTestWallet(0)
	w.CreditDelivery("PL-1000", 10)
	w.CreditDelivery("PL-1001", 8)

	if _, err := w.Anticipate(); err != nil {
		t.Fatal(err)
	}
	if got := w.DailyEarnings(); got != 18 {
		t.Errorf("DailyEarnings() = %.2f, want 18 (daily totals are not zeroed by cash-out)", got)
	}
}

func TestNilStore(t *testing.T) {
	w := New(50, nil, clock.NewFake(time.Now()))
	w.CreditDelivery("PL-1", 8)
	if got := w.Balance(); got != 58 {
		t.Errorf("Balance() = %.2f, want 58", got)
	}
}
