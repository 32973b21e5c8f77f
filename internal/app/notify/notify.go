// Package notify manages the driver's notification inbox on top of the
// device store.
package notify

import (
	"time"

	"github.com/google/uuid"

	"github.com/papaleguas-app/papaleguas/internal/domain"
	"github.com/papaleguas-app/papaleguas/internal/infra/clock"
)

// Store is the persistence contract the inbox needs.
type Store interface {
	InsertNotification(n domain.Notification) error
	ListNotifications() ([]domain.Notification, error)
	MarkNotificationRead(id string) error
	UnreadNotificationCount() (int, error)
}

// Service is the notification inbox.
type Service struct {
	store Store
	clk   clock.Clock
}

// NewService creates the inbox service.
func NewService(store Store, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System()
	}
	return &Service{store: store, clk: clk}
}

// Push adds a notification, generating its id and timestamp.
func (s *Service) Push(title, body string, typ domain.NotificationType) (domain.Notification, error) {
	n := domain.Notification{
		ID:    uuid.NewString(),
		Title: title,
		Body:  body,
		Date:  s.clk.Now(),
		Type:  typ,
	}
	return n, s.store.InsertNotification(n)
}

// List returns the inbox, newest first.
func (s *Service) List() ([]domain.Notification, error) {
	return s.store.ListNotifications()
}

// MarkRead flags one entry as read.
func (s *Service) MarkRead(id string) error {
	return s.store.MarkNotificationRead(id)
}

// UnreadCount returns the badge number.
func (s *Service) UnreadCount() (int, error) {
	return s.store.UnreadNotificationCount()
}

// Seed inserts the first-run inbox entries. Fixed ids keep it idempotent
// across restarts.
func (s *Service) Seed() error {
	base := s.clk.Now()
	seeds := []domain.Notification{
		{
			ID:    "seed-welcome",
			Title: "Bem-vindo ao Papaléguas!",
			Body:  "Fique online para receber suas primeiras rotas na sua região.",
			Date:  base.Add(-48 * time.Hour),
			Type:  domain.NotifySystem,
		},
		{
			ID:    "seed-weekly-payout",
			Title: "Repasse semanal disponível",
			Body:  "O repasse da semana passada já está na sua conta.",
			Date:  base.Add(-24 * time.Hour),
			Type:  domain.NotifyFinancial,
		},
		{
			ID:    "seed-peak-promo",
			Title: "Tarifa dinâmica no almoço",
			Body:  "Corridas entre 11h e 14h pagam bônus na sua região.",
			Date:  base.Add(-2 * time.Hour),
			Type:  domain.NotifyPromotion,
		},
	}
	for _, n := range seeds {
		if err := s.store.InsertNotification(n); err != nil {
			return err
		}
	}
	return nil
}
