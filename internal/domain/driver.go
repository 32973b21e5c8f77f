// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of the app; it depends on nothing.
package domain

// ─── Driver Status ──────────────────────────────────────────────────────────

// DriverStatus is the driver's availability state. Exactly one value is
// active at a time; it doubles as the mission lifecycle state.
type DriverStatus string

const (
	StatusOffline           DriverStatus = "OFFLINE"
	StatusOnline            DriverStatus = "ONLINE"
	StatusAlerting          DriverStatus = "ALERTING"
	StatusGoingToStore      DriverStatus = "GOING_TO_STORE"
	StatusArrivedAtStore    DriverStatus = "ARRIVED_AT_STORE"
	StatusPickingUp         DriverStatus = "PICKING_UP"
	StatusGoingToCustomer   DriverStatus = "GOING_TO_CUSTOMER"
	StatusArrivedAtCustomer DriverStatus = "ARRIVED_AT_CUSTOMER"
)

// OnMission reports whether the status belongs to an accepted mission leg.
func (s DriverStatus) OnMission() bool {
	switch s {
	case StatusGoingToStore, StatusArrivedAtStore, StatusPickingUp,
		StatusGoingToCustomer, StatusArrivedAtCustomer:
		return true
	}
	return false
}

// StoreLeg reports whether the driver is still headed to / at the store.
// Used to decide which address the navigation picker targets.
func (s DriverStatus) StoreLeg() bool {
	return s == StatusGoingToStore || s == StatusArrivedAtStore || s == StatusPickingUp
}

// Label returns the driver-facing status banner text.
// ARRIVED_AT_STORE has two banners depending on order readiness.
func (s DriverStatus) Label(orderReady bool) string {
	switch s {
	case StatusGoingToStore:
		return "INDO PARA COLETA"
	case StatusArrivedAtStore:
		if orderReady {
			return "PEDIDO PRONTO"
		}
		return "AGUARDANDO PEDIDO"
	case StatusPickingUp:
		return "SAÍDA DE BALCÃO"
	case StatusGoingToCustomer:
		return "INDO PARA O CLIENTE"
	case StatusArrivedAtCustomer:
		return "LOCAL DE ENTREGA"
	default:
		return string(s)
	}
}

// ─── Daily Stats ────────────────────────────────────────────────────────────

// DailyStats are the session counters shown on the earnings panel.
// Monotonically non-decreasing within a session.
type DailyStats struct {
	Accepted int `json:"accepted"`
	Finished int `json:"finished"`
	Rejected int `json:"rejected"`
}
