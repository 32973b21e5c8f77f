package mission

import (
	"math/rand"
	"testing"
	"time"

	"github.com/papaleguas-app/papaleguas/internal/app/wallet"
	"github.com/papaleguas-app/papaleguas/internal/domain"
	"github.com/papaleguas-app/papaleguas/internal/infra/clock"
)

// stubSource returns fixed records so tests can predict the delivery code.
type stubSource struct{}

func (stubSource) PickStore() domain.Store {
	return domain.Store{
		Name:           "Big Lanches",
		Address:        "Av. Caetano Ruggieri, 2383 - Itu - SP",
		Items:          []string{"1x X-Tudo Completo"},
		CollectionCode: "4400",
	}
}

func (stubSource) PickCustomer() domain.Customer {
	return domain.Customer{
		Name:        "Ricardo Silva",
		Address:     "Rua Paula Souza, 500 - Centro, Itu - SP",
		PhoneSuffix: "9545",
	}
}

func newTestController(t *testing.T) (*Controller, *clock.Fake, *wallet.Wallet) {
	t.Helper()
	clk := clock.NewFake(time.Date(2024, 10, 22, 12, 0, 0, 0, time.UTC))
	w := wallet.New(142.50, nil, clk)
	c := New(DefaultConfig(), Deps{
		Source: stubSource{},
		Wallet: w,
		Clock:  clk,
		Rand:   rand.New(rand.NewSource(7)),
	})
	return c, clk, w
}

// goOnline grants location and flips the driver online.
func goOnline(t *testing.T, c *Controller) {
	t.Helper()
	c.SetLocationGranted(true)
	if err := c.RequestOnline(); err != nil {
		t.Fatalf("RequestOnline() error: %v", err)
	}
}

// offerMission drives the controller to an active alert.
func offerMission(t *testing.T, c *Controller, clk *clock.Fake) {
	t.Helper()
	goOnline(t, c)
	clk.Advance(7 * time.Second)
	if snap := c.Snapshot(); snap.Status != domain.StatusAlerting || snap.Mission == nil {
		t.Fatalf("no alert after generation delay: %+v", snap.Status)
	}
}

// arriveAtCustomer accepts the offer and walks both legs.
func arriveAtCustomer(t *testing.T, c *Controller, clk *clock.Fake) {
	t.Helper()
	offerMission(t, c, clk)
	if err := c.AcceptMission(); err != nil {
		t.Fatalf("AcceptMission() error: %v", err)
	}
	if err := c.Advance(); err != nil { // arrive at store
		t.Fatal(err)
	}
	clk.Advance(10 * time.Second) // merchant preparation
	if err := c.Advance(); err != nil { // leave counter
		t.Fatal(err)
	}
	if err := c.Advance(); err != nil { // collected, heading out
		t.Fatal(err)
	}
	if err := c.Advance(); err != nil { // arrive at customer
		t.Fatal(err)
	}
	if snap := c.Snapshot(); snap.Status != domain.StatusArrivedAtCustomer {
		t.Fatalf("status = %s, want ARRIVED_AT_CUSTOMER", snap.Status)
	}
}

// ─── Availability ───────────────────────────────────────────────────────────

func TestRequestOnline_RequiresLocation(t *testing.T) {
	c, _, _ := newTestController(t)

	if err := c.RequestOnline(); err != domain.ErrLocationPermission {
		t.Fatalf("RequestOnline() without permission = %v, want ErrLocationPermission", err)
	}
	if snap := c.Snapshot(); snap.Status != domain.StatusOffline {
		t.Errorf("status = %s, want OFFLINE", snap.Status)
	}

	// Retrying after the user grants access succeeds.
	c.SetLocationGranted(true)
	if err := c.RequestOnline(); err != nil {
		t.Fatalf("RequestOnline() after grant error: %v", err)
	}
}

func TestRequestOnline(t *testing.T) {
	c, _, _ := newTestController(t)
	goOnline(t, c)

	snap := c.Snapshot()
	if snap.Status != domain.StatusOnline {
		t.Errorf("status = %s, want ONLINE", snap.Status)
	}
	if snap.Mission != nil {
		t.Error("fresh ONLINE session holds a mission")
	}
}

func TestRequestOffline_CancelsGeneration(t *testing.T) {
	c, clk, _ := newTestController(t)
	goOnline(t, c)

	if err := c.RequestOffline(); err != nil {
		t.Fatal(err)
	}
	clk.Advance(time.Minute)

	snap := c.Snapshot()
	if snap.Status != domain.StatusOffline {
		t.Errorf("status = %s, want OFFLINE", snap.Status)
	}
	if snap.Mission != nil {
		t.Error("generation timer fired after going offline")
	}
}

func TestRequestOffline_NoOpDuringMission(t *testing.T) {
	c, clk, _ := newTestController(t)
	offerMission(t, c, clk)
	if err := c.AcceptMission(); err != nil {
		t.Fatal(err)
	}

	if err := c.RequestOffline(); err != nil {
		t.Fatal(err)
	}
	if snap := c.Snapshot(); snap.Status != domain.StatusGoingToStore {
		t.Errorf("offline request changed an accepted mission: %s", snap.Status)
	}
}

// ─── Generation ─────────────────────────────────────────────────────────────

func TestGeneration_AfterDelay(t *testing.T) {
	c, clk, _ := newTestController(t)
	goOnline(t, c)

	clk.Advance(6 * time.Second)
	if snap := c.Snapshot(); snap.Mission != nil {
		t.Fatal("mission surfaced before the generation delay")
	}
	clk.Advance(time.Second)

	snap := c.Snapshot()
	if snap.Status != domain.StatusAlerting {
		t.Fatalf("status = %s, want ALERTING", snap.Status)
	}
	if snap.Countdown != 30 {
		t.Errorf("countdown = %d, want 30", snap.Countdown)
	}
	m := snap.Mission
	if m == nil {
		t.Fatal("no mission attached to the alert")
	}
	if m.DistanceToStore < 0.2 || m.DistanceToStore > 2.2 {
		t.Errorf("distanceToStore = %v, want [0.2, 2.2]", m.DistanceToStore)
	}
	if m.DeliveryDistance < 1 || m.DeliveryDistance > 9 {
		t.Errorf("deliveryDistance = %v out of bounds", m.DeliveryDistance)
	}
	if m.Earnings != domain.EarningsForDistance(m.DeliveryDistance) {
		t.Errorf("earnings %.2f do not match the pricing table for %.1f km", m.Earnings, m.DeliveryDistance)
	}
	if m.TotalDistance != domain.Round1(m.DistanceToStore+m.DeliveryDistance) {
		t.Errorf("totalDistance = %v, want rounded leg sum", m.TotalDistance)
	}
	if m.CollectionCode != "4400" || m.CustomerPhoneSuffix != "9545" {
		t.Errorf("mission codes not taken from the catalog draw: %+v", m)
	}
	if m.TimeLimit != 25 {
		t.Errorf("timeLimit = %d, want 25", m.TimeLimit)
	}
}

func TestGeneration_MinPriceAboveTableNeverOffers(t *testing.T) {
	c, clk, _ := newTestController(t)
	c.SetFilters(15, 25) // above the 20.00 table ceiling
	goOnline(t, c)

	clk.Advance(10 * time.Minute)

	snap := c.Snapshot()
	if snap.Status != domain.StatusOnline {
		t.Errorf("status = %s, want ONLINE forever", snap.Status)
	}
	if snap.Mission != nil {
		t.Error("mission surfaced despite impossible price floor")
	}
	if clk.Pending() == 0 {
		t.Error("generation stopped retrying")
	}
}

func TestGeneration_FiltersReadAtGenerationTime(t *testing.T) {
	c, clk, _ := newTestController(t)
	offerMission(t, c, clk)
	before := *c.Snapshot().Mission

	// Tightening filters mid-countdown must not touch the live offer.
	c.SetFilters(2, 25)

	after := c.Snapshot().Mission
	if after == nil || after.ID != before.ID || after.Earnings != before.Earnings {
		t.Fatalf("live offer re-evaluated after filter change")
	}
}

func TestGeneration_RadiusBoundsDeliveryLeg(t *testing.T) {
	c, clk, _ := newTestController(t)
	c.SetFilters(3, 0) // tight radius
	goOnline(t, c)
	clk.Advance(7 * time.Second)

	m := c.Snapshot().Mission
	if m == nil {
		t.Fatal("no mission generated")
	}
	// Budget: max(1, 3 − toStore), so the leg never exceeds budget + 1.
	budget := 3 - m.DistanceToStore
	if budget < 1 {
		budget = 1
	}
	if m.DeliveryDistance > domain.Round1(budget+1) {
		t.Errorf("deliveryDistance %.1f exceeds radius budget %.1f", m.DeliveryDistance, budget)
	}
}

// ─── Alert Countdown ────────────────────────────────────────────────────────

func TestCountdown_TimeoutAutoRejects(t *testing.T) {
	c, clk, _ := newTestController(t)
	offerMission(t, c, clk)

	clk.Advance(29 * time.Second)
	if snap := c.Snapshot(); snap.Countdown != 1 || snap.Status != domain.StatusAlerting {
		t.Fatalf("after 29s: countdown=%d status=%s", snap.Countdown, snap.Status)
	}

	clk.Advance(time.Second)
	snap := c.Snapshot()
	if snap.Status != domain.StatusOnline {
		t.Errorf("status after timeout = %s, want ONLINE", snap.Status)
	}
	if snap.Mission != nil {
		t.Error("mission survived the timeout")
	}
	if snap.Stats.Rejected != 1 {
		t.Errorf("rejected = %d, want exactly 1", snap.Stats.Rejected)
	}

	// Generation re-arms after the timeout.
	clk.Advance(7 * time.Second)
	if snap := c.Snapshot(); snap.Status != domain.StatusAlerting {
		t.Errorf("no fresh offer after timeout, status = %s", snap.Status)
	}
}

func TestAccept_StopsCountdown(t *testing.T) {
	c, clk, _ := newTestController(t)
	offerMission(t, c, clk)

	clk.Advance(5 * time.Second)
	if err := c.AcceptMission(); err != nil {
		t.Fatal(err)
	}

	snap := c.Snapshot()
	if snap.Status != domain.StatusGoingToStore {
		t.Errorf("status = %s, want GOING_TO_STORE", snap.Status)
	}
	if snap.Stats.Accepted != 1 {
		t.Errorf("accepted = %d, want 1", snap.Stats.Accepted)
	}

	// The countdown timer must not fire a late rejection.
	clk.Advance(time.Minute)
	snap = c.Snapshot()
	if snap.Stats.Rejected != 0 {
		t.Errorf("stale countdown rejected an accepted mission: rejected=%d", snap.Stats.Rejected)
	}
	if snap.Status != domain.StatusGoingToStore {
		t.Errorf("status drifted to %s after accept", snap.Status)
	}
}

func TestReject_Idempotent(t *testing.T) {
	c, clk, _ := newTestController(t)
	offerMission(t, c, clk)

	if err := c.RejectMission(); err != nil {
		t.Fatal(err)
	}
	if err := c.RejectMission(); err != domain.ErrNoMission {
		t.Errorf("second reject = %v, want ErrNoMission", err)
	}

	snap := c.Snapshot()
	if snap.Stats.Rejected != 1 {
		t.Errorf("rejected = %d, want exactly 1", snap.Stats.Rejected)
	}

	// Nor may the countdown double-count the same mission.
	clk.Advance(time.Minute)
	if got := c.Snapshot().Stats.Rejected; got > 2 {
		t.Errorf("rejected = %d; the old countdown fired on a cleared mission", got)
	}
}

func TestAutoAccept(t *testing.T) {
	c, clk, _ := newTestController(t)
	c.SetAutoAccept(true)
	goOnline(t, c)
	clk.Advance(7 * time.Second)

	if snap := c.Snapshot(); snap.Status != domain.StatusAlerting {
		t.Fatalf("status = %s, want ALERTING before the auto-accept delay", snap.Status)
	}
	clk.Advance(1500 * time.Millisecond)

	snap := c.Snapshot()
	if snap.Status != domain.StatusGoingToStore {
		t.Errorf("status = %s, want GOING_TO_STORE via auto-accept", snap.Status)
	}
	if snap.Stats.Accepted != 1 {
		t.Errorf("auto-accept bypassed the accepted counter: %d", snap.Stats.Accepted)
	}
}

func TestAutoAccept_EnabledMidAlert(t *testing.T) {
	c, clk, _ := newTestController(t)
	offerMission(t, c, clk)

	clk.Advance(5 * time.Second)
	c.SetAutoAccept(true)
	clk.Advance(1500 * time.Millisecond)

	if snap := c.Snapshot(); snap.Status != domain.StatusGoingToStore {
		t.Errorf("status = %s, want GOING_TO_STORE", snap.Status)
	}
}

// ─── Order Readiness ────────────────────────────────────────────────────────

func TestOrderReady_GatesPickup(t *testing.T) {
	c, clk, _ := newTestController(t)
	offerMission(t, c, clk)
	if err := c.AcceptMission(); err != nil {
		t.Fatal(err)
	}
	if err := c.Advance(); err != nil { // arrive at store
		t.Fatal(err)
	}

	clk.Advance(9 * time.Second)
	if err := c.Advance(); err != domain.ErrOrderNotReady {
		t.Fatalf("Advance() before preparation = %v, want ErrOrderNotReady", err)
	}
	if snap := c.Snapshot(); snap.Status != domain.StatusArrivedAtStore {
		t.Errorf("refused advance changed status to %s", snap.Status)
	}

	clk.Advance(time.Second)
	if snap := c.Snapshot(); !snap.OrderReady {
		t.Fatal("order not ready after the preparation delay")
	}
	if err := c.Advance(); err != nil {
		t.Fatalf("Advance() after preparation error: %v", err)
	}

	snap := c.Snapshot()
	if snap.Status != domain.StatusPickingUp {
		t.Errorf("status = %s, want PICKING_UP", snap.Status)
	}
	if snap.OrderReady {
		t.Error("order-ready flag survived leaving the store state")
	}
}

// ─── Delivery Confirmation ──────────────────────────────────────────────────

func TestDelivery_WrongCode(t *testing.T) {
	c, clk, w := newTestController(t)
	arriveAtCustomer(t, c, clk)
	balanceBefore := w.Balance()

	if err := c.SubmitDeliveryCode("0000"); err != nil {
		t.Fatal(err)
	}
	if snap := c.Snapshot(); snap.CodeValid {
		t.Error("wrong code reported valid")
	}
	if err := c.Advance(); err != domain.ErrCodeMismatch {
		t.Fatalf("Advance() with wrong code = %v, want ErrCodeMismatch", err)
	}

	snap := c.Snapshot()
	if snap.Status != domain.StatusArrivedAtCustomer {
		t.Errorf("wrong code moved status to %s", snap.Status)
	}
	if w.Balance() != balanceBefore {
		t.Error("wrong code mutated the balance")
	}
	if snap.Stats.Finished != 0 {
		t.Error("wrong code counted a finished delivery")
	}
}

func TestDelivery_FirstCompletionGatedByVerification(t *testing.T) {
	c, clk, w := newTestController(t)
	arriveAtCustomer(t, c, clk)
	m := *c.Snapshot().Mission
	balanceBefore := w.Balance()

	if err := c.SubmitDeliveryCode(m.CustomerPhoneSuffix); err != nil {
		t.Fatal(err)
	}
	if err := c.Advance(); err != domain.ErrVerificationRequired {
		t.Fatalf("first completion = %v, want ErrVerificationRequired", err)
	}

	// Nothing committed while the gate is open.
	snap := c.Snapshot()
	if !snap.AwaitingVerification {
		t.Error("controller not flagged as awaiting verification")
	}
	if w.Balance() != balanceBefore {
		t.Error("balance mutated before verification")
	}
	if snap.Status != domain.StatusArrivedAtCustomer || snap.Mission == nil {
		t.Fatalf("suspended completion lost the mission: %s", snap.Status)
	}

	c.CompleteIdentityVerification()

	snap = c.Snapshot()
	if snap.Status != domain.StatusOnline {
		t.Errorf("status after verified completion = %s, want ONLINE", snap.Status)
	}
	if snap.Mission != nil {
		t.Error("mission survived completion")
	}
	if snap.Stats.Finished != 1 {
		t.Errorf("finished = %d, want 1", snap.Stats.Finished)
	}
	if got := w.Balance(); got != balanceBefore+m.Earnings {
		t.Errorf("balance = %.2f, want %.2f", got, balanceBefore+m.Earnings)
	}
	if got := w.DailyEarnings(); got != m.Earnings {
		t.Errorf("daily earnings = %.2f, want %.2f", got, m.Earnings)
	}
	if snap.LastEarnings != m.Earnings {
		t.Errorf("last earnings = %.2f, want %.2f", snap.LastEarnings, m.Earnings)
	}
	if !snap.ShowSummary {
		t.Error("post-delivery summary not flagged")
	}
	if !snap.SessionVerified {
		t.Error("session not marked verified")
	}

	txs := w.Transactions()
	if len(txs) != 1 {
		t.Fatalf("ledger has %d entries, want exactly 1", len(txs))
	}
	if txs[0].Type != "Entrega #"+m.ID {
		t.Errorf("transaction type = %q", txs[0].Type)
	}
	if txs[0].Details == nil || txs[0].Details.Timeline[len(txs[0].Details.Timeline)-1].Description != "Fim da rota" {
		t.Error("transaction timeline missing or not terminated at route end")
	}
}

func TestDelivery_SecondCompletionSkipsVerification(t *testing.T) {
	c, clk, w := newTestController(t)

	// First delivery, through the gate.
	arriveAtCustomer(t, c, clk)
	first := *c.Snapshot().Mission
	c.SubmitDeliveryCode(first.CustomerPhoneSuffix)
	if err := c.Advance(); err != domain.ErrVerificationRequired {
		t.Fatal(err)
	}
	c.CompleteIdentityVerification()

	// Second delivery completes with no detour.
	clk.Advance(7 * time.Second)
	if snap := c.Snapshot(); snap.Status != domain.StatusAlerting {
		t.Fatalf("no second offer, status = %s", snap.Status)
	}
	if err := c.AcceptMission(); err != nil {
		t.Fatal(err)
	}
	c.Advance()
	clk.Advance(10 * time.Second)
	c.Advance()
	c.Advance()
	c.Advance()
	second := *c.Snapshot().Mission
	c.SubmitDeliveryCode(second.CustomerPhoneSuffix)

	balanceBefore := w.Balance()
	if err := c.Advance(); err != nil {
		t.Fatalf("verified-session completion error: %v", err)
	}

	snap := c.Snapshot()
	if snap.Stats.Finished != 2 {
		t.Errorf("finished = %d, want 2", snap.Stats.Finished)
	}
	if got := w.Balance(); got != balanceBefore+second.Earnings {
		t.Errorf("balance = %.2f, want %.2f", got, balanceBefore+second.Earnings)
	}
}

func TestDelivery_CompletionAppliesExactlyOnce(t *testing.T) {
	c, clk, w := newTestController(t)
	c.CompleteIdentityVerification() // pre-verified session
	arriveAtCustomer(t, c, clk)
	m := *c.Snapshot().Mission
	c.SubmitDeliveryCode(m.CustomerPhoneSuffix)

	if err := c.Advance(); err != nil {
		t.Fatal(err)
	}
	// A replayed confirm finds no mission state to complete.
	if err := c.Advance(); err == nil {
		t.Fatal("replayed completion did not refuse")
	}

	if got := c.Snapshot().Stats.Finished; got != 1 {
		t.Errorf("finished = %d, want exactly 1", got)
	}
	if len(w.Transactions()) != 1 {
		t.Errorf("ledger has %d entries, want exactly 1", len(w.Transactions()))
	}
}

func TestDelivery_CodeClearedAfterCompletion(t *testing.T) {
	c, clk, _ := newTestController(t)
	c.CompleteIdentityVerification()
	arriveAtCustomer(t, c, clk)
	m := *c.Snapshot().Mission
	c.SubmitDeliveryCode(m.CustomerPhoneSuffix)
	if err := c.Advance(); err != nil {
		t.Fatal(err)
	}

	if snap := c.Snapshot(); snap.TypedCode != "" {
		t.Errorf("typed code survived the return to ONLINE: %q", snap.TypedCode)
	}
}

// ─── Code Resend Cooldown ───────────────────────────────────────────────────

func TestCodeResend_Cooldown(t *testing.T) {
	c, clk, _ := newTestController(t)
	arriveAtCustomer(t, c, clk)

	if err := c.RequestCodeResend(); err != nil {
		t.Fatalf("first resend error: %v", err)
	}
	if err := c.RequestCodeResend(); err != domain.ErrResendCooldown {
		t.Fatalf("immediate second resend = %v, want ErrResendCooldown", err)
	}
	if got := c.Snapshot().ResendCooldown; got != 30 {
		t.Errorf("resend cooldown = %d, want 30", got)
	}

	clk.Advance(30 * time.Second)
	if got := c.Snapshot().ResendCooldown; got != 0 {
		t.Errorf("resend cooldown after 30s = %d, want 0", got)
	}
	if err := c.RequestCodeResend(); err != nil {
		t.Errorf("resend after cooldown error: %v", err)
	}
}

func TestCodeResend_OnlyAtDropOff(t *testing.T) {
	c, clk, _ := newTestController(t)
	offerMission(t, c, clk)
	if err := c.RequestCodeResend(); err != domain.ErrInvalidTransition {
		t.Errorf("resend during alert = %v, want ErrInvalidTransition", err)
	}
}

// ─── Snapshot Semantics ─────────────────────────────────────────────────────

func TestSnapshot_MissionIsACopy(t *testing.T) {
	c, clk, _ := newTestController(t)
	offerMission(t, c, clk)

	snap := c.Snapshot()
	snap.Mission.StoreName = "mutated"
	snap.Mission.Items[0] = "mutated"

	fresh := c.Snapshot().Mission
	if fresh.StoreName == "mutated" || fresh.Items[0] == "mutated" {
		t.Error("snapshot leaks the controller's mission")
	}
}

func TestSnapshot_StatusLabels(t *testing.T) {
	c, clk, _ := newTestController(t)
	offerMission(t, c, clk)
	c.AcceptMission()
	c.Advance() // at store

	if got := c.Snapshot().StatusLabel; got != "AGUARDANDO PEDIDO" {
		t.Errorf("label = %q, want AGUARDANDO PEDIDO", got)
	}
	clk.Advance(10 * time.Second)
	if got := c.Snapshot().StatusLabel; got != "PEDIDO PRONTO" {
		t.Errorf("label = %q, want PEDIDO PRONTO", got)
	}
}

func TestAdvance_NoOpWhileIdle(t *testing.T) {
	c, _, _ := newTestController(t)
	if err := c.Advance(); err != domain.ErrInvalidTransition {
		t.Errorf("Advance() while OFFLINE = %v, want ErrInvalidTransition", err)
	}
	goOnline(t, c)
	if err := c.Advance(); err != domain.ErrInvalidTransition {
		t.Errorf("Advance() while ONLINE = %v, want ErrInvalidTransition", err)
	}
}
