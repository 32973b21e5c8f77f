// Package mission implements the delivery mission lifecycle: availability,
// offer alerts with countdown, the store/customer legs, delivery-code
// confirmation, and the completion side effects.
//
// The controller owns every timer it arms. Leaving the state that armed a
// timer cancels it, and every callback re-checks state before acting, so a
// stale fire can never mutate a since-changed machine.
package mission

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/papaleguas-app/papaleguas/internal/app/wallet"
	"github.com/papaleguas-app/papaleguas/internal/domain"
	"github.com/papaleguas-app/papaleguas/internal/infra/catalog"
	"github.com/papaleguas-app/papaleguas/internal/infra/clock"
	"github.com/papaleguas-app/papaleguas/internal/infra/observability"
)

// ─── Config ─────────────────────────────────────────────────────────────────

// Config controls the controller's timings and default filters.
type Config struct {
	GenerationDelay  time.Duration // idle time before a mission is drawn
	AlertSeconds     int           // offer countdown length, in ticks
	AlertTick        time.Duration // offer countdown tick interval
	OrderReadyDelay  time.Duration // merchant preparation time at the store
	AutoAcceptDelay  time.Duration // delay before auto-accept short-circuits an alert
	ResendCooldown   int           // delivery-code resend cooldown, in ticks
	ResendTick       time.Duration // resend cooldown tick interval
	MissionTimeLimit int           // advertised delivery window, minutes
	MaxDistance      float64       // default radius filter, km
	MinPrice         float64       // default minimum payout filter, R$
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{
		GenerationDelay:  7 * time.Second,
		AlertSeconds:     30,
		AlertTick:        time.Second,
		OrderReadyDelay:  10 * time.Second,
		AutoAcceptDelay:  1500 * time.Millisecond,
		ResendCooldown:   30,
		ResendTick:       time.Second,
		MissionTimeLimit: 25,
		MaxDistance:      15,
		MinPrice:         0,
	}
}

// Deps are the controller's collaborators. Source and Wallet are required;
// Clock defaults to the system clock, Rand to a time-seeded source, and a
// nil Metrics records nothing.
type Deps struct {
	Source  catalog.Source
	Wallet  *wallet.Wallet
	Clock   clock.Clock
	Rand    *rand.Rand
	Metrics *observability.Metrics
}

// ─── Snapshot ───────────────────────────────────────────────────────────────

// Snapshot is the read-only view the UI polls after each mutation.
type Snapshot struct {
	Status         domain.DriverStatus     `json:"status"`
	StatusLabel    string                  `json:"status_label"`
	Mission        *domain.DeliveryMission `json:"mission,omitempty"`
	Countdown      int                     `json:"countdown"`
	OrderReady     bool                    `json:"order_ready"`
	TypedCode      string                  `json:"typed_code"`
	CodeValid      bool                    `json:"code_valid"`
	ResendCooldown int                     `json:"resend_cooldown"`
	MapPicker      bool                    `json:"map_picker"`

	Balance       float64           `json:"balance"`
	DailyEarnings float64           `json:"daily_earnings"`
	LastEarnings  float64           `json:"last_earnings"`
	Stats         domain.DailyStats `json:"stats"`

	MaxDistance float64 `json:"max_distance"`
	MinPrice    float64 `json:"min_price"`
	AutoAccept  bool    `json:"auto_accept"`

	LocationGranted      bool `json:"location_granted"`
	SessionVerified      bool `json:"session_verified"`
	AwaitingVerification bool `json:"awaiting_verification"`
	ShowSummary          bool `json:"show_summary"`
}

// ─── Controller ─────────────────────────────────────────────────────────────

// Controller is the mission lifecycle state machine. All mutation happens
// under one mutex on a single logical control flow: user actions and timer
// callbacks.
type Controller struct {
	mu      sync.Mutex
	cfg     Config
	clk     clock.Clock
	src     catalog.Source
	rng     *rand.Rand
	wallet  *wallet.Wallet
	metrics *observability.Metrics

	status     domain.DriverStatus
	mission    *domain.DeliveryMission
	countdown  int
	orderReady bool
	typedCode  string
	mapPicker  bool
	resendLeft int

	locationGranted      bool
	sessionVerified      bool
	awaitingVerification bool
	lastEarnings         float64
	showSummary          bool
	stats                domain.DailyStats

	maxDistance float64
	minPrice    float64
	autoAccept  bool

	genTimer    clock.Timer
	alertTimer  clock.Timer
	autoTimer   clock.Timer
	readyTimer  clock.Timer
	resendTimer clock.Timer
}

// New creates a controller in OFFLINE with the config's default filters.
// The session verification flag starts false; it is per-controller, matching
// the once-per-login rule.
func New(cfg Config, deps Deps) *Controller {
	clk := deps.Clock
	if clk == nil {
		clk = clock.System()
	}
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Controller{
		cfg:         cfg,
		clk:         clk,
		src:         deps.Source,
		rng:         rng,
		wallet:      deps.Wallet,
		metrics:     deps.Metrics,
		status:      domain.StatusOffline,
		maxDistance: cfg.MaxDistance,
		minPrice:    cfg.MinPrice,
	}
}

// ─── Availability ───────────────────────────────────────────────────────────

// SetLocationGranted records the outcome of the OS location prompt.
func (c *Controller) SetLocationGranted(granted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locationGranted = granted
}

// RequestOnline moves OFFLINE → ONLINE and arms the mission generator.
// Refused while location permission is missing; a no-op in any other state.
func (c *Controller) RequestOnline() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.locationGranted {
		return domain.ErrLocationPermission
	}
	if c.status != domain.StatusOffline {
		return nil
	}
	c.status = domain.StatusOnline
	c.mission = nil // clear any stale mission
	c.resetInputLocked()
	c.armGenerationLocked()
	c.metrics.Online(true)
	return nil
}

// RequestOffline moves ONLINE → OFFLINE. In every other state it is a no-op:
// an offered or accepted mission has to be resolved first.
func (c *Controller) RequestOffline() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != domain.StatusOnline {
		return nil
	}
	c.stopTimerLocked(&c.genTimer)
	c.status = domain.StatusOffline
	c.mission = nil
	c.resetInputLocked()
	c.metrics.Online(false)
	return nil
}

// ─── Offer Handling ─────────────────────────────────────────────────────────

// AcceptMission takes the offered mission and heads to the store.
func (c *Controller) AcceptMission() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != domain.StatusAlerting || c.mission == nil {
		return domain.ErrNoMission
	}
	c.acceptLocked()
	return nil
}

// RejectMission declines the offered mission and returns to ONLINE.
// Calling it again once the mission is cleared has no further effect.
func (c *Controller) RejectMission() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != domain.StatusAlerting || c.mission == nil {
		return domain.ErrNoMission
	}
	c.rejectLocked()
	return nil
}

// acceptLocked is the single codepath that counts an acceptance; both the
// manual action and the auto-accept timer land here.
func (c *Controller) acceptLocked() {
	c.stopTimerLocked(&c.alertTimer)
	c.stopTimerLocked(&c.autoTimer)
	c.stats.Accepted++
	c.status = domain.StatusGoingToStore
	c.countdown = 0
	c.metrics.Accepted()
}

// rejectLocked is the single codepath that counts a rejection; the manual
// action and the countdown timeout both land here, so only one can fire per
// mission.
func (c *Controller) rejectLocked() {
	c.stopTimerLocked(&c.alertTimer)
	c.stopTimerLocked(&c.autoTimer)
	c.stats.Rejected++
	c.status = domain.StatusOnline
	c.mission = nil
	c.countdown = 0
	c.resetInputLocked()
	c.armGenerationLocked()
	c.metrics.Rejected()
}

// ─── Mission Generation ─────────────────────────────────────────────────────

func (c *Controller) armGenerationLocked() {
	c.stopTimerLocked(&c.genTimer)
	c.genTimer = c.clk.AfterFunc(c.cfg.GenerationDelay, c.onGenerate)
}

// onGenerate draws a mission once the idle delay elapses. Filters are read
// here, at generation time; changing them later never touches an offer that
// is already out.
func (c *Controller) onGenerate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != domain.StatusOnline || c.mission != nil {
		return
	}

	store := c.src.PickStore()
	customer := c.src.PickCustomer()

	distToStore := domain.Round1(c.rng.Float64()*2 + 0.2)
	maxDelivery := math.Max(1, c.maxDistance-distToStore)
	deliveryDist := domain.Round1(c.rng.Float64()*math.Min(8, maxDelivery) + 1)
	totalDist := domain.Round1(distToStore + deliveryDist)
	price := domain.EarningsForDistance(deliveryDist)

	if price < c.minPrice {
		// Below the driver's floor: discard silently and retry next cycle.
		c.armGenerationLocked()
		return
	}

	c.mission = &domain.DeliveryMission{
		ID:                  fmt.Sprintf("PL-%d", c.rng.Intn(9000)+1000),
		StoreName:           store.Name,
		StoreAddress:        store.Address,
		CustomerName:        customer.Name,
		CustomerAddress:     customer.Address,
		CustomerPhoneSuffix: customer.PhoneSuffix,
		Items:               store.Items,
		CollectionCode:      store.CollectionCode,
		DistanceToStore:     distToStore,
		DeliveryDistance:    deliveryDist,
		TotalDistance:       totalDist,
		Earnings:            price,
		TimeLimit:           c.cfg.MissionTimeLimit,
	}
	c.status = domain.StatusAlerting
	c.countdown = c.cfg.AlertSeconds
	c.alertTimer = c.clk.AfterFunc(c.cfg.AlertTick, c.onAlertTick)
	if c.autoAccept {
		c.autoTimer = c.clk.AfterFunc(c.cfg.AutoAcceptDelay, c.onAutoAccept)
	}
	c.metrics.Offered()
}

func (c *Controller) onAlertTick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != domain.StatusAlerting || c.mission == nil {
		return
	}
	c.countdown--
	if c.countdown <= 0 {
		c.rejectLocked()
		return
	}
	c.alertTimer = c.clk.AfterFunc(c.cfg.AlertTick, c.onAlertTick)
}

func (c *Controller) onAutoAccept() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != domain.StatusAlerting || c.mission == nil || !c.autoAccept {
		return
	}
	c.acceptLocked()
}

// ─── Leg Progression ────────────────────────────────────────────────────────

// Advance moves the accepted mission to its next step. At the store it is
// refused until the order is ready; at the customer it performs the delivery
// confirmation.
func (c *Controller) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.status {
	case domain.StatusGoingToStore:
		c.status = domain.StatusArrivedAtStore
		c.orderReady = false
		c.readyTimer = c.clk.AfterFunc(c.cfg.OrderReadyDelay, c.onOrderReady)
		return nil

	case domain.StatusArrivedAtStore:
		if !c.orderReady {
			return domain.ErrOrderNotReady
		}
		c.stopTimerLocked(&c.readyTimer)
		c.orderReady = false
		c.status = domain.StatusPickingUp
		return nil

	case domain.StatusPickingUp:
		// The collection code is display-only; leaving the counter needs no input.
		c.status = domain.StatusGoingToCustomer
		return nil

	case domain.StatusGoingToCustomer:
		c.status = domain.StatusArrivedAtCustomer
		return nil

	case domain.StatusArrivedAtCustomer:
		return c.finishLocked()

	default:
		return domain.ErrInvalidTransition
	}
}

// onOrderReady flips the readiness flag after the merchant preparation delay,
// provided the driver is still waiting at the store.
func (c *Controller) onOrderReady() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != domain.StatusArrivedAtStore {
		return
	}
	c.orderReady = true
}

// ─── Delivery Confirmation ──────────────────────────────────────────────────

// SubmitDeliveryCode records the code typed into the 4-cell input. Validity
// is exact string equality with the customer's phone suffix; a wrong code is
// state (confirm stays disabled), not an error.
func (c *Controller) SubmitDeliveryCode(code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != domain.StatusArrivedAtCustomer || c.mission == nil {
		return domain.ErrInvalidTransition
	}
	c.typedCode = code
	return nil
}

// RequestCodeResend asks the customer's code to be resent, rate-limited by a
// cooldown that only runs while the driver stays at the drop-off.
func (c *Controller) RequestCodeResend() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != domain.StatusArrivedAtCustomer || c.mission == nil {
		return domain.ErrInvalidTransition
	}
	if c.resendLeft > 0 {
		return domain.ErrResendCooldown
	}
	c.resendLeft = c.cfg.ResendCooldown
	c.resendTimer = c.clk.AfterFunc(c.cfg.ResendTick, c.onResendTick)
	return nil
}

func (c *Controller) onResendTick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != domain.StatusArrivedAtCustomer {
		c.resendLeft = 0
		return
	}
	if c.resendLeft > 0 {
		c.resendLeft--
	}
	if c.resendLeft > 0 {
		c.resendTimer = c.clk.AfterFunc(c.cfg.ResendTick, c.onResendTick)
	}
}

// finishLocked confirms the delivery. The first completion of a session is
// suspended until identity verification succeeds; the mission and code stay
// exactly as they are so the retry path re-enters here unchanged.
func (c *Controller) finishLocked() error {
	if c.mission == nil {
		return domain.ErrNoMission
	}
	if c.typedCode != c.mission.CustomerPhoneSuffix {
		return domain.ErrCodeMismatch
	}
	if !c.sessionVerified {
		c.awaitingVerification = true
		return domain.ErrVerificationRequired
	}
	c.completeLocked()
	return nil
}

// CompleteIdentityVerification marks the session verified and, when a
// completion was suspended on the gate, applies it now.
func (c *Controller) CompleteIdentityVerification() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessionVerified = true
	if c.awaitingVerification &&
		c.status == domain.StatusArrivedAtCustomer &&
		c.mission != nil &&
		c.typedCode == c.mission.CustomerPhoneSuffix {
		c.completeLocked()
	}
	c.awaitingVerification = false
}

// completeLocked applies the completion side effects exactly once: the
// mission is cleared inside the same critical section, so a second entry is
// impossible.
func (c *Controller) completeLocked() {
	m := c.mission
	earned := m.Earnings

	c.wallet.CreditDelivery(m.ID, earned)
	c.lastEarnings = earned
	c.stats.Finished++
	c.status = domain.StatusOnline
	c.mission = nil
	c.awaitingVerification = false
	c.showSummary = true
	c.resendLeft = 0
	c.stopTimerLocked(&c.resendTimer)
	c.resetInputLocked()
	c.armGenerationLocked()
	c.metrics.Completed(earned)
}

// ─── Preferences ────────────────────────────────────────────────────────────

// SetFilters updates the radius and minimum-price filters. They apply to the
// next generation cycle; an already-offered mission is not re-evaluated.
func (c *Controller) SetFilters(maxDistance, minPrice float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxDistance = maxDistance
	c.minPrice = minPrice
}

// SetAutoAccept toggles the auto-accept preference. Enabling it during an
// active alert schedules the short-circuit for that alert too.
func (c *Controller) SetAutoAccept(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoAccept = enabled
	if enabled && c.status == domain.StatusAlerting && c.autoTimer == nil {
		c.autoTimer = c.clk.AfterFunc(c.cfg.AutoAcceptDelay, c.onAutoAccept)
	}
	if !enabled {
		c.stopTimerLocked(&c.autoTimer)
	}
}

// SetMapPicker toggles the navigation-picker flag while on a mission.
func (c *Controller) SetMapPicker(show bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status.OnMission() {
		c.mapPicker = show
	}
}

// AcknowledgeSummary dismisses the post-delivery summary panel.
func (c *Controller) AcknowledgeSummary() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showSummary = false
}

// ─── Snapshot ───────────────────────────────────────────────────────────────

// Snapshot returns a read-only copy of the controller state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	var m *domain.DeliveryMission
	if c.mission != nil {
		cp := *c.mission
		cp.Items = append([]string(nil), c.mission.Items...)
		m = &cp
	}

	codeValid := c.mission != nil && c.typedCode == c.mission.CustomerPhoneSuffix

	return Snapshot{
		Status:         c.status,
		StatusLabel:    c.status.Label(c.orderReady),
		Mission:        m,
		Countdown:      c.countdown,
		OrderReady:     c.orderReady,
		TypedCode:      c.typedCode,
		CodeValid:      codeValid,
		ResendCooldown: c.resendLeft,
		MapPicker:      c.mapPicker,

		Balance:       c.wallet.Balance(),
		DailyEarnings: c.wallet.DailyEarnings(),
		LastEarnings:  c.lastEarnings,
		Stats:         c.stats,

		MaxDistance: c.maxDistance,
		MinPrice:    c.minPrice,
		AutoAccept:  c.autoAccept,

		LocationGranted:      c.locationGranted,
		SessionVerified:      c.sessionVerified,
		AwaitingVerification: c.awaitingVerification,
		ShowSummary:          c.showSummary,
	}
}

// ─── Timer Plumbing ─────────────────────────────────────────────────────────

// resetInputLocked clears the typed code and navigation-picker flag.
// Runs whenever the driver lands back in ONLINE or OFFLINE.
func (c *Controller) resetInputLocked() {
	c.typedCode = ""
	c.mapPicker = false
}

func (c *Controller) stopTimerLocked(t *clock.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
