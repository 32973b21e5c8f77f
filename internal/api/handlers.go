package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ─── Driver State ───────────────────────────────────────────────────────────

// handleState returns the full state snapshot the UI renders from.
// GET /api/state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// locationRequest is the outcome of the OS location prompt.
type locationRequest struct {
	Granted *bool `json:"granted" validate:"required"`
}

// handleLocation records whether the driver granted location access.
// POST /api/driver/location
func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := s.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.ctrl.SetLocationGranted(*req.Granted)
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// handleOnline flips the driver online.
// POST /api/driver/online
func (s *Server) handleOnline(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.RequestOnline(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// handleOffline flips the driver offline.
// POST /api/driver/offline
func (s *Server) handleOffline(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.RequestOffline(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// ─── Mission Actions ────────────────────────────────────────────────────────

// handleAccept accepts the active offer.
// POST /api/mission/accept
func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.AcceptMission(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// handleReject declines the active offer.
// POST /api/mission/reject
func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.RejectMission(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// handleAdvance moves the mission to its next stage.
// POST /api/mission/advance
func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Advance(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// deliveryCodeRequest carries the code the driver typed at drop-off.
type deliveryCodeRequest struct {
	Code string `json:"code" validate:"required,len=4,numeric"`
}

// handleDeliveryCode stores the typed confirmation code.
// POST /api/mission/code
func (s *Server) handleDeliveryCode(w http.ResponseWriter, r *http.Request) {
	var req deliveryCodeRequest
	if err := s.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ctrl.SubmitDeliveryCode(req.Code); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// handleCodeResend asks the customer's code to be re-sent.
// POST /api/mission/code/resend
func (s *Server) handleCodeResend(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.RequestCodeResend(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// mapPickerRequest toggles the navigation app chooser.
type mapPickerRequest struct {
	Show *bool `json:"show" validate:"required"`
}

// handleMapPicker toggles the navigation picker and reports which address
// navigation should target for the current leg.
// POST /api/mission/map-picker
func (s *Server) handleMapPicker(w http.ResponseWriter, r *http.Request) {
	var req mapPickerRequest
	if err := s.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.ctrl.SetMapPicker(*req.Show)

	snap := s.ctrl.Snapshot()
	resp := map[string]interface{}{
		"map_picker": snap.MapPicker,
	}
	if snap.Mission != nil {
		if snap.Status.StoreLeg() {
			resp["nav_address"] = snap.Mission.StoreAddress
		} else {
			resp["nav_address"] = snap.Mission.CustomerAddress
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSummaryAck dismisses the post-delivery summary.
// POST /api/mission/summary/ack
func (s *Server) handleSummaryAck(w http.ResponseWriter, r *http.Request) {
	s.ctrl.AcknowledgeSummary()
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// ─── Settings ───────────────────────────────────────────────────────────────

// filtersRequest bounds match the UI sliders.
type filtersRequest struct {
	MaxDistance float64 `json:"max_distance" validate:"required,gte=1,lte=50"`
	MinPrice    float64 `json:"min_price" validate:"gte=0,lte=30"`
}

// handleFilters updates the mission generation filters.
// POST /api/settings/filters
func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if err := s.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.ctrl.SetFilters(req.MaxDistance, req.MinPrice)
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// autoAcceptRequest toggles hands-free acceptance.
type autoAcceptRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// handleAutoAccept toggles the auto-accept preference.
// POST /api/settings/auto-accept
func (s *Server) handleAutoAccept(w http.ResponseWriter, r *http.Request) {
	var req autoAcceptRequest
	if err := s.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.ctrl.SetAutoAccept(*req.Enabled)
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// handleGetTheme returns the persisted UI theme.
// GET /api/settings/theme
func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.settings.Theme()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": theme})
}

// themeRequest restricts the theme to the two palettes the UI ships.
type themeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=dark light"`
}

// handleSetTheme persists the UI theme.
// PUT /api/settings/theme
func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := s.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.settings.SetTheme(req.Theme); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": req.Theme})
}

// ─── Wallet ─────────────────────────────────────────────────────────────────

// handleWallet returns the balance and the transaction history.
// GET /api/wallet
func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"balance":        s.wallet.Balance(),
		"daily_earnings": s.wallet.DailyEarnings(),
		"transactions":   s.wallet.Transactions(),
	})
}

// handleAnticipate withdraws the full balance minus the anticipation fee.
// POST /api/wallet/anticipate
func (s *Server) handleAnticipate(w http.ResponseWriter, r *http.Request) {
	withdrawn, err := s.wallet.Anticipate()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"withdrawn": withdrawn,
		"balance":   s.wallet.Balance(),
	})
}

// ─── Notifications ──────────────────────────────────────────────────────────

// handleNotifications returns the inbox, newest first.
// GET /api/notifications
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.inbox.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	unread, err := s.inbox.UnreadCount()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": list,
		"unread_count":  unread,
	})
}

// handleNotificationRead flags one inbox entry as read.
// POST /api/notifications/{id}/read
func (s *Server) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing notification id")
		return
	}
	if err := s.inbox.MarkRead(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─── Identity Verification ──────────────────────────────────────────────────

// handleVerificationStep returns the flow's current step.
// GET /api/verification
func (s *Server) handleVerificationStep(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"step": string(s.verify.Step()),
	})
}

// handleVerificationBegin starts the selfie flow.
// POST /api/verification/begin
func (s *Server) handleVerificationBegin(w http.ResponseWriter, r *http.Request) {
	if err := s.verify.Begin(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"step": string(s.verify.Step())})
}

// handleVerificationCapture takes the selfie.
// POST /api/verification/capture
func (s *Server) handleVerificationCapture(w http.ResponseWriter, r *http.Request) {
	if err := s.verify.Capture(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"step": string(s.verify.Step())})
}

// handleVerificationFinish concludes processing and unblocks the pending
// delivery, if one is waiting on the gate.
// POST /api/verification/finish
func (s *Server) handleVerificationFinish(w http.ResponseWriter, r *http.Request) {
	if err := s.verify.Finish(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}
