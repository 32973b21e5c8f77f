package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency. Most "failure" in
// this app is modeled as state (an invalid code disables the confirm action);
// these sentinels cover the few operations that genuinely refuse.

var (
	// Availability errors
	ErrLocationPermission = errors.New("location permission not granted")

	// Mission errors
	ErrNoMission         = errors.New("no active mission")
	ErrInvalidTransition = errors.New("action not allowed in current status")
	ErrOrderNotReady     = errors.New("order is still being prepared")
	ErrCodeMismatch      = errors.New("delivery code does not match")
	ErrResendCooldown    = errors.New("code resend is cooling down")

	// Verification errors
	ErrVerificationRequired = errors.New("identity verification required")
	ErrCameraUnavailable    = errors.New("camera unavailable")
	ErrInvalidStep          = errors.New("verification step out of order")

	// Wallet errors
	ErrInsufficientBalance = errors.New("balance does not cover the anticipation fee")
)
