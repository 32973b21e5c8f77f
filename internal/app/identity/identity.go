// Package identity implements the facial verification flow that gates the
// first delivery completion of a session:
//
//	START → CAMERA → PROCESSING → SUCCESS
//
// Camera acquisition failure returns the flow to START; nothing downstream
// (mission, earnings) is touched until SUCCESS is reached.
package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/papaleguas-app/papaleguas/internal/domain"
)

// Step is one stage of the verification flow.
type Step string

const (
	StepStart      Step = "START"
	StepCamera     Step = "CAMERA"
	StepProcessing Step = "PROCESSING"
	StepSuccess    Step = "SUCCESS"
)

// Camera abstracts the device camera. The production build wires the mock.
type Camera interface {
	Acquire(ctx context.Context) error
}

// MockCamera simulates the device camera; set Err to simulate denial.
type MockCamera struct {
	Err error
}

// Acquire pretends to grab a frame.
func (m *MockCamera) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Err
}

// Flow drives the verification steps and reports success upstream once.
type Flow struct {
	mu        sync.Mutex
	step      Step
	camera    Camera
	onSuccess func()
}

// NewFlow creates a flow at START.
func NewFlow(camera Camera) *Flow {
	return &Flow{step: StepStart, camera: camera}
}

// OnSuccess registers the callback invoked when the flow reaches SUCCESS.
func (f *Flow) OnSuccess(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSuccess = fn
}

// Step returns the current stage.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Begin moves START → CAMERA.
func (f *Flow) Begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepStart {
		return domain.ErrInvalidStep
	}
	f.step = StepCamera
	return nil
}

// Capture grabs a frame and moves CAMERA → PROCESSING. Acquisition failure
// drops the flow back to START so the driver can retry.
func (f *Flow) Capture(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepCamera {
		return domain.ErrInvalidStep
	}
	if err := f.camera.Acquire(ctx); err != nil {
		f.step = StepStart
		return fmt.Errorf("%w: %v", domain.ErrCameraUnavailable, err)
	}
	f.step = StepProcessing
	return nil
}

// Finish moves PROCESSING → SUCCESS and notifies upstream exactly once.
func (f *Flow) Finish() error {
	f.mu.Lock()
	if f.step != StepProcessing {
		f.mu.Unlock()
		return domain.ErrInvalidStep
	}
	f.step = StepSuccess
	fn := f.onSuccess
	f.mu.Unlock()

	if fn != nil {
		fn()
	}
	return nil
}

// Reset returns the flow to START for a fresh session.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = StepStart
}
