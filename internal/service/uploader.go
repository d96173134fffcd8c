package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/reelpost/internal/models"
)

// Outcome is the terminal result of one upload attempt.
type Outcome struct {
	Success  bool
	Platform models.Platform
	NativeID string
	Error    string
}

// uploadSession carries the state of a single attempt between phases.
type uploadSession struct {
	locator   string
	caption   string
	fileSize  int64
	handle    string
	uploadURL string
	nativeID  string
}

// uploadProtocol is implemented by every platform variant. Phases a
// platform does not need are no-ops.
type uploadProtocol interface {
	platform() models.Platform
	precondition(s *uploadSession) error
	initiate(ctx context.Context, s *uploadSession) error
	transfer(ctx context.Context, s *uploadSession) error
	finish(ctx context.Context, s *uploadSession) error
	checkStatus(ctx context.Context, s *uploadSession) (pollState, string)
	publish(ctx context.Context, s *uploadSession) error
	timeoutPolicy() timeoutPolicy
}

// timeoutPolicy decides what reaching the poll ceiling means for a platform.
type timeoutPolicy struct {
	success bool
	stage   string
}

type pollState int

const (
	pollPending pollState = iota
	pollComplete
	pollFailed
	pollTimedOut
	pollCanceled
)

type pollWindow struct {
	interval time.Duration
	timeout  time.Duration
}

// wait calls check until it reports a terminal state or the ceiling is
// reached.
func (w pollWindow) wait(ctx context.Context, check func(ctx context.Context) (pollState, string)) (pollState, string) {
	start := time.Now()
	for time.Since(start) < w.timeout {
		state, detail := check(ctx)
		if state == pollComplete || state == pollFailed {
			return state, detail
		}

		select {
		case <-ctx.Done():
			return pollCanceled, ctx.Err().Error()
		case <-time.After(w.interval):
		}
	}
	return pollTimedOut, ""
}

var errPollInterrupted = errors.New("status polling interrupted")

func runUpload(ctx context.Context, p uploadProtocol, w pollWindow, logger *slog.Logger, s *uploadSession) *Outcome {
	out := &Outcome{Platform: p.platform()}
	fail := func(err error) *Outcome {
		out.Error = err.Error()
		logger.Info("upload failed", "error", out.Error)
		return out
	}

	if err := p.precondition(s); err != nil {
		return fail(err)
	}

	logger.Debug("initiating upload")
	if err := p.initiate(ctx, s); err != nil {
		return fail(err)
	}
	if err := p.transfer(ctx, s); err != nil {
		return fail(err)
	}
	if err := p.finish(ctx, s); err != nil {
		return fail(err)
	}

	logger.Debug("polling status", "handle", s.handle)
	state, detail := w.wait(ctx, func(ctx context.Context) (pollState, string) {
		return p.checkStatus(ctx, s)
	})
	switch state {
	case pollFailed:
		return fail(errors.New(detail))
	case pollCanceled:
		return fail(fmt.Errorf("%w: %s", errPollInterrupted, detail))
	case pollTimedOut:
		policy := p.timeoutPolicy()
		if !policy.success {
			return fail(fmt.Errorf("%s timed out after %s", policy.stage, formatSeconds(w.timeout)))
		}
		logger.Warn("status not confirmed before timeout, assuming published",
			"handle", s.handle,
			"timeout", w.timeout,
		)
	}

	if err := p.publish(ctx, s); err != nil {
		return fail(err)
	}

	out.Success = true
	out.NativeID = s.nativeID
	return out
}
