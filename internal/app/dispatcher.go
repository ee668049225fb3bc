package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pscheid92/signupboard/internal/domain"
)

// Messages shown in the status area.
const (
	MsgMissingInput        = "Please provide an email and select an activity."
	MsgSigningUp           = "Signing up..."
	MsgSignupFailed        = "Signup failed"
	MsgSignupRefreshFail   = "Signup succeeded but failed to refresh UI"
	MsgRemoveFailed        = "Failed to remove participant"
	MsgRemoveRefreshFail   = "Removed but failed to refresh UI"
	MsgLoadFailed          = "Unable to load activities right now."
	msgSignedUpFormat      = "Signed up %s for %s"
	msgRemovedFormat       = "Removed %s from %s"
	msgConfirmRemoveFormat = "Remove %s from %s?"
)

// Notifier receives status messages for one visitor.
type Notifier interface {
	Show(n domain.Notice)
}

// Confirmation describes a removal waiting for the visitor's consent.
type Confirmation struct {
	Activity string
	Email    string
	Prompt   string
}

// Result is what the view needs after an action.
type Result struct {
	// Board is the snapshot to render; valid when Refreshed is true.
	Board     domain.Board
	Refreshed bool
	// LoadFailed is set when the board could not be fetched at all.
	LoadFailed bool
	// Notice is the final message shown for the action, if any.
	Notice domain.Notice
	// ResetForm asks the view to clear the signup form.
	ResetForm bool
	// Confirm is set when a removal still needs consent.
	Confirm *Confirmation
	// Err is why the action or load did not complete, nil on success.
	Err error
}

// Dispatcher runs visitor actions against the activities API.
type Dispatcher struct {
	activities domain.ActivityService
}

func NewDispatcher(activities domain.ActivityService) *Dispatcher {
	return &Dispatcher{activities: activities}
}

// Load fetches the board for an initial render.
func (d *Dispatcher) Load(ctx context.Context) Result {
	board, err := d.activities.ListActivities(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load activities", "error", err)
		return Result{LoadFailed: true, Err: err}
	}
	return Result{Board: board, Refreshed: true}
}

// Signup adds email to activity. Empty input is rejected before any call
// to the API. On success the board is re-fetched.
func (d *Dispatcher) Signup(ctx context.Context, n Notifier, email, activity string) Result {
	email = strings.TrimSpace(email)
	if err := requireInput(email, activity); err != nil {
		slog.DebugContext(ctx, "Signup rejected before request", "error", err)
		return show(n, Result{Err: err}, domain.Error(MsgMissingInput))
	}

	n.Show(domain.Info(MsgSigningUp))

	if err := d.activities.Signup(ctx, activity, email); err != nil {
		slog.InfoContext(ctx, "Signup rejected", "activity", activity, "error", err)
		return show(n, Result{Err: err}, domain.Error(domain.DetailOr(err, MsgSignupFailed)))
	}
	slog.InfoContext(ctx, "Signup accepted", "activity", activity)

	res, err := d.refresh(ctx)
	if err != nil {
		return show(n, res, domain.Error(MsgSignupRefreshFail))
	}

	res.ResetForm = true
	return show(n, res, domain.Success(fmt.Sprintf(msgSignedUpFormat, email, activity)))
}

// Remove drops email from activity once confirmed. Without confirmation
// no call is made and the result carries the prompt instead.
func (d *Dispatcher) Remove(ctx context.Context, n Notifier, activity, email string, confirmed bool) Result {
	if err := requireInput(email, activity); err != nil {
		slog.DebugContext(ctx, "Removal ignored", "error", err)
		return Result{Err: err}
	}

	if !confirmed {
		return Result{Confirm: &Confirmation{
			Activity: activity,
			Email:    email,
			Prompt:   fmt.Sprintf(msgConfirmRemoveFormat, email, activity),
		}}
	}

	if err := d.activities.RemoveParticipant(ctx, activity, email); err != nil {
		slog.InfoContext(ctx, "Removal rejected", "activity", activity, "error", err)
		return show(n, Result{Err: err}, domain.Error(domain.DetailOr(err, MsgRemoveFailed)))
	}
	slog.InfoContext(ctx, "Participant removed", "activity", activity)

	res, err := d.refresh(ctx)
	if err != nil {
		return show(n, res, domain.Error(MsgRemoveRefreshFail))
	}

	return show(n, res, domain.Success(fmt.Sprintf(msgRemovedFormat, email, activity)))
}

// refresh re-fetches the whole board after a committed mutation.
func (d *Dispatcher) refresh(ctx context.Context) (Result, error) {
	board, err := d.activities.ListActivities(ctx)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, domain.ErrUnavailable) {
			level = slog.LevelError
		}
		slog.Log(ctx, level, "Mutation committed but refresh failed", "error", err)
		return Result{LoadFailed: true, Err: err}, err
	}
	return Result{Board: board, Refreshed: true}, nil
}

// requireInput checks presence only; the API owns every other rule.
func requireInput(email, activity string) error {
	switch {
	case email == "":
		return domain.ErrEmailRequired
	case activity == "":
		return domain.ErrActivityNameRequired
	}
	return nil
}

func show(n Notifier, res Result, notice domain.Notice) Result {
	n.Show(notice)
	res.Notice = notice
	return res
}
