package app

import (
	"context"
	"errors"
	"sync"

	"github.com/pscheid92/signupboard/internal/domain"
)

// --- Mock implementations ---

type mockActivityService struct {
	listFn   func(ctx context.Context) (domain.Board, error)
	signupFn func(ctx context.Context, activity, email string) error
	removeFn func(ctx context.Context, activity, email string) error

	mu          sync.Mutex
	listCalls   int
	signupCalls int
	removeCalls int
}

func (m *mockActivityService) ListActivities(ctx context.Context) (domain.Board, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return domain.Board{}, nil
}

func (m *mockActivityService) Signup(ctx context.Context, activity, email string) error {
	m.mu.Lock()
	m.signupCalls++
	m.mu.Unlock()
	if m.signupFn != nil {
		return m.signupFn(ctx, activity, email)
	}
	return errors.New("not implemented")
}

func (m *mockActivityService) RemoveParticipant(ctx context.Context, activity, email string) error {
	m.mu.Lock()
	m.removeCalls++
	m.mu.Unlock()
	if m.removeFn != nil {
		return m.removeFn(ctx, activity, email)
	}
	return errors.New("not implemented")
}

func (m *mockActivityService) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls + m.signupCalls + m.removeCalls
}

type recordingNotifier struct {
	shown []domain.Notice
}

func (r *recordingNotifier) Show(n domain.Notice) {
	r.shown = append(r.shown, n)
}

func (r *recordingNotifier) last() domain.Notice {
	if len(r.shown) == 0 {
		return domain.Notice{}
	}
	return r.shown[len(r.shown)-1]
}

// fakeAPI is an in-memory activities API that behaves like the real one:
// duplicate signups and unknown participants are rejected with a detail.
type fakeAPI struct {
	mu    sync.Mutex
	board domain.Board
}

func newFakeAPI(activities ...domain.Activity) *fakeAPI {
	return &fakeAPI{board: domain.Board{Activities: activities}}
}

func (f *fakeAPI) ListActivities(_ context.Context) (domain.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Activity, len(f.board.Activities))
	for i, a := range f.board.Activities {
		a.Participants = append([]string(nil), a.Participants...)
		out[i] = a
	}
	return domain.Board{Activities: out}, nil
}

func (f *fakeAPI) Signup(_ context.Context, activity, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.board.Activities {
		a := &f.board.Activities[i]
		if a.Name != activity {
			continue
		}
		if a.HasParticipant(email) {
			return &domain.UpstreamError{Op: "signup", Status: 400, Detail: "Student is already signed up"}
		}
		if a.MaxParticipants > 0 && len(a.Participants) >= a.MaxParticipants {
			return &domain.UpstreamError{Op: "signup", Status: 400, Detail: "Activity full"}
		}
		a.Participants = append(a.Participants, email)
		return nil
	}
	return &domain.UpstreamError{Op: "signup", Status: 404, Detail: "Activity not found"}
}

func (f *fakeAPI) RemoveParticipant(_ context.Context, activity, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.board.Activities {
		a := &f.board.Activities[i]
		if a.Name != activity {
			continue
		}
		for j, p := range a.Participants {
			if p == email {
				a.Participants = append(a.Participants[:j], a.Participants[j+1:]...)
				return nil
			}
		}
		return &domain.UpstreamError{Op: "remove participant", Status: 404, Detail: "Participant not found"}
	}
	return &domain.UpstreamError{Op: "remove participant", Status: 404, Detail: "Activity not found"}
}
