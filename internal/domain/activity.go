package domain

import "context"

// Activity is a signup-able offering as reported by the activities API.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// HasParticipant reports whether email is registered for the activity.
func (a Activity) HasParticipant(email string) bool {
	for _, p := range a.Participants {
		if p == email {
			return true
		}
	}
	return false
}

// Board is one snapshot of the activity mapping. Activities keep the
// order in which the API listed them.
type Board struct {
	Activities []Activity
}

func (b Board) Len() int {
	return len(b.Activities)
}

func (b Board) Names() []string {
	names := make([]string, len(b.Activities))
	for i, a := range b.Activities {
		names[i] = a.Name
	}
	return names
}

// Find returns the activity with the given name.
func (b Board) Find(name string) (Activity, bool) {
	for _, a := range b.Activities {
		if a.Name == name {
			return a, true
		}
	}
	return Activity{}, false
}

// ActivityService is the board's view of the activities API.
type ActivityService interface {
	ListActivities(ctx context.Context) (Board, error)
	Signup(ctx context.Context, activity, email string) error
	RemoveParticipant(ctx context.Context, activity, email string) error
}
