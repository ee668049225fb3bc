// Package domain defines the activity board's types and the contract for
// the activities API.
//
// activity.go holds Activity, the ordered Board and the ActivityService
// interface; notice.go the status messages; errors.go the sentinel errors
// and UpstreamError. The helpers here are small lookups over those types
// (Board.Find, Activity.HasParticipant, DetailOr); anything that talks to
// the network lives in the adapters.
package domain
