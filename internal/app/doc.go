// Package app provides the application service layer.
//
// The Dispatcher turns visitor actions (load, signup, removal) into calls on the
// activities API and reconciles the view afterwards by re-fetching the whole
// board. It never patches a previous snapshot. Status messages go to the
// Notifier handed in by the caller.
package app
