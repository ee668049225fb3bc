// Package notice implements the transient status area shown above the board.
//
// An Area holds at most one message. Show replaces the message and its kind,
// makes it visible and schedules a hide after a fixed delay. Earlier hide
// timers are not cancelled, so a pending timer from an older message can hide
// a newer one early (last write wins, no queue).
//
// Registry keeps one Area per visitor and evicts areas that have been idle
// longer than their TTL.
package notice
