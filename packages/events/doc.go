// Package events models the lifecycle events a test engine emits and
// delivers them to listeners.
//
// Events reach listeners through an Emitter, either directly from an
// in-process engine or by replaying a JSON-lines stream with Replay.
// Delivery is synchronous and ordered; listeners need no locking.
package events
