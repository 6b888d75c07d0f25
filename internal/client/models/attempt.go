package models

import (
	"fmt"
	"time"
)

// State is a step of one upload attempt.
type State string

const (
	StateIdle            State = "idle"
	StateValidated       State = "validated"
	StateNegotiated      State = "negotiated"
	StateTransferring    State = "transferring"
	StateConfirmed       State = "confirmed"
	StateCancelRequested State = "cancel_requested"
	StateSucceeded       State = "succeeded"
	StateFailed          State = "failed"
)

var transitions = map[State][]State{
	StateIdle:            {StateValidated, StateFailed},
	StateValidated:       {StateNegotiated, StateFailed},
	StateNegotiated:      {StateTransferring, StateCancelRequested, StateFailed},
	StateTransferring:    {StateConfirmed, StateCancelRequested, StateFailed},
	StateConfirmed:       {StateSucceeded, StateFailed},
	StateCancelRequested: {StateFailed},
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Attempt tracks one pass through the upload pipeline. A new attempt always
// starts at StateIdle; there is no retry inside an attempt.
type Attempt struct {
	State      State
	Credential *UploadCredential
	History    []State
}

// NewAttempt returns an attempt in StateIdle.
func NewAttempt() *Attempt {
	return &Attempt{State: StateIdle, History: []State{StateIdle}}
}

// Advance moves the attempt to next, rejecting transitions the protocol
// does not allow.
func (a *Attempt) Advance(next State) error {
	for _, allowed := range transitions[a.State] {
		if allowed == next {
			a.State = next
			a.History = append(a.History, next)
			return nil
		}
	}
	return fmt.Errorf("illegal upload state transition %s -> %s", a.State, next)
}

// PendingAttempt is a journaled credential that has been negotiated but has
// not reached a terminal state yet.
type PendingAttempt struct {
	UploadToken  string
	StorageKey   string
	EntityType   string
	EntityID     int64
	FileCategory string
	FileName     string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}
