package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	const maxFailures = 3

	tests := []struct {
		name    string
		from    Snapshot
		event   Event
		want    Snapshot
		wantErr error
	}{
		{name: "NoCode_Issue", from: Snapshot{State: StateNoCode}, event: EventIssue, want: Snapshot{State: StateIssued}},
		{name: "NoCode_Match", from: Snapshot{State: StateNoCode}, event: EventVerifyMatch, want: Snapshot{State: StateNoCode}, wantErr: ErrNoActiveCode},
		{name: "NoCode_Mismatch", from: Snapshot{State: StateNoCode}, event: EventVerifyMismatch, want: Snapshot{State: StateNoCode}, wantErr: ErrNoActiveCode},
		{name: "NoCode_Expire", from: Snapshot{State: StateNoCode}, event: EventExpire, want: Snapshot{State: StateNoCode}},
		{name: "NoCode_Unlock", from: Snapshot{State: StateNoCode}, event: EventUnlock, want: Snapshot{State: StateNoCode}},
		{name: "Issued_Match", from: Snapshot{State: StateIssued}, event: EventVerifyMatch, want: Snapshot{State: StateVerified}},
		{name: "Issued_Mismatch", from: Snapshot{State: StateIssued}, event: EventVerifyMismatch, want: Snapshot{State: StateFailing, Failures: 1}},
		{name: "Issued_Expire", from: Snapshot{State: StateIssued}, event: EventExpire, want: Snapshot{State: StateNoCode}},
		{name: "Issued_Reissue", from: Snapshot{State: StateIssued}, event: EventIssue, want: Snapshot{State: StateIssued}},
		{name: "Issued_Unlock", from: Snapshot{State: StateIssued}, event: EventUnlock, want: Snapshot{State: StateIssued}},
		{name: "Failing1_Mismatch", from: Snapshot{State: StateFailing, Failures: 1}, event: EventVerifyMismatch, want: Snapshot{State: StateFailing, Failures: 2}},
		{name: "Failing2_Mismatch", from: Snapshot{State: StateFailing, Failures: 2}, event: EventVerifyMismatch, want: Snapshot{State: StateLockedOut, Failures: 3}},
		{name: "Failing_Match", from: Snapshot{State: StateFailing, Failures: 2}, event: EventVerifyMatch, want: Snapshot{State: StateVerified}},
		{name: "Failing_Reissue", from: Snapshot{State: StateFailing, Failures: 2}, event: EventIssue, want: Snapshot{State: StateIssued}},
		{name: "Failing_Expire", from: Snapshot{State: StateFailing, Failures: 1}, event: EventExpire, want: Snapshot{State: StateNoCode}},
		{name: "Verified_Replay", from: Snapshot{State: StateVerified}, event: EventVerifyMatch, want: Snapshot{State: StateVerified}, wantErr: ErrNoActiveCode},
		{name: "Verified_Issue", from: Snapshot{State: StateVerified}, event: EventIssue, want: Snapshot{State: StateIssued}},
		{name: "Verified_Expire", from: Snapshot{State: StateVerified}, event: EventExpire, want: Snapshot{State: StateNoCode}},
		{name: "LockedOut_Issue", from: Snapshot{State: StateLockedOut}, event: EventIssue, want: Snapshot{State: StateLockedOut}, wantErr: ErrLocked},
		{name: "LockedOut_Match", from: Snapshot{State: StateLockedOut}, event: EventVerifyMatch, want: Snapshot{State: StateLockedOut}, wantErr: ErrLocked},
		{name: "LockedOut_Mismatch", from: Snapshot{State: StateLockedOut}, event: EventVerifyMismatch, want: Snapshot{State: StateLockedOut}, wantErr: ErrLocked},
		{name: "LockedOut_Expire", from: Snapshot{State: StateLockedOut}, event: EventExpire, want: Snapshot{State: StateLockedOut}},
		{name: "LockedOut_Unlock", from: Snapshot{State: StateLockedOut}, event: EventUnlock, want: Snapshot{State: StateNoCode}},
		{name: "Any_Reset", from: Snapshot{State: StateFailing, Failures: 2}, event: EventReset, want: Snapshot{State: StateNoCode}},
		{name: "UnknownEvent", from: Snapshot{State: StateIssued}, event: Event(99), want: Snapshot{State: StateIssued}, wantErr: ErrEventUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got, err := Transition(tt.from, tt.event, maxFailures)

			// Assert
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransition_EveryPairDefined(t *testing.T) {
	states := []State{StateNoCode, StateIssued, StateFailing, StateVerified, StateLockedOut}
	events := []Event{EventIssue, EventVerifyMatch, EventVerifyMismatch, EventExpire, EventUnlock, EventReset}

	for _, s := range states {
		for _, ev := range events {
			// Act
			_, err := Transition(Snapshot{State: s}, ev, 3)

			// Assert
			assert.NotErrorIs(t, err, ErrEventUnknown, "state=%s event=%d", s, ev)
		}
	}
}

func TestState_Responses(t *testing.T) {
	tests := []struct {
		state   State
		request Response
		verify  Response
	}{
		{state: StateNoCode, request: ResponseProceed, verify: ResponseRejectNoCode},
		{state: StateIssued, request: ResponseProceed, verify: ResponseProceed},
		{state: StateFailing, request: ResponseProceed, verify: ResponseProceed},
		{state: StateVerified, request: ResponseProceed, verify: ResponseRejectNoCode},
		{state: StateLockedOut, request: ResponseRejectLocked, verify: ResponseRejectLocked},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			// Assert
			assert.Equal(t, tt.request, tt.state.RequestResponse())
			assert.Equal(t, tt.verify, tt.state.VerifyResponse())
		})
	}
}

func TestDerive(t *testing.T) {
	assert.Equal(t, Snapshot{State: StateNoCode}, Derive(false, false, 2))
	assert.Equal(t, Snapshot{State: StateIssued}, Derive(false, true, 0))
	assert.Equal(t, Snapshot{State: StateFailing, Failures: 2}, Derive(false, true, 2))
	assert.Equal(t, Snapshot{State: StateLockedOut}, Derive(true, false, 0))
}
