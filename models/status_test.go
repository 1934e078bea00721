package models

import "testing"

func TestAppointmentStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to AppointmentStatus
	}{
		{AppointmentPending, AppointmentReady},
		{AppointmentPending, AppointmentCancelled},
		{AppointmentReady, AppointmentInProgress},
		{AppointmentReady, AppointmentCancelled},
		{AppointmentInProgress, AppointmentCompleted},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransition(tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to AppointmentStatus
	}{
		{AppointmentPending, AppointmentInProgress},
		{AppointmentPending, AppointmentCompleted},
		{AppointmentReady, AppointmentCompleted},
		{AppointmentInProgress, AppointmentCancelled},
		{AppointmentCompleted, AppointmentPending},
		{AppointmentCancelled, AppointmentPending},
		{AppointmentCancelled, AppointmentReady},
	}
	for _, tc := range denied {
		if tc.from.CanTransition(tc.to) {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestRoomStatusTransitionsAreMonotonic(t *testing.T) {
	statuses := []RoomStatus{RoomReady, RoomActive, RoomEnded}
	for i, from := range statuses {
		for j, to := range statuses {
			want := j == i+1
			if got := from.CanTransition(to); got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}
