package lifecycle

import (
	"errors"
	"testing"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateCreated, "Created"},
		{StateSettingUp, "SettingUp"},
		{StateRunning, "Running"},
		{StateStopRequested, "StopRequested"},
		{StateTearingDown, "TearingDown"},
		{StateStopped, "Stopped"},
		{StateFaulted, "Faulted"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		got := tt.state.String()
		if got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestState_IsTerminal(t *testing.T) {
	for s := StateCreated; s <= StateFaulted; s++ {
		want := s == StateStopped || s == StateFaulted
		if got := s.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", s, got, want)
		}
	}
}

func TestSetupResult_String(t *testing.T) {
	tests := []struct {
		result SetupResult
		want   string
	}{
		{SetupNotStarted, "NotStarted"},
		{SetupSuccessful, "Successful"},
		{SetupUnsuccessful, "Unsuccessful"},
		{SetupResult(42), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.result.String(); got != tt.want {
			t.Errorf("SetupResult(%d).String() = %s, want %s", tt.result, got, tt.want)
		}
	}
}

func TestValidTransition(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
		want bool
	}{
		{"created to setting up", StateCreated, StateSettingUp, true},
		{"created to stopped", StateCreated, StateStopped, true},
		{"setting up to running", StateSettingUp, StateRunning, true},
		{"setting up to stopped", StateSettingUp, StateStopped, true},
		{"setting up to faulted", StateSettingUp, StateFaulted, true},
		{"setting up to tearing down", StateSettingUp, StateTearingDown, true},
		{"running to stop requested", StateRunning, StateStopRequested, true},
		{"running to faulted", StateRunning, StateFaulted, true},
		{"stop requested to tearing down", StateStopRequested, StateTearingDown, true},
		{"tearing down to stopped", StateTearingDown, StateStopped, true},
		{"tearing down to faulted", StateTearingDown, StateFaulted, true},

		{"created to running", StateCreated, StateRunning, false},
		{"created to faulted", StateCreated, StateFaulted, false},
		{"running to stopped", StateRunning, StateStopped, false},
		{"running to setting up", StateRunning, StateSettingUp, false},
		{"setting up to stop requested", StateSettingUp, StateStopRequested, false},
		{"stop requested to stopped", StateStopRequested, StateStopped, false},
		{"stop requested to faulted", StateStopRequested, StateFaulted, false},
		{"stopped to setting up", StateStopped, StateSettingUp, false},
		{"faulted to setting up", StateFaulted, StateSettingUp, false},
		{"faulted to stopped", StateFaulted, StateStopped, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("ValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTransitionError(t *testing.T) {
	err := error(&TransitionError{From: StateStopped, To: StateRunning})

	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("errors.Is(%v, ErrInvalidTransition) = false, want true", err)
	}
	want := "invalid state transition: Stopped -> Running"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestObservers_FanOut(t *testing.T) {
	a := &recordingObserver{}
	b := &recordingObserver{}
	o := Observers(a, nil, b)

	o.OnStateChange(StateCreated, StateSettingUp)
	o.OnBeforeSetup()
	o.OnSetupFailed(errors.New("x"))
	o.OnStopRequested(StateRunning, true)

	want := []string{"Created->SettingUp", "before-setup", "setup-failed", "stop-requested:Running:true"}
	for name, r := range map[string]*recordingObserver{"a": a, "b": b} {
		got := r.Events()
		if len(got) != len(want) {
			t.Fatalf("%s: got %v, want %v", name, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s: event %d = %s, want %s", name, i, got[i], want[i])
			}
		}
	}
}
