package booking

import "fmt"

// Status is the lifecycle stage of the booking form.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusSubmitting:
		return "SUBMITTING"
	case StatusSuccess:
		return "SUCCESS"
	case StatusError:
		return "ERROR"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText renders the status as its upper-case name in JSON.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CanSubmit reports whether the submit action is enabled in this status.
func (s Status) CanSubmit() bool {
	switch s {
	case StatusIdle, StatusError:
		return true
	case StatusSubmitting, StatusSuccess:
		return false
	default:
		return false
	}
}

// canTransition enforces Idle|Error -> Submitting -> Success|Error, Success -> Idle.
func (s Status) canTransition(to Status) bool {
	switch s {
	case StatusIdle:
		return to == StatusSubmitting
	case StatusSubmitting:
		return to == StatusSuccess || to == StatusError
	case StatusSuccess:
		return to == StatusIdle
	case StatusError:
		return to == StatusSubmitting
	default:
		return false
	}
}
