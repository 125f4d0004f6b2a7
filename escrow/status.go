package escrow

import (
	"encoding/json"
	"fmt"
)

// Status is the closed set of escrow transaction states.
type Status int

const (
	StatusPending Status = iota
	StatusCompleted
	StatusReleased
	StatusCancelled
	StatusDisputed
	StatusRefunded
	StatusScheduled
)

var statusNames = map[Status]string{
	StatusPending:   "pending",
	StatusCompleted: "completed",
	StatusReleased:  "released",
	StatusCancelled: "cancelled",
	StatusDisputed:  "disputed",
	StatusRefunded:  "refunded",
	StatusScheduled: "scheduled",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DisputeStatus is either open or resolved.
type DisputeStatus int

const (
	DisputeOpen DisputeStatus = iota
	DisputeResolved
)

func (s DisputeStatus) String() string {
	if s == DisputeOpen {
		return "open"
	}
	return "resolved"
}

func (s DisputeStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *DisputeStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "open":
		*s = DisputeOpen
	case "resolved":
		*s = DisputeResolved
	default:
		return fmt.Errorf("unknown dispute status %q", name)
	}
	return nil
}

// Resolution is the outcome of a resolved dispute.
type Resolution int

const (
	ResolutionRefund Resolution = iota
	ResolutionRelease
)

func (r Resolution) String() string {
	if r == ResolutionRefund {
		return "refund"
	}
	return "release"
}

func ParseResolution(s string) (Resolution, error) {
	switch s {
	case "refund":
		return ResolutionRefund, nil
	case "release":
		return ResolutionRelease, nil
	default:
		return 0, fmt.Errorf("unknown resolution %q", s)
	}
}
