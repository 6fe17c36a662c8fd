package types

import (
	"fmt"
	"strings"
)

// State is the enumeration of TCP states.
// https://datatracker.ietf.org/doc/draft-ietf-tcpm-rfc793bis/
// and uapi/linux/tcp.h
type State int32

func (x State) String() string {
	s, ok := stateName[x]
	if !ok {
		return fmt.Sprintf("UNKNOWN_STATE_%d", x)
	}
	return s
}

// Flag returns the bit representing the state in an idiag_states bitmask.
// The kernel checks membership with (1 << sk->sk_state) & r->idiag_states.
func (x State) Flag() uint32 {
	return 1 << uint32(x)
}

// ParseState maps a state name such as "listen", "LISTEN" or "TCP_LISTEN"
// onto its State.
func ParseState(name string) (State, error) {
	n := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(name)), "TCP_")
	for s, sName := range stateName {
		if sName == n {
			return s, nil
		}
	}
	return TCP_INVALID, fmt.Errorf("unknown tcp state %q", name)
}

// StatesMask ORs the flags of every named state. The special name "ALL"
// selects TCP_ALL_FLAGS.
func StatesMask(names []string) (uint32, error) {
	if len(names) == 0 {
		return 0, fmt.Errorf("no tcp states were provided")
	}

	var mask uint32
	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), "all") {
			mask |= TCP_ALL_FLAGS
			continue
		}
		s, err := ParseState(name)
		if err != nil {
			return 0, err
		}
		if s == TCP_INVALID {
			return 0, fmt.Errorf("state %q cannot be queried", name)
		}
		mask |= s.Flag()
	}

	return mask, nil
}

// StatesString renders a states bitmask as the '|'-joined names of the
// states it selects.
func StatesString(mask uint32) string {
	if mask&TCP_ALL_FLAGS == TCP_ALL_FLAGS {
		return "ALL"
	}

	names := []string{}
	for s := TCP_ESTABLISHED; s <= TCP_CLOSING; s++ {
		if mask&s.Flag() != 0 {
			names = append(names, s.String())
		}
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}
