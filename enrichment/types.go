package enrichment

import (
	"encoding/json"

	"github.com/fatih/structs"

	"github.com/scitags/sockdiag-go/netlink"
)

// validTags holds the struct tags Socket can be marshalled with.
var validTags = map[string]struct{}{
	// The default: every field makes it into the output.
	"structs": {},

	// Only the local address and port are kept. Fields with an associated
	// `lean:"-"` tag are skipped.
	"lean": {},
}

// ValidVerbosity reports whether v names a tag Socket can be marshalled with.
func ValidVerbosity(v string) bool {
	_, ok := validTags[v]
	return ok
}

// Process is a process holding a descriptor for a socket.
type Process struct {
	PID  int    `structs:"pid" lean:"pid"`
	Comm string `structs:"comm" lean:"comm"`
}

// Socket is the presentation of a dumped socket. The set of marshalled fields
// depends on Verbosity, check validTags for the available choices.
type Socket struct {
	Verbosity string `structs:"-" lean:"-"`

	IP   string `structs:"ip" lean:"ip"`
	Port uint16 `structs:"port" lean:"port"`

	State  string    `structs:"state,omitempty" lean:"-"`
	UID    uint32    `structs:"uid" lean:"-"`
	User   string    `structs:"user,omitempty" lean:"-"`
	Inode  uint32    `structs:"inode" lean:"-"`
	RQueue uint32    `structs:"rqueue" lean:"-"`
	WQueue uint32    `structs:"wqueue" lean:"-"`
	Owners []Process `structs:"owners,omitempty" lean:"-"`
}

func FromRecord(r netlink.SocketRecord) Socket {
	return Socket{IP: r.IP, Port: r.Port}
}

func FromResponse(r netlink.DiagResponse) Socket {
	rec := r.Record()
	return Socket{
		IP:     rec.IP,
		Port:   rec.Port,
		State:  r.TCPState().String(),
		UID:    r.UID,
		Inode:  r.INode,
		RQueue: r.RQueue,
		WQueue: r.WQueue,
	}
}

func (s Socket) String() string {
	return netlink.SocketRecord{IP: s.IP, Port: s.Port}.String()
}

// MarshalJSON implements the json.Marshaler interface. The struct tag named
// by Verbosity drives what fields are marshalled, falling back to the
// default `structs` tag when it's empty or unknown.
func (s *Socket) MarshalJSON() ([]byte, error) {
	st := structs.New(s)

	if ValidVerbosity(s.Verbosity) {
		st.TagName = s.Verbosity
	}

	return json.Marshal(st.Map())
}
