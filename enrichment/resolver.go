package enrichment

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os/user"
	"slices"
	"strconv"
	"strings"

	"github.com/prometheus/procfs"

	"github.com/scitags/sockdiag-go/netlink"
	"github.com/scitags/sockdiag-go/types"
)

// Resolver attaches owning processes and user names to dumped sockets.
type Resolver struct {
	Config

	logger *slog.Logger
	pFS    procfs.FS

	// lookupUser is swapped in tests.
	lookupUser func(uid uint32) string
}

func (r *Resolver) String() string {
	return "procfs resolver"
}

func NewResolver(config *Config) (*Resolver, error) {
	if config == nil {
		config = &DefaultConfig
	}

	r := Resolver{Config: *config, lookupUser: LookupUser}

	if r.Log {
		r.logger = slog.Default().With("t", "enrichment")
	} else {
		r.logger = slog.New(slog.DiscardHandler)
	}

	fs, err := procfs.NewFS(r.ProcRoot)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialise the procfs filesystem: %w", err)
	}
	r.pFS = fs

	return &r, nil
}

// Owners maps socket inodes onto the processes holding a descriptor for them.
// Processes whose descriptors can't be listed (i.e. those belonging to other
// users when running unprivileged) are skipped.
func (r *Resolver) Owners() (map[uint64][]Process, error) {
	procs, err := r.pFS.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("error listing processes: %w", err)
	}

	owners := map[uint64][]Process{}
	for _, p := range procs {
		targets, err := p.FileDescriptorTargets()
		if err != nil {
			r.logger.Log(context.Background(), types.LevelTrace, "skipping process", "pid", p.PID, "err", err)
			continue
		}

		var comm string
		for _, target := range targets {
			inode, ok := socketInode(target)
			if !ok {
				continue
			}

			if comm == "" {
				if comm, err = p.Comm(); err != nil {
					r.logger.Debug("couldn't read the command name", "pid", p.PID, "err", err)
					comm = "?"
				}
			}

			owners[inode] = append(owners[inode], Process{PID: p.PID, Comm: comm})
		}
	}

	for _, ps := range owners {
		slices.SortFunc(ps, func(a, b Process) int { return cmp.Compare(a.PID, b.PID) })
	}

	r.logger.Debug("resolved socket owners", "procs", len(procs), "inodes", len(owners))
	return owners, nil
}

// Enrich builds the presentation of every response, resolving owners and
// users as configured.
func (r *Resolver) Enrich(responses []netlink.DiagResponse) ([]Socket, error) {
	var owners map[uint64][]Process
	if r.ResolveOwners {
		var err error
		if owners, err = r.Owners(); err != nil {
			return nil, err
		}
	}

	users := map[uint32]string{}

	sockets := make([]Socket, 0, len(responses))
	for _, resp := range responses {
		s := FromResponse(resp)

		if r.ResolveUsers {
			name, ok := users[resp.UID]
			if !ok {
				name = r.lookupUser(resp.UID)
				users[resp.UID] = name
			}
			s.User = name
		}

		if owners != nil {
			s.Owners = owners[uint64(resp.INode)]
		}

		sockets = append(sockets, s)
	}

	return sockets, nil
}

// socketInode extracts the inode out of a 'socket:[<inode>]' descriptor
// target.
func socketInode(target string) (uint64, bool) {
	rest, ok := strings.CutPrefix(target, "socket:[")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, "]")
	if !ok {
		return 0, false
	}
	inode, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return inode, true
}

// LookupUser returns the name of the user behind uid or the uid itself when
// it has no entry in the user database.
func LookupUser(uid uint32) string {
	id := strconv.FormatUint(uint64(uid), 10)
	u, err := user.LookupId(id)
	if err != nil {
		return id
	}
	return u.Username
}
