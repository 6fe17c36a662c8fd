package enrichment

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"

	"github.com/scitags/sockdiag-go/netlink"
	"github.com/scitags/sockdiag-go/types"
)

func init() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: true,
		Level:     types.LevelError,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time.
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			// Remove the directory from the source's filename.
			if a.Key == slog.SourceKey {
				source := a.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return a
		},
	}))
	slog.SetDefault(logger)
}

type fakeProc struct {
	comm string
	fds  map[string]string
}

// fakeProcFS lays out a minimal /proc with the given processes.
func fakeProcFS(t *testing.T, procs map[int]fakeProc) string {
	t.Helper()
	root := t.TempDir()

	for pid, p := range procs {
		pDir := filepath.Join(root, strconv.Itoa(pid))
		if err := os.MkdirAll(filepath.Join(pDir, "fd"), 0o755); err != nil {
			t.Fatalf("error creating %q: %v", pDir, err)
		}
		if err := os.WriteFile(filepath.Join(pDir, "comm"), []byte(p.comm+"\n"), 0o644); err != nil {
			t.Fatalf("error writing the command name: %v", err)
		}
		for fd, target := range p.fds {
			if err := os.Symlink(target, filepath.Join(pDir, "fd", fd)); err != nil {
				t.Fatalf("error linking fd %s: %v", fd, err)
			}
		}
	}

	// Entries which are not processes must be ignored.
	if err := os.MkdirAll(filepath.Join(root, "sys"), 0o755); err != nil {
		t.Fatalf("error creating sys: %v", err)
	}

	return root
}

func newTestResolver(t *testing.T, root string, owners bool) *Resolver {
	t.Helper()
	r, err := NewResolver(&Config{ProcRoot: root, ResolveOwners: owners, ResolveUsers: true})
	if err != nil {
		t.Fatalf("error creating the resolver: %v", err)
	}
	r.lookupUser = func(uid uint32) string {
		if uid == 0 {
			return "root"
		}
		return strconv.FormatUint(uint64(uid), 10)
	}
	return r
}

func TestOwners(t *testing.T) {
	root := fakeProcFS(t, map[int]fakeProc{
		123: {"nginx", map[string]string{"0": "/dev/null", "3": "socket:[4242]", "4": "pipe:[77]"}},
		456: {"nginx", map[string]string{"3": "socket:[4242]"}},
		789: {"sshd", map[string]string{"3": "socket:[99]", "5": "socket:[100]"}},
		999: {"idle", map[string]string{"1": "anon_inode:[eventfd]"}},
	})

	r := newTestResolver(t, root, true)

	got, err := r.Owners()
	if err != nil {
		t.Fatalf("error resolving owners: %v", err)
	}

	want := map[uint64][]Process{
		4242: {{123, "nginx"}, {456, "nginx"}},
		99:   {{789, "sshd"}},
		100:  {{789, "sshd"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected owners (-want +got):\n%s", diff)
	}
}

func TestEnrich(t *testing.T) {
	root := fakeProcFS(t, map[int]fakeProc{
		321: {"redis-server", map[string]string{"6": "socket:[555]"}},
	})

	responses := []netlink.DiagResponse{
		{
			Family: 2,
			State:  uint8(types.TCP_LISTEN),
			ID:     netlink.SockID{SPort: 6379, Src: [4]uint32{0x7f000001}},
			UID:    0,
			INode:  555,
		},
		{
			Family: 2,
			State:  uint8(types.TCP_ESTABLISHED),
			ID:     netlink.SockID{SPort: 22, Src: [4]uint32{0x0a000001}},
			RQueue: 1,
			WQueue: 2,
			UID:    1000,
			INode:  556,
		},
	}

	tests := map[string]struct {
		owners bool
		want   []Socket
	}{
		"no owners": {
			owners: false,
			want: []Socket{
				{IP: "127.0.0.1", Port: 6379, State: "LISTEN", UID: 0, User: "root", Inode: 555},
				{IP: "10.0.0.1", Port: 22, State: "ESTABLISHED", UID: 1000, User: "1000", Inode: 556, RQueue: 1, WQueue: 2},
			},
		},
		"owners": {
			owners: true,
			want: []Socket{
				{IP: "127.0.0.1", Port: 6379, State: "LISTEN", UID: 0, User: "root", Inode: 555,
					Owners: []Process{{321, "redis-server"}}},
				{IP: "10.0.0.1", Port: 22, State: "ESTABLISHED", UID: 1000, User: "1000", Inode: 556, RQueue: 1, WQueue: 2},
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := newTestResolver(t, root, test.owners).Enrich(responses)
			if err != nil {
				t.Fatalf("error enriching: %v", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("unexpected sockets (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewResolverMissingRoot(t *testing.T) {
	if _, err := NewResolver(&Config{ProcRoot: filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Errorf("expected a missing procfs mount point to be rejected")
	}
}

func TestSocketInode(t *testing.T) {
	tests := map[string]struct {
		inode uint64
		ok    bool
	}{
		"socket:[12345]":         {12345, true},
		"socket:[0]":             {0, true},
		"socket:[]":              {0, false},
		"socket:[12a]":           {0, false},
		"socket:12345":           {0, false},
		"pipe:[12345]":           {0, false},
		"anon_inode:[eventpoll]": {0, false},
		"/dev/null":              {0, false},
	}

	for target, want := range tests {
		inode, ok := socketInode(target)
		if inode != want.inode || ok != want.ok {
			t.Errorf("%q: got (%d, %t); want (%d, %t)", target, inode, ok, want.inode, want.ok)
		}
	}
}

func TestLookupUser(t *testing.T) {
	// The numeric fallback is used whenever the user database has no entry.
	if got := LookupUser(4294967294); got != "4294967294" {
		t.Errorf("expected the numeric fallback, got %q", got)
	}
}

func TestMarshalJSON(t *testing.T) {
	s := Socket{
		IP: "127.0.0.1", Port: 80, State: "LISTEN", UID: 33, User: "www-data", Inode: 1,
		Owners: []Process{{10, "apache2"}},
	}

	tests := map[string]map[string]any{
		"lean": {"ip": "127.0.0.1", "port": 80.0},
		"structs": {
			"ip": "127.0.0.1", "port": 80.0, "state": "LISTEN", "uid": 33.0, "user": "www-data",
			"inode": 1.0, "rqueue": 0.0, "wqueue": 0.0,
			"owners": []any{map[string]any{"pid": 10.0, "comm": "apache2"}},
		},
	}
	// Unknown verbosities fall back to the default tag.
	tests["bogus"] = tests["structs"]
	tests[""] = tests["structs"]

	for verbosity, want := range tests {
		t.Run(verbosity, func(t *testing.T) {
			s.Verbosity = verbosity
			raw, err := json.Marshal(&s)
			if err != nil {
				t.Fatalf("error marshalling: %v", err)
			}

			got := map[string]any{}
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("error unmarshalling %s: %v", raw, err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("unexpected JSON (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	got := Config{}
	if err := yaml.Unmarshal([]byte("resolveOwners: true"), &got); err != nil {
		t.Fatalf("error unmarshalling: %v", err)
	}

	want := DefaultConfig
	want.ResolveOwners = true
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected configuration (-want +got):\n%s", diff)
	}
}
