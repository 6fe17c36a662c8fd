package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/scitags/sockdiag-go/enrichment"
)

func verbosity(verbose bool) string {
	if verbose {
		return "structs"
	}
	return "lean"
}

// render writes sockets out in the given format: one ip:port per line for
// "text" or a JSON array for "json".
func render(w io.Writer, sockets []enrichment.Socket, format string, verbose bool) error {
	switch format {
	case "text":
		return renderText(w, sockets, verbose)
	case "json":
		return renderJSON(w, sockets, verbose)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderText(w io.Writer, sockets []enrichment.Socket, verbose bool) error {
	for _, s := range sockets {
		line := s.String()
		if verbose {
			line = fmt.Sprintf("%-21s %-11s uid=%d user=%s inode=%d rq=%d wq=%d%s",
				s, s.State, s.UID, s.User, s.Inode, s.RQueue, s.WQueue, owners(s.Owners))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func owners(ps []enrichment.Process) string {
	if len(ps) == 0 {
		return ""
	}
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, fmt.Sprintf("%s/%d", p.Comm, p.PID))
	}
	return " owners=" + strings.Join(names, ",")
}

func renderJSON(w io.Writer, sockets []enrichment.Socket, verbose bool) error {
	out := make([]*enrichment.Socket, 0, len(sockets))
	for i := range sockets {
		sockets[i].Verbosity = verbosity(verbose)
		out = append(out, &sockets[i])
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("error encoding the sockets: %w", err)
	}
	return nil
}
