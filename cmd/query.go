package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/scitags/sockdiag-go/enrichment"
	"github.com/scitags/sockdiag-go/metrics"
	"github.com/scitags/sockdiag-go/netlink"
	"github.com/scitags/sockdiag-go/types"
)

// dumper is satisfied by *netlink.Client.
type dumper interface {
	Dump(family uint8, states uint32) ([]netlink.SocketRecord, error)
	DumpSockets(family uint8, states uint32) ([]netlink.DiagResponse, error)
}

// applyFlags overrides the configuration with every flag explicitly set on
// the command line.
func applyFlags(cmd *cobra.Command, conf *Config) {
	flags := cmd.Flags()

	if flags.Changed("family") {
		conf.Query.Family = familyFlag
	}
	if flags.Changed("states") {
		conf.Query.States = statesFlag
	}
	if flags.Changed("format") {
		conf.Query.Format = formatFlag
	}
	if flags.Changed("verbose") {
		conf.Query.Verbose = verboseFlag
	}

	if flags.Changed("diag-version") {
		if conf.Netlink == nil {
			nlConf := netlink.DefaultConfig
			conf.Netlink = &nlConf
		}
		conf.Netlink.Version = diagVersionFlag
	}

	if flags.Changed("owners") {
		if conf.Enrichment == nil {
			eConf := enrichment.DefaultConfig
			conf.Enrichment = &eConf
		}
		conf.Enrichment.ResolveOwners = ownersFlag
	}

	if flags.Changed("metrics") {
		if conf.Metrics == nil {
			mConf := metrics.DefaultConfig
			conf.Metrics = &mConf
		}
		conf.Metrics.Enabled = metricsFlag
	}
}

func parseFamily(name string) (uint8, error) {
	switch strings.ToLower(name) {
	case "inet", "ipv4", "4":
		return unix.AF_INET, nil
	case "inet6", "ipv6", "6":
		return 0, fmt.Errorf("family %q is not supported: only IPv4 sockets can be decoded", name)
	default:
		return 0, fmt.Errorf("unknown family %q", name)
	}
}

// detailed reports whether the full inet_diag_msg of each socket is needed.
func (c *Config) detailed() bool {
	return c.Query.Verbose || (c.Enrichment != nil && c.Enrichment.ResolveOwners)
}

// collect runs the query. The resolver is only used for detailed queries.
func collect(d dumper, resolver *enrichment.Resolver, family uint8, states uint32, detailed bool) ([]enrichment.Socket, error) {
	if !detailed {
		records, err := d.Dump(family, states)
		if err != nil {
			return nil, err
		}
		sockets := make([]enrichment.Socket, 0, len(records))
		for _, r := range records {
			sockets = append(sockets, enrichment.FromRecord(r))
		}
		return sockets, nil
	}

	responses, err := d.DumpSockets(family, states)
	if err != nil {
		return nil, err
	}

	if resolver == nil {
		sockets := make([]enrichment.Socket, 0, len(responses))
		for _, r := range responses {
			sockets = append(sockets, enrichment.FromResponse(r))
		}
		return sockets, nil
	}

	return resolver.Enrich(responses)
}

func runQuery(conf *Config, out, diag io.Writer) error {
	family, err := parseFamily(conf.Query.Family)
	if err != nil {
		return err
	}

	states, err := types.StatesMask(conf.Query.States)
	if err != nil {
		return fmt.Errorf("invalid states: %w", err)
	}

	client, err := netlink.NewClient(conf.Netlink)
	if err != nil {
		return fmt.Errorf("couldn't create the netlink client: %w", err)
	}

	var resolver *enrichment.Resolver
	if conf.detailed() {
		if resolver, err = enrichment.NewResolver(conf.Enrichment); err != nil {
			return fmt.Errorf("couldn't create the resolver: %w", err)
		}
	}

	var m *metrics.Metrics
	if conf.Metrics != nil && conf.Metrics.Enabled {
		if m, err = metrics.New(conf.Metrics); err != nil {
			return err
		}
	}

	start := time.Now()
	sockets, err := collect(client, resolver, family, states, conf.detailed())
	if m != nil {
		m.Observe(family, states, len(sockets), time.Since(start), err)
		defer func() {
			if err := m.WriteText(diag); err != nil {
				slog.Warn("error writing the metrics", "err", err)
			}
		}()
	}
	if err != nil {
		return fmt.Errorf("error querying sockets: %w", err)
	}

	slog.Debug("got sockets", "n", len(sockets), StatesKey, states)

	return render(out, sockets, conf.Query.Format, conf.detailed())
}
