package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcuoli/go-kasa/pkg/kasa"
)

type discoverFlags struct {
	cidrs      []string
	interfaces []string
	timeout    time.Duration
	maxHosts   int
	arp        bool
	vendor     bool
	dns        bool
	ouiDB      string
}

func newDiscoverCmd(flags *rootFlags) *cobra.Command {
	df := &discoverFlags{}

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find devices on the local subnets",
		Long: `discover sends get_sysinfo to every host of each attached IPv4 subnet
(or of the --cidr ranges) and prints one line per device that answers:

  ip<TAB>alias<TAB>model[<TAB>mac<TAB>vendor<TAB>hostname]

Collection ends once no reply has arrived for the timeout. Subnets wider
than --max-hosts are skipped and reported on stderr.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.loadOptions()
			if err != nil {
				return err
			}
			df.apply(cmd, &opts)

			res, err := kasa.Discover(cmd.Context(), opts)
			if errors.Is(err, kasa.ErrInvalidCIDR) {
				return usage(err)
			}
			if err != nil {
				return err
			}

			for _, s := range res.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %v\n", s.Addr, s.Err)
			}
			printDevices(cmd.OutOrStdout(), res)
			return nil
		},
	}

	df.register(cmd)
	return cmd
}

func (df *discoverFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceVar(&df.cidrs, "cidr", nil, "Scan these ranges instead of the attached subnets")
	f.StringSliceVarP(&df.interfaces, "interface", "i", nil, "Only scan the subnets of these interfaces")
	f.DurationVarP(&df.timeout, "timeout", "t", kasa.DefaultTimeout, "Stop after this long without a reply")
	f.IntVar(&df.maxHosts, "max-hosts", 255, "Skip subnets with more hosts than this")
	f.BoolVar(&df.arp, "arp", false, "Resolve MAC addresses (needs raw socket privileges)")
	f.BoolVar(&df.vendor, "vendor", false, "Resolve MAC vendors (implies --arp)")
	f.BoolVar(&df.dns, "dns", false, "Resolve hostnames by reverse DNS")
	f.StringVar(&df.ouiDB, "oui-db", "", "Path to the IEEE oui.txt database for --vendor")
}

// apply overrides opts with the flags given on the command line.
func (df *discoverFlags) apply(cmd *cobra.Command, opts *kasa.Options) {
	f := cmd.Flags()
	if f.Changed("cidr") {
		opts.CIDRs = df.cidrs
	}
	if f.Changed("interface") {
		opts.Interfaces = df.interfaces
	}
	if f.Changed("timeout") {
		opts.Timeout = df.timeout
	}
	if f.Changed("max-hosts") {
		opts.MaxHosts = df.maxHosts
	}
	if f.Changed("arp") {
		opts.Enrich.EnableARP = df.arp
	}
	if f.Changed("vendor") {
		opts.Enrich.EnableVendor = df.vendor
	}
	if f.Changed("dns") {
		opts.Enrich.EnableDNS = df.dns
	}
	if f.Changed("oui-db") {
		opts.Enrich.OUIDatabase = df.ouiDB
	}
}

func printDevices(w io.Writer, res *kasa.DiscoveryResult) {
	if res.Info == nil {
		for _, d := range res.Devices {
			fmt.Fprintln(w, strings.Join([]string{d.IP, d.Alias, d.Model}, "\t"))
		}
		return
	}
	for _, d := range res.Info {
		fmt.Fprintln(w, strings.Join([]string{d.IP, d.Alias, d.Model, d.MAC, d.Vendor, d.Hostname}, "\t"))
	}
}
