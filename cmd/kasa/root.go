package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcuoli/go-kasa/internal/config"
	"github.com/marcuoli/go-kasa/pkg/kasa"
)

type rootFlags struct {
	verbose    int
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "kasa",
		Short: "Control and discover TP-Link Kasa smart plugs",
		Long: `kasa speaks the local UDP protocol (port 9999) of TP-Link Kasa plugs
and switches. It can send a single JSON command to one device, or probe
every host of the attached subnets and list the devices that answer.

Use "kasa [command] --help" for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(flags.verbose)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usage(err)
	})

	root.PersistentFlags().CountVarP(&flags.verbose, "verbose", "v", "Debug output on stderr (-vv for every datagram)")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file")

	root.AddCommand(newSendCmd(flags))
	root.AddCommand(newDiscoverCmd(flags))
	root.AddCommand(newVersionCmd())
	return root
}

func setupLogging(verbose int) {
	if verbose <= 0 {
		kasa.SetDebugLogger(nil)
		kasa.SetDebugLevel(kasa.DebugOff)
		return
	}
	logger := log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
	kasa.SetDebugLogger(func(c kasa.Component, format string, args ...interface{}) {
		logger.Printf(kasa.ComponentToPrefix(c)+" "+format, args...)
	})
	if verbose > 1 {
		kasa.SetDebugLevel(kasa.DebugVerbose)
	} else {
		kasa.SetDebugLevel(kasa.DebugBasic)
	}
}

// loadOptions returns the library options from the config file, or the
// defaults when no file was given.
func (f *rootFlags) loadOptions() (kasa.Options, error) {
	if f.configPath == "" {
		return config.Default().Options(), nil
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return kasa.Options{}, usage(fmt.Errorf("config: %w", err))
	}
	return cfg.Options(), nil
}

// exactArgs reports argument count mistakes as usage errors.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return usage(cobra.ExactArgs(n)(cmd, args))
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  exactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), kasa.VersionInfo())
		},
	}
}
