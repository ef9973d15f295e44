package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcuoli/go-kasa/pkg/kasa"
	"github.com/marcuoli/go-kasa/pkg/kasa/command"
)

func newSendCmd(flags *rootFlags) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "send <ip[:port]> <json>",
		Short: "Send one JSON command to a device and print its reply",
		Example: `  kasa send 192.168.1.20 '{"system":{"get_sysinfo":{}}}'
  kasa send 192.168.1.20 '{"system":{"set_relay_state":{"state":1}}}'`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.loadOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("timeout") {
				opts.Timeout = timeout
			}

			res, err := kasa.Send(cmd.Context(), args[0], args[1], opts)
			if errors.Is(err, command.ErrInvalidAddress) {
				return usage(err)
			}
			if err != nil {
				return err
			}

			if !res.Answered {
				fmt.Fprintf(cmd.OutOrStdout(), "no response from %s\n", args[0])
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Response)
			return nil
		},
	}
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", kasa.DefaultTimeout, "Reply timeout")
	return cmd
}
