package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and platform information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "vksetup %s\n", versionString())
			_, _ = fmt.Fprintf(out, "platform: %s/%s\n", a.info.Kind(), a.info.Arch)
			if distro := a.info.Distro(); distro != "" {
				_, _ = fmt.Fprintf(out, "distro:   %s\n", distro)
			}
			return nil
		},
	}
}
