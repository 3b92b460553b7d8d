package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/vksetup/internal/config"
)

func newInitCmd(a *app) *cobra.Command {
	var (
		force   bool
		version string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter " + config.DefaultFilename,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if path == "" {
				path = config.DefaultFilename
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("check %s: %w", path, err)
			}

			cfg := config.Defaults()
			if version != "" {
				cfg.Version = version
			}

			content, err := config.NewGenerator().Generate(cfg)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}

			a.annotator.Success("Wrote " + path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().StringVar(&version, "sdk-version", "", "pin an SDK version")
	return cmd
}
