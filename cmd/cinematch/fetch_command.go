// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinematch/internal/dataset"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the MovieLens snapshot into the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dc := cfg.Dataset.ToDatasetConfig()
			dc.Force = force

			res, err := dataset.Fetch(cmd.Context(), dc, ctx.logger())
			if err != nil {
				return fmt.Errorf("fetch dataset: %w", err)
			}

			out := cmd.OutOrStdout()
			if !res.Downloaded {
				fmt.Fprintf(out, "Dataset already present in %s (use --force to download again)\n", cfg.Dataset.DataDir)
				return nil
			}
			fmt.Fprintf(out, "Downloaded %d files to %s in %s\n", len(res.Files), cfg.Dataset.DataDir, res.Duration.Round(time.Millisecond))
			for _, f := range res.Files {
				fmt.Fprintf(out, "  %s\n", f)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Download even when the files already exist")
	return cmd
}
