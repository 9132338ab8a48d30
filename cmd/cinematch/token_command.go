// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinematch/internal/auth"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var ttl time.Duration
	var subject, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the admin API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			mgr, err := auth.NewJWTManager(&cfg.Admin)
			if err != nil {
				return err
			}
			token, err := mgr.GenerateRoleToken(subject, role, ttl)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime, 0 uses admin.token_ttl")
	cmd.Flags().StringVar(&subject, "subject", "cli", "Subject recorded in the token and in reload logs")
	cmd.Flags().StringVar(&role, "role", auth.RoleAdmin, "Token role: admin (reload and status) or operator (status only)")
	return cmd
}
