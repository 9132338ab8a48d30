// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/recommend"
)

type recommendationRow struct {
	MovieID int      `json:"movieId"`
	Title   string   `json:"title"`
	Genres  []string `json:"genres"`
	Score   float64  `json:"score"`
	Source  string   `json:"source"`
}

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "recommend <title>",
		Short: "Print movies similar to a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative, got %d", limit)
			}
			eng, err := ctx.buildEngine(cmd.Context())
			if err != nil {
				return err
			}

			title := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			switch res := eng.Recommend(title, limit).(type) {
			case recommend.NoResult:
				if asJSON {
					return json.NewEncoder(out).Encode([]recommendationRow{})
				}
				fmt.Fprintf(out, "No recommendations found for '%s'. Try checking the spelling.\n", title)
				if res.Resolved != "" {
					fmt.Fprintf(out, "Resolved to %q, but %s.\n", res.Resolved, strings.ReplaceAll(string(res.Reason), "_", " "))
				}
			case recommend.Recommendations:
				rows := make([]recommendationRow, 0, len(res.Items))
				for _, c := range res.Items {
					rows = append(rows, recommendationRow{
						MovieID: c.Item.ID,
						Title:   c.Item.Title,
						Genres:  c.Item.Genres,
						Score:   c.Score,
						Source:  c.Source.String(),
					})
				}
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(rows)
				}
				fmt.Fprintf(out, "Recommendations for %s (%s match, %s)\n", res.Resolved, res.Stage, res.Path)
				fmt.Fprintln(out, renderRecommendations(rows))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of results, 0 uses the configured default")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <title>",
		Short: "Show which catalog title a query resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := ctx.buildEngine(cmd.Context())
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			m, ok := eng.Resolve(query)
			if !ok {
				return fmt.Errorf("no catalog title matches %q", query)
			}
			item := eng.ItemAt(m.Index)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Query", "Resolved", "Movie ID", "Stage", "Ratio"},
				[][]string{{
					query,
					m.Title,
					strconv.Itoa(item.ID),
					m.Stage.String(),
					strconv.FormatFloat(m.Ratio, 'f', 3, 64),
				}},
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}
}

// buildEngine loads the snapshot and builds an engine the same way the
// server does on startup.
func (c *commandContext) buildEngine(ctx context.Context) (*recommend.Engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.logger()

	loader, err := catalog.New(cfg.Catalog.ToCatalogConfig(), logger)
	if err != nil {
		return nil, err
	}
	snap, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	eng, err := recommend.NewEngine(ctx, snap, cfg.Recommend.ToEngineConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return eng, nil
}

func renderRecommendations(rows []recommendationRow) string {
	cells := make([][]string, 0, len(rows))
	for i, r := range rows {
		cells = append(cells, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(r.MovieID),
			r.Title,
			strings.Join(r.Genres, "|"),
			strconv.FormatFloat(r.Score, 'f', 4, 64),
			r.Source,
		})
	}
	return renderTable(
		[]string{"#", "Movie ID", "Title", "Genres", "Score", "Source"},
		cells,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	)
}
