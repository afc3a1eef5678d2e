package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cinelake/internal/etl"
	"cinelake/internal/materialize"
	"cinelake/internal/reviews"
)

func newOverrideCommand(ctx *commandContext) *cobra.Command {
	overrideCmd := &cobra.Command{
		Use:   "override",
		Short: "Record user corrections applied to the warehouse",
	}
	overrideCmd.AddCommand(newOverrideFilmCommand(ctx))
	overrideCmd.AddCommand(newOverrideReviewCommand(ctx))
	return overrideCmd
}

func newOverrideFilmCommand(ctx *commandContext) *cobra.Command {
	var boxOffice float64
	var audienceScore float64

	cmd := &cobra.Command{
		Use:   "film <film_id>",
		Short: "Correct a film's box office or audience score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			filmID := strings.TrimSpace(args[0])
			if filmID == "" {
				return fmt.Errorf("film id is required")
			}
			var box, audience *float64
			if cmd.Flags().Changed("box-office") {
				box = &boxOffice
			}
			if cmd.Flags().Changed("audience-score") {
				audience = &audienceScore
			}
			if box == nil && audience == nil {
				return fmt.Errorf("set --box-office and/or --audience-score")
			}

			row, err := materialize.FilmOverrideRow(filmID, box, audience, time.Now())
			if err != nil {
				return err
			}
			path := etl.FilmOverridesPath(cfg)
			tbl, err := materialize.AppendOverride(cmd.Context(), path, row, materialize.FilmKey)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved override for %s (%d overrides in %s)\n", filmID, tbl.Len(), path)
			return nil
		},
	}

	cmd.Flags().Float64Var(&boxOffice, "box-office", 0, "Box office in USD")
	cmd.Flags().Float64Var(&audienceScore, "audience-score", 0, "Audience score (0-100)")
	return cmd
}

func newOverrideReviewCommand(ctx *commandContext) *cobra.Command {
	var critic string
	var publication string
	var score float64
	var positive bool
	var text string

	cmd := &cobra.Command{
		Use:   "review <film_id>",
		Short: "Add a user review for a film",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			review := reviews.UserReview{
				FilmID:      strings.TrimSpace(args[0]),
				CriticName:  critic,
				Publication: publication,
				Positive:    positive,
				Text:        text,
			}
			if review.FilmID == "" {
				return fmt.Errorf("film id is required")
			}
			if cmd.Flags().Changed("score") {
				if score < 0 || score > 1 {
					return fmt.Errorf("score must be between 0 and 1, got %v", score)
				}
				review.ScoreRatio = &score
			}

			row, err := reviews.UserReviewRow(review, time.Now())
			if err != nil {
				return err
			}
			path := etl.UserReviewsPath(cfg)
			tbl, err := materialize.AppendOverride(cmd.Context(), path, row, "")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved review for %s (%d user reviews in %s)\n", review.FilmID, tbl.Len(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&critic, "critic", "", "Reviewer name")
	cmd.Flags().StringVar(&publication, "publication", "", "Publication name")
	cmd.Flags().Float64Var(&score, "score", 0, "Score as a ratio between 0 and 1")
	cmd.Flags().BoolVar(&positive, "positive", false, "Mark the review as positive")
	cmd.Flags().StringVar(&text, "text", "", "Review text")
	return cmd
}
