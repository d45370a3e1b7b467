package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/hirecall/internal/ats"
)

var atsCmd = &cobra.Command{
	Use:   "ats",
	Short: "Résumé scoring subcommands",
}

var atsCheckCmd = &cobra.Command{
	Use:   "check <resume.pdf>",
	Short: "Score a résumé against a job post without saving it",
	Args:  cobra.ExactArgs(1),
	RunE:  runATSCheck,
}

var atsJobID string

func init() {
	rootCmd.AddCommand(atsCmd)
	atsCmd.AddCommand(atsCheckCmd)

	atsCheckCmd.Flags().StringVar(&atsJobID, "job", "", "job post id")
	_ = atsCheckCmd.MarkFlagRequired("job")
}

func runATSCheck(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	pdf, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading résumé: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.scorer.ManualCheck(ctx, atsJobID, pdf)
	if err != nil {
		return err
	}
	printATSResult(cmd.OutOrStdout(), res)
	return nil
}

func printATSResult(w io.Writer, res *ats.Result) {
	an := res.Analysis
	fmt.Fprintf(w, "Score:        %d/100\n", res.Score)
	if an.OverallFit != "" {
		fmt.Fprintf(w, "Overall fit:  %s\n", an.OverallFit)
	}
	fmt.Fprintf(w, "Skills match: %.0f%%\n", an.SkillsMatch.MatchPercentage)
	fmt.Fprintf(w, "Experience:   %.1f years (%s)\n", an.ExperienceFit.YearsOfExperience, an.ExperienceFit.ExperienceMatch)

	list := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(w, "\n%s:\n", label)
		for _, it := range items {
			fmt.Fprintf(w, "  - %s\n", it)
		}
	}
	list("Matched skills", an.SkillsMatch.MatchedSkills)
	list("Missing skills", an.SkillsMatch.MissingSkills)
	list("Strengths", an.Strengths)
	list("Gaps", an.Gaps)
	if len(an.KeywordRelevance.KeywordsMatched) > 0 {
		fmt.Fprintf(w, "\nKeywords: %s\n", strings.Join(an.KeywordRelevance.KeywordsMatched, ", "))
	}
}
