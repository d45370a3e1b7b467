package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/amishk599/hirecall/internal/calls"
	"github.com/amishk599/hirecall/internal/config"
	"github.com/amishk599/hirecall/internal/filter"
	"github.com/amishk599/hirecall/internal/model"
	"github.com/amishk599/hirecall/internal/review"
	"github.com/amishk599/hirecall/internal/store"
)

var callsCmd = &cobra.Command{
	Use:   "calls",
	Short: "Screening call subcommands",
}

var callsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the calls of a job post",
	RunE:  runCallsList,
}

var callsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Analyse in-progress calls whose webhook never arrived",
	Long:  "One reconciliation pass: fetches in-progress calls from the voice provider and analyses those that have a transcript.",
	RunE:  runCallsSync,
}

var callsDispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Call the shortlisted candidates of a job post",
	Long:  "Selects shortlisted candidates with a phone number who have not been called yet and dispatches a screening call to each, using the job post's active call config.",
	RunE:  runCallsDispatch,
}

var callsReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse call results interactively (TUI)",
	Long:  "Shows the job post picker, then the split-pane call browser.",
	RunE:  runCallsReview,
}

var (
	callsJobID    string
	callsStatus   string
	dispatchMin   int
	dispatchFrom  string
	syncBatchSize int
)

func init() {
	rootCmd.AddCommand(callsCmd)
	callsCmd.AddCommand(callsListCmd, callsSyncCmd, callsDispatchCmd, callsReviewCmd)

	callsListCmd.Flags().StringVar(&callsJobID, "job", "", "job post id")
	callsListCmd.Flags().StringVar(&callsStatus, "status", "", "only calls in this status (pending, in_progress, completed, failed)")
	_ = callsListCmd.MarkFlagRequired("job")

	callsSyncCmd.Flags().IntVar(&syncBatchSize, "batch", 0, "max calls to reconcile (default: reconcile.batch)")

	callsDispatchCmd.Flags().StringVar(&callsJobID, "job", "", "job post id")
	callsDispatchCmd.Flags().IntVar(&dispatchMin, "min-score", 0, "only candidates with at least this ATS score")
	callsDispatchCmd.Flags().StringVar(&dispatchFrom, "from", "", "caller id (default: the call config's from number)")
	_ = callsDispatchCmd.MarkFlagRequired("job")
}

// openStore opens the database alone, for commands that only read it.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	return store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, store.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
}

func runCallsList(cmd *cobra.Command, args []string) error {
	cfg, _ := mustLoad()
	ctx := cmd.Context()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	list, err := st.ListCalls(ctx, model.CallFilter{JobPostID: callsJobID, Status: model.CallStatus(callsStatus)})
	if err != nil {
		return err
	}
	names, err := applicationNames(ctx, st, callsJobID)
	if err != nil {
		return err
	}
	printCalls(cmd.OutOrStdout(), list, names)
	return nil
}

func printCalls(w io.Writer, list []*model.Call, names map[string]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCANDIDATE\tSTATUS\tFIT\tRECOMMENDATION\tVIEWED")
	for _, c := range list {
		name, fit, rec := names[c.JobApplicationID], "-", "-"
		if r := c.SummaryReport; r != nil {
			if r.CandidateName != "" {
				name = r.CandidateName
			}
			fit = fmt.Sprintf("%d/10", r.Summary.FitScore)
			rec = string(r.Summary.Recommendation)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, name, c.Status, fit, rec, yesNo(c.IsViewed))
	}
	tw.Flush()
	fmt.Fprintf(w, "\nTotal: %d calls\n", len(list))
}

func applicationNames(ctx context.Context, apps model.ApplicationStore, jobPostID string) (map[string]string, error) {
	list, err := apps.ListApplications(ctx, jobPostID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(list))
	for _, a := range list {
		names[a.ID] = a.CandidateName
	}
	return names, nil
}

func runCallsSync(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	batch := syncBatchSize
	if batch <= 0 {
		batch = cfg.Reconcile.Batch
	}
	n, err := a.orchestrator.Reconcile(ctx, batch)
	a.drain()
	if err != nil {
		return err
	}
	logger.Info("sync complete", "analysed", n)
	return nil
}

// candidateSource is the slice of the store dispatch selection reads.
type candidateSource interface {
	ListApplications(ctx context.Context, jobPostID string) ([]*model.JobApplication, error)
	ListCalls(ctx context.Context, f model.CallFilter) ([]*model.Call, error)
}

// selectCandidates returns the shortlisted applications of a job post that
// have a phone number and no live call. Applications whose only calls
// failed are called again.
func selectCandidates(ctx context.Context, src candidateSource, jobPostID string, minScore int) ([]calls.Candidate, error) {
	apps, err := src.ListApplications(ctx, jobPostID)
	if err != nil {
		return nil, err
	}
	existing, err := src.ListCalls(ctx, model.CallFilter{JobPostID: jobPostID})
	if err != nil {
		return nil, err
	}
	var called []string
	for _, c := range existing {
		if c.Status != model.CallFailed {
			called = append(called, c.JobApplicationID)
		}
	}

	var out []calls.Candidate
	for _, a := range filter.NewApplicationFilter(minScore, true, called).Select(apps) {
		out = append(out, calls.Candidate{
			ApplicationID: a.ID,
			Name:          a.CandidateName,
			Phone:         strings.TrimSpace(a.CandidatePhone),
		})
	}
	return out, nil
}

func runCallsDispatch(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := a.store.GetActiveCallConfig(ctx, callsJobID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("job post %s has no active call config, add one with hirecall seed or POST /api/initial-call-config", callsJobID)
		}
		return err
	}

	candidates, err := selectCandidates(ctx, a.store, callsJobID, dispatchMin)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		logger.Info("no candidates to call", "job_post_id", callsJobID, "min_score", dispatchMin)
		return nil
	}
	logger.Info("dispatching calls", "job_post_id", callsJobID, "candidates", len(candidates))

	created, err := a.orchestrator.CreateInitialCalls(ctx, calls.Batch{
		JobPostID:  callsJobID,
		FromNumber: dispatchFrom,
		Candidates: candidates,
	})
	a.drain()
	if err != nil {
		return err
	}

	dispatched := 0
	for _, c := range created {
		if c.Dispatched() {
			dispatched++
		}
	}
	logger.Info("dispatch complete", "created", len(created), "dispatched", dispatched)
	return nil
}

func runCallsReview(cmd *cobra.Command, args []string) error {
	cfg, _ := mustLoad()
	ctx := context.Background()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	jobs, err := st.ListJobPosts(ctx)
	if err != nil {
		return err
	}

	markViewed := func(ctx context.Context, id string, viewed bool) (*model.Call, error) {
		return st.UpdateCallReview(ctx, id, &viewed, nil)
	}

	for {
		choice, err := review.RunJobPicker(jobs)
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return nil
		}
		if choice < 0 {
			return nil
		}
		job := jobs[choice]

		list, err := review.RunLoader(job.Title, func(ctx context.Context) ([]*model.Call, error) {
			return st.ListCalls(ctx, model.CallFilter{JobPostID: job.ID})
		})
		if err != nil {
			fmt.Printf("Error loading calls: %v\n", err)
			continue
		}
		names, err := applicationNames(ctx, st, job.ID)
		if err != nil {
			fmt.Printf("Error loading applications: %v\n", err)
			continue
		}

		wantQuit, err := review.RunReviewTUI(list, names, markViewed)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return nil
		}
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
