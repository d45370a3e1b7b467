package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amishk599/hirecall/internal/export"
	"github.com/amishk599/hirecall/internal/model"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write call results and ATS scores of a job post to Excel",
	RunE:  runExport,
}

var (
	exportJobID string
	exportOut   string
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportJobID, "job", "", "job post id")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "results.xlsx", "output file")
	_ = exportCmd.MarkFlagRequired("job")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()
	ctx := cmd.Context()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.GetJobPost(ctx, exportJobID); err != nil {
		return fmt.Errorf("job post %s: %w", exportJobID, err)
	}
	list, err := st.ListCalls(ctx, model.CallFilter{JobPostID: exportJobID})
	if err != nil {
		return err
	}
	apps, err := st.ListApplications(ctx, exportJobID)
	if err != nil {
		return err
	}

	path, err := export.WriteFile(exportOut, export.Data{Calls: list, Applications: apps})
	if err != nil {
		return err
	}
	logger.Info("export written", "path", path, "calls", len(list), "applications", len(apps))
	return nil
}
