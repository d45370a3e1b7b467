package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/hirecall/internal/model"
)

var seedCmd = &cobra.Command{
	Use:   "seed <fixtures.yaml>",
	Short: "Load job posts, agents and call configs from a YAML file",
	Long:  "Upserts the job posts, voice agents and call configs listed in a fixtures file. Running it twice is safe.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

type fixtures struct {
	JobPosts    []model.JobPost    `yaml:"job_posts"`
	Agents      []model.CallAgent  `yaml:"agents"`
	CallConfigs []model.CallConfig `yaml:"call_configs"`
}

func loadFixtures(path string) (*fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}
	var f fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}

	for i, p := range f.JobPosts {
		if p.ID == "" || p.Title == "" {
			return nil, fmt.Errorf("job_posts[%d]: id and title are required", i)
		}
	}
	for i, a := range f.Agents {
		if a.ID == 0 || a.ExternalID == "" {
			return nil, fmt.Errorf("agents[%d]: id and agent_id are required", i)
		}
	}
	for i, c := range f.CallConfigs {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("call_configs[%d]: %w", i, err)
		}
	}
	return &f, nil
}

// applyFixtures writes agents first so call configs can reference them.
func applyFixtures(ctx context.Context, jobs model.JobPostStore, f *fixtures, logger *slog.Logger) error {
	for _, a := range f.Agents {
		if err := jobs.UpsertAgent(ctx, a); err != nil {
			return err
		}
		logger.Info("agent seeded", "id", a.ID, "name", a.Name)
	}
	for _, p := range f.JobPosts {
		if err := jobs.UpsertJobPost(ctx, p); err != nil {
			return err
		}
		logger.Info("job post seeded", "id", p.ID, "title", p.Title)
	}
	for _, c := range f.CallConfigs {
		c.IsActive = true
		saved, err := jobs.UpsertCallConfig(ctx, c)
		if err != nil {
			return err
		}
		logger.Info("call config seeded", "id", saved.ID, "job_post_id", saved.JobPostID, "questions", len(saved.Script))
	}
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	f, err := loadFixtures(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := applyFixtures(ctx, st, f, logger); err != nil {
		return err
	}
	logger.Info("seed complete", "job_posts", len(f.JobPosts), "agents", len(f.Agents), "call_configs", len(f.CallConfigs))
	return nil
}
