package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"modelbench/adapters/excel"
	"modelbench/adapters/report"
	"modelbench/domain/training"
	"modelbench/internal/config"
	"modelbench/internal/container"
	"modelbench/internal/testkit"
)

var serverURL string

func main() {
	rootCmd := &cobra.Command{
		Use:          "modelbench-cli",
		Short:        "Upload datasets, train models on a remote server and collect the results",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Training server URL (overrides MODELBENCH_SERVER_URL)")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newTrainCmd(),
		newDownloadCmd(),
		newGenerateCmd(),
		newReportCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session is one CLI run: a container wired to a report page echoing to stdout
type session struct {
	container *container.Container
	page      *report.Page
}

func newSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if serverURL != "" {
		cfg.Client.ServerURL = serverURL
	}

	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	page := report.NewPage(os.Stdout)
	if err := c.Init(page); err != nil {
		c.Shutdown(context.Background())
		return nil, err
	}
	return &session{container: c, page: page}, nil
}

func (s *session) close() {
	s.container.Shutdown(context.Background())
}

// load uploads file and applies the selections
func (s *session) load(ctx context.Context, file, target string, task training.TaskType) error {
	ctrl := s.container.Controller
	if err := ctrl.Upload(ctx, file); err != nil {
		return err
	}
	s.page.SetSelection(target, task)
	ctrl.SelectTask(task)
	if target != "" {
		ctrl.SelectTarget(target)
	}
	return nil
}

func (s *session) writeReport(dir string) error {
	if dir == "" {
		dir = s.container.Config.Paths.OutputDir
	}
	writer, err := report.NewWriter(s.container.Logger)
	if err != nil {
		return err
	}
	index, err := writer.WriteDir(dir, s.page)
	if err != nil {
		return err
	}
	fmt.Printf("Report: %s\n", index)
	return nil
}

func taskFlag(cmd *cobra.Command, task *string) {
	cmd.Flags().StringVar(task, "task", string(training.Classification), "Task type: classification or regression")
}

func newAnalyzeCmd() *cobra.Command {
	var target, task, out string

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Upload a dataset and write its analysis report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.load(cmd.Context(), args[0], target, training.TaskType(task)); err != nil {
				return err
			}
			if opts := s.page.TargetOptions(); target == "" && len(opts) > 1 {
				fmt.Printf("Columns: %v\n", opts[1:])
			}
			return s.writeReport(out)
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Target column")
	taskFlag(cmd, &task)
	cmd.Flags().StringVar(&out, "out", "", "Report directory (defaults to MODELBENCH_OUTPUT_DIR)")
	return cmd
}

func newTrainCmd() *cobra.Command {
	var target, task, out, xlsx string
	var download bool

	cmd := &cobra.Command{
		Use:   "train <file>",
		Short: "Upload a dataset, train every model and write the results",
		Example: `  modelbench-cli train customers.csv --target churned
  modelbench-cli train customers.csv --target lifetime_value --task regression --download --xlsx results.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.close()

			ctx := cmd.Context()
			if err := s.load(ctx, args[0], target, training.TaskType(task)); err != nil {
				return err
			}

			ctrl := s.container.Controller
			outcome, err := ctrl.Train(ctx)
			if err != nil {
				s.writeReport(out)
				return err
			}
			s.page.SetOutcome(outcome)

			if xlsx != "" {
				if err := excel.NewResultsWriter(excel.DefaultExcelConfig()).WriteFile(xlsx, outcome); err != nil {
					return err
				}
				fmt.Printf("Workbook: %s\n", xlsx)
			}

			if download {
				paths, err := ctrl.DownloadAll(ctx)
				for i, item := range ctrl.Items() {
					if i < len(paths) && paths[i] != "" {
						s.page.MarkSaved(item.Name, reportLink(out, s.container.Config.Paths.OutputDir, paths[i]))
						fmt.Printf("Saved %s\n", paths[i])
					}
				}
				if err != nil {
					s.writeReport(out)
					return err
				}
			}
			return s.writeReport(out)
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Target column")
	cmd.MarkFlagRequired("target")
	taskFlag(cmd, &task)
	cmd.Flags().StringVar(&out, "out", "", "Report directory (defaults to MODELBENCH_OUTPUT_DIR)")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "Also write the results to this workbook")
	cmd.Flags().BoolVar(&download, "download", false, "Download every trained model")
	return cmd
}

// reportLink makes a saved path relative to the report directory when possible
func reportLink(out, defaultOut, path string) string {
	if out == "" {
		out = defaultOut
	}
	absOut, err1 := filepath.Abs(out)
	absPath, err2 := filepath.Abs(path)
	if err1 != nil || err2 != nil {
		return path
	}
	rel, err := filepath.Rel(absOut, absPath)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func newDownloadCmd() *cobra.Command {
	var all bool
	var task string

	cmd := &cobra.Command{
		Use:   "download [model...]",
		Short: "Download trained models from the server",
		Long: `Download trained models from the server into MODELBENCH_DOWNLOAD_DIR.

With --all every model the server trains for --task is requested, in addition
to any named models.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if all {
				names = append(names, modelNames(training.TaskType(task))...)
			}
			if len(names) == 0 {
				return fmt.Errorf("name at least one model or pass --all")
			}

			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.close()

			paths, err := s.container.Controller.DownloadNamed(cmd.Context(), names)
			for _, p := range paths {
				if p != "" {
					fmt.Printf("Saved %s\n", p)
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Request every model trained for --task")
	taskFlag(cmd, &task)
	return cmd
}

// modelNames lists the models the training server optimizes for task
func modelNames(task training.TaskType) []string {
	specs := testkit.RegressionModels
	if task.IsClassification() {
		specs = testkit.ClassificationModels
	}
	names := make([]string, len(specs))
	for i, spec := range specs {
		names[i] = spec.Name
	}
	return names
}

func newGenerateCmd() *cobra.Command {
	config := testkit.DefaultCustomerConfig()
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic customer dataset as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			data := testkit.NewCustomerDataGenerator(config).Generate()
			if err := testkit.WriteCSV(f, data); err != nil {
				return err
			}
			fmt.Printf("Wrote %d rows to %s (targets: %s, %s)\n", data.Len(), out, testkit.ColChurned, testkit.ColLifetimeValue)
			return nil
		},
	}
	cmd.Flags().IntVar(&config.CustomerCount, "rows", config.CustomerCount, "Number of customers")
	cmd.Flags().Int64Var(&config.Seed, "seed", config.Seed, "Random seed")
	cmd.Flags().Float64Var(&config.NullRate, "null-rate", config.NullRate, "Chance of an empty feature cell")
	cmd.Flags().StringVar(&out, "out", "customers.csv", "Output file")
	return cmd
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Work with written reports",
	}

	var port string
	serve := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Preview a report directory over HTTP",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			c, err := container.New(cfg)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			dir := cfg.Paths.OutputDir
			if len(args) == 1 {
				dir = args[0]
			}
			if port == "" {
				port = cfg.Report.Port
			}
			return report.NewServer(dir, c.Logger).Start(cmd.Context(), ":"+port)
		},
	}
	serve.Flags().StringVar(&port, "port", "", "Port (defaults to MODELBENCH_REPORT_PORT)")
	cmd.AddCommand(serve)
	return cmd
}
