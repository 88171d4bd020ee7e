package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pbaille/legalsts/internal/api"
	"github.com/pbaille/legalsts/internal/config"
	"github.com/pbaille/legalsts/internal/domain"
	"github.com/pbaille/legalsts/internal/storage"
	"github.com/pbaille/legalsts/internal/store"
	"github.com/pbaille/legalsts/internal/sts"
)

// Set at build time.
var (
	commit = "dev"
	date   = ""
)

var (
	configPath string
	dbPath     string
	verbose    bool

	cfg    config.Config
	logger *slog.Logger
)

// Pipeline tasks accepted by the sts and mlm commands.
const (
	taskAll    = "all"
	taskScrape = "scrape"
	taskParse  = "parse"
	taskExport = "export"
)

var tasks = []string{taskAll, taskScrape, taskParse, taskExport}

func main() {
	envErr := godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "legalsts",
		Short:         "Build STS and MLM datasets from Brazilian legal texts",
		Version:       strings.TrimSpace(commit + " " + date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
			if envErr != nil {
				logger.Debug("no .env file loaded", "err", envErr)
			}

			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if dbPath == "" {
				dbPath = cfg.Database
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: built-in sources)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "run catalog path (default: <output>/legalsts.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(stsCmd())
	rootCmd.AddCommand(mlmCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(runsCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(serveCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func getStore() (*store.Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return store.New(dbPath)
}

func taskArg(args []string) string {
	if len(args) == 0 {
		return taskAll
	}
	return args[0]
}

func runs(task, stage string) bool {
	return task == taskAll || task == stage
}

func stsCmd() *cobra.Command {
	var variant string

	cmd := &cobra.Command{
		Use:       "sts [all|scrape|parse|export]",
		Short:     "Run the sentence-similarity pipeline",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: tasks,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := sts.LookupVariant(variant); err != nil {
				return err
			}
			task := taskArg(args)
			ctx := cmd.Context()

			logger.Info("starting sts pipeline", "task", task, "variant", variant)
			if runs(task, taskScrape) {
				if err := scrapeCorpora(ctx); err != nil {
					return err
				}
			}
			if runs(task, taskParse) {
				if err := checkCorpora(); err != nil {
					return err
				}
			}
			if runs(task, taskExport) {
				run, err := exportSTS(ctx, variant)
				if err != nil {
					return err
				}
				printRun(run)
			}
			logger.Info("sts pipeline finished")
			return nil
		},
	}

	cmd.Flags().StringVarP(&variant, "sts-type", "t", "binary", "dataset variant ("+variantNames()+")")
	return cmd
}

func mlmCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "mlm [all|scrape|parse|export]",
		Short:     "Run the masked-language-model corpus pipeline",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: tasks,
		RunE: func(cmd *cobra.Command, args []string) error {
			task := taskArg(args)
			ctx := cmd.Context()

			logger.Info("starting mlm pipeline", "task", task)
			if runs(task, taskScrape) {
				if err := scrapePages(ctx); err != nil {
					return err
				}
			}
			if runs(task, taskParse) {
				if err := parsePages(); err != nil {
					return err
				}
			}
			if runs(task, taskExport) {
				run, err := exportMLM(ctx)
				if err != nil {
					return err
				}
				printRun(run)
			}
			logger.Info("mlm pipeline finished")
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Token-length histogram of the ementas and the MLM corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			buckets, total, err := tokenStatistics()
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(buckets)
			}

			fmt.Printf("%d sentences\n", total)
			for _, b := range buckets {
				fmt.Printf("  <= %-5s %8d  %6.2f%%\n", b.Label, b.Count, b.Percent)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the histogram as JSON")
	return cmd
}

func runsCmd() *cobra.Command {
	var (
		limit   int
		variant string
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			list, err := s.ListRuns(variant, limit, 0)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No runs yet. Use 'legalsts sts export' to create one.")
				return nil
			}
			for _, r := range list {
				fmt.Printf("%s  %s  %-4s %-10s %8d samples\n",
					r.ID[:8], r.CreatedAt.Format("2006-01-02 15:04:05"), r.Pipeline, r.Variant, r.Samples)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	cmd.Flags().StringVar(&variant, "variant", "", "only runs of this variant")
	cmd.AddCommand(runsRmCmd())
	return cmd
}

func runsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a run and its published files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			run, err := s.FindRunByPrefix(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			st, err := newStorage(cmd.Context())
			if err != nil {
				return err
			}
			if st != nil {
				n, err := storage.Unpublish(cmd.Context(), st, run)
				if err != nil {
					return err
				}
				logger.Info("published files removed", "id", run.ID, "count", n)
			}

			if err := s.DeleteRun(run.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted run %s\n", run.ID)
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a run and its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			run, err := s.FindRunByPrefix(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			printRun(run)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the run catalog API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			// Note: don't defer s.Close() as server runs indefinitely
			if addr == "" {
				addr = cfg.Server.Addr
			}
			return api.New(s, addr, logger).Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (default: config server.addr)")
	return cmd
}

func printRun(run *domain.Run) {
	fmt.Printf("ID:         %s\n", run.ID)
	fmt.Printf("Created:    %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Pipeline:   %s\n", run.Pipeline)
	fmt.Printf("Variant:    %s\n", run.Variant)
	fmt.Printf("Samples:    %d (skipped %d, duplicates %d)\n", run.Samples, run.Skipped, run.Duplicates)
	if len(run.Files) > 0 {
		fmt.Printf("\nFiles:\n")
		for _, f := range run.Files {
			fmt.Printf("  - %-6s %8d rows  %s\n", f.Split, f.Rows, fileLocation(f))
		}
	}
}

func fileLocation(f domain.RunFile) string {
	if f.Location != "" {
		return f.Location
	}
	return f.Path
}

func variantNames() string {
	vs := sts.Variants()
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = v.Name
	}
	return strings.Join(names, ", ")
}
