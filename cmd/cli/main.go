// Package main provides the placepix CLI: the interactive assignment loop,
// record listing, and one-shot searches.
//
// Run with: go run ./cmd/cli assign
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rmedina/placepix/internal/collector"
	"github.com/rmedina/placepix/internal/config"
	"github.com/rmedina/placepix/internal/model"
	"github.com/rmedina/placepix/internal/provider"
	"github.com/rmedina/placepix/internal/service"
	"github.com/rmedina/placepix/internal/storage"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "placepix",
		Short: "Assign stock photos to city/country records",
	}

	root.AddCommand(assignCmd())
	root.AddCommand(recordsCmd())
	root.AddCommand(searchCmd())
	return root
}

// env holds the wired application pieces shared by the subcommands.
type env struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *provider.Registry
	records  *storage.RecordStore
	workflow *service.Workflow
	close    func()
}

// setup loads config and wires the dependency graph. CLI runs always use the
// development logger at warn level so operator prompts stay readable.
func setup() (*env, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("PLACEPIX_CONFIG_PATH"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	logger, err := logCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.HistoryPath), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := storage.NewDatabase(cfg.Storage.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	images, err := storage.NewImageStore(cfg.Storage.ImageDir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating image store: %w", err)
	}

	records := storage.NewRecordStore(cfg.Storage.RecordsPath, logger)
	history := storage.NewHistoryRepository(db)
	registry := provider.NewRegistry(cfg.Providers, logger)
	coll := collector.New(logger)
	downloader := service.NewDownloader(logger)
	assigner := service.NewAssignmentService(downloader, images, records, history, logger)
	workflow := service.NewWorkflow(records, registry, coll, assigner, logger)

	return &env{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		records:  records,
		workflow: workflow,
		close: func() {
			db.Close()
			_ = logger.Sync()
		},
	}, nil
}

func recordsCmd() *cobra.Command {
	var unassigned bool

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List the place table",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			var list []model.Record
			if unassigned {
				list, err = e.records.ListUnassigned()
			} else {
				list, err = e.records.LoadAll()
			}
			if err != nil {
				return err
			}

			for _, r := range list {
				mark := " "
				if r.Assigned() {
					mark = "*"
				}
				fmt.Printf("%s %-25s %-20s %s\n", mark, r.City, r.Country, r.Filename)
			}
			fmt.Printf("%d records\n", len(list))
			return nil
		},
	}

	cmd.Flags().BoolVar(&unassigned, "unassigned", false, "Only records without an image")
	return cmd
}

func searchCmd() *cobra.Command {
	var providerName string
	var page int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a one-shot provider search",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			p, err := e.registry.ForName(providerName)
			if err != nil {
				return err
			}

			result, err := p.Search(cmd.Context(), strings.Join(args, " "), page, collector.PageSize)
			if err != nil {
				return err
			}

			fmt.Printf("%s: %d total\n", p.Name(), result.Total)
			for _, img := range result.Results {
				fmt.Printf("  %-12s %-40s %s\n", img.ID, truncate(img.Label, 40), img.DownloadURL())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", string(model.DefaultProvider), "pixabay, unsplash, or pexels")
	cmd.Flags().IntVar(&page, "page", 1, "Result page to fetch")
	return cmd
}

func assignCmd() *cobra.Command {
	var providerName string
	var filter string

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Walk unassigned records and pick photos interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				cancel()
			}()

			return runAssignLoop(ctx, e, providerName, filter)
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "Initial provider (default pixabay)")
	cmd.Flags().StringVar(&filter, "filter", "", "Only countries starting with this letter")
	return cmd
}

// runAssignLoop drives the operator prompt: show candidates for the current
// record, read a command, apply it, repeat until done or quit.
func runAssignLoop(ctx context.Context, e *env, providerName, filter string) error {
	view, err := e.workflow.StartSession(ctx, providerName, filter)
	if err != nil && view == nil {
		return err
	}
	printView(view, err)

	scanner := bufio.NewScanner(os.Stdin)
	for view.State == service.StateBrowsing {
		fmt.Print("pick 1-6 | (m)ore | (s)kip | p <provider> | f <letter> | (q)uit > ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		view, err = applyCommand(ctx, e, view, strings.TrimSpace(scanner.Text()))
		if view == nil {
			return err
		}
		printView(view, err)
	}

	switch view.State {
	case service.StateAllDone:
		fmt.Println("All records have images. Done.")
	case service.StateNoMatches:
		fmt.Printf("No records match filter %q.\n", view.Filter)
	}
	return scanner.Err()
}

// applyCommand maps one line of operator input onto a workflow operation.
// Unrecognized input just re-renders the current view.
func applyCommand(ctx context.Context, e *env, view *service.SessionView, line string) (*service.SessionView, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return view, nil
	}

	switch fields[0] {
	case "q", "quit":
		return nil, nil
	case "m", "more":
		return e.workflow.More(ctx, view.ID)
	case "s", "skip":
		return e.workflow.Skip(ctx, view.ID)
	case "p", "provider":
		if len(fields) < 2 {
			fmt.Println("usage: p <pixabay|unsplash|pexels>")
			return view, nil
		}
		next, err := e.workflow.SetProvider(ctx, view.ID, fields[1])
		if next == nil {
			fmt.Printf("cannot switch provider: %v\n", err)
			return view, nil
		}
		return next, err
	case "f", "filter":
		letter := ""
		if len(fields) > 1 {
			letter = fields[1]
		}
		return e.workflow.SetFilter(ctx, view.ID, letter)
	default:
		if n, err := strconv.Atoi(fields[0]); err == nil {
			if n < 1 || n > len(view.Candidates) {
				fmt.Printf("pick a number between 1 and %d\n", len(view.Candidates))
				return view, nil
			}
			return e.workflow.Pick(ctx, view.ID, view.Candidates[n-1].ID)
		}
		fmt.Println("unrecognized command")
		return view, nil
	}
}

func printView(view *service.SessionView, opErr error) {
	if opErr != nil {
		fmt.Printf("! %v\n", opErr)
	}
	if view.State != service.StateBrowsing {
		return
	}

	fmt.Printf("\n[%s] %s, %s  (%d remaining, %d results upstream)\n",
		view.Provider, view.Record.City, view.Record.Country, view.Remaining, view.Total)
	if len(view.Candidates) == 0 {
		fmt.Println("  no images available now, try (m)ore or another provider")
		return
	}
	for i, img := range view.Candidates {
		fmt.Printf("  %d) %-40s %dx%d  %s\n",
			i+1, truncate(img.Label, 40), img.Width, img.Height, img.DownloadURL())
	}
}

// truncate shortens a label to n runes. Provider labels carry arbitrary
// text, so slicing must not split a multibyte character.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
