package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/cellforge/cellforge/pkg/pipeline"
	"github.com/cellforge/cellforge/pkg/project"
)

// watchDebounce coalesces bursts of filesystem events into one rerun.
// Editors typically fire several writes per save.
const watchDebounce = 200 * time.Millisecond

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		manifestPath string
		outDir       string
		formats      string
		refresh      bool
		noCache      bool
		watch        bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run a project manifest and write the exported artifacts",
		Long: `Generate reads a cellforge.toml manifest, builds every target through the
generation pipeline, and writes the exported artifacts to the output
directory as <target>.<format> files.

With --watch the command keeps running and regenerates whenever the
manifest changes.`,
		Example: `  cellforge generate
  cellforge generate -m designs/adder.toml -f json,svg
  cellforge generate --watch --refresh`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			runner, err := c.newRunner(noCache)
			if err != nil {
				return fmt.Errorf("create runner: %w", err)
			}

			run := func() error {
				m, err := project.Load(manifestPath)
				if err != nil {
					return err
				}
				if outDir != "" {
					m.Project.Out = outDir
				}
				if f := parseFormats(formats); len(f) > 0 {
					m.Project.Formats = f
				}
				return c.runManifest(ctx, runner, m, pipeline.Options{Refresh: refresh})
			}

			if err := run(); err != nil {
				if !watch {
					return err
				}
				printError("%v", err)
			}
			if !watch {
				return nil
			}
			return c.watchManifest(ctx, manifestPath, run)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", project.DefaultManifestName, "path to the project manifest")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (overrides the manifest)")
	cmd.Flags().StringVarP(&formats, "formats", "f", "", "comma-separated export formats (overrides the manifest)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass artifact cache reads")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache entirely")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "regenerate when the manifest changes")

	return cmd
}

// runManifest executes one manifest and writes its artifacts to disk.
func (c *CLI) runManifest(ctx context.Context, runner *pipeline.Runner, m *project.Manifest, opts pipeline.Options) error {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating %d targets...", len(m.Targets)))
	spinner.Start()

	p := newProgress(c.Logger)
	res, err := runner.Execute(ctx, m, opts)
	if err != nil {
		spinner.Stop()
		if spinner.Cancelled() {
			return ctx.Err()
		}
		return err
	}
	spinner.Stop()

	if err := os.MkdirAll(m.Project.Out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, tr := range res.Targets {
		printSuccess("%s (%s)", tr.Target, tr.View)
		for _, format := range m.Project.Formats {
			path := filepath.Join(m.Project.Out, tr.Target+"."+format)
			if err := os.WriteFile(path, tr.Artifacts[format], 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			printFile(path)
		}
		printStats(tr.CellKey, len(m.Project.Formats), len(tr.CacheHits))
	}

	p.done(fmt.Sprintf("Generated %d targets", len(res.Targets)))
	return nil
}

// watchManifest reruns the pipeline whenever the manifest file changes.
// It blocks until the context is cancelled.
func (c *CLI) watchManifest(ctx context.Context, manifestPath string, run func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on save,
	// which drops a watch placed on the file itself.
	dir := filepath.Dir(manifestPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	absManifest, err := filepath.Abs(manifestPath)
	if err != nil {
		return err
	}

	printInfo("Watching %s", manifestPath)

	var debounce *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || abs != absManifest {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch error", "err", err)
		case <-pending:
			printInfo("Manifest changed, regenerating")
			if err := run(); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				printError("%v", err)
			}
		}
	}
}
