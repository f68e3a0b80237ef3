package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
	"github.com/phishguard-labs/phishguard-cli/internal/core/ports/driving"
	"github.com/phishguard-labs/phishguard-cli/internal/corpus"
	"github.com/phishguard-labs/phishguard-cli/internal/logger"
)

// rebuildDebounce coalesces bursts of file events into one rebuild.
const rebuildDebounce = 500 * time.Millisecond

var (
	buildPolicies string
	buildWatch    bool
)

var buildIndexCmd = &cobra.Command{
	Use:   "build-index",
	Short: "Embed the policy corpus and build the index",
	Long: `Embeds every policy in the corpus and writes the vector index.
Any existing index is replaced.

With --policies the corpus is read from a file (one policy per line,
'#' lines are comments); otherwise the built-in policies are used.
With --watch the command keeps running and rebuilds the index whenever
the policy file changes.`,
	Args: cobra.NoArgs,
	RunE: runBuildIndex,
}

func init() {
	buildIndexCmd.Flags().StringVar(&buildPolicies, "policies", "", "path to a policy file (one policy per line)")
	buildIndexCmd.Flags().BoolVar(&buildWatch, "watch", false, "rebuild automatically when the policy file changes")
	rootCmd.AddCommand(buildIndexCmd)
}

func runBuildIndex(cmd *cobra.Command, _ []string) error {
	if buildWatch && buildPolicies == "" {
		return fmt.Errorf("%w: --watch requires --policies", domain.ErrInvalidRequest)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	policiesPath := buildPolicies
	if policiesPath == "" {
		policiesPath = cfg.Corpus.Path
	}

	svc := indexService
	var closer *analysisCloser
	if svc == nil {
		svc, closer, err = newIndexService(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()
	}

	if err := buildOnce(cmd, svc, policiesPath); err != nil {
		return err
	}
	if !buildWatch {
		return nil
	}
	return watchAndRebuild(cmd, svc, policiesPath)
}

func buildOnce(cmd *cobra.Command, svc driving.IndexService, policiesPath string) error {
	policies, err := corpus.Load(policiesPath)
	if err != nil {
		return err
	}

	cmd.Printf("Embedding %d policies...\n", len(policies))
	start := time.Now()

	result, err := svc.Build(context.Background(), policies)
	if err != nil {
		return err
	}

	cmd.Printf("Index built: %d policies, %d dimensions, model %s (%s)\n",
		result.Manifest.PolicyCount,
		result.Manifest.Dimensions,
		result.Manifest.EmbeddingModel,
		time.Since(start).Round(time.Millisecond))
	if result.ValidationHits == 0 {
		cmd.Println("Warning: the post-build validation query returned no results.")
	}
	return nil
}

// watchAndRebuild blocks, rebuilding the index on every change to the
// policy file, until interrupted.
func watchAndRebuild(cmd *cobra.Command, svc driving.IndexService, policiesPath string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // best-effort cleanup

	// Watch the directory rather than the file itself so that editors
	// which replace the file (rename + create) keep being tracked.
	dir := filepath.Dir(policiesPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for changes (Ctrl+C to stop)...\n", policiesPath)

	var timer *time.Timer
	rebuild := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			cmd.Println("Stopping watch.")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher closed unexpectedly")
			}
			if filepath.Clean(event.Name) != filepath.Clean(policiesPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("Policy file event: %s", event.Op)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(rebuildDebounce, func() {
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher closed unexpectedly")
			}
			logger.Warn("Watcher error: %v", err)
		case <-rebuild:
			cmd.Println("Policy file changed, rebuilding index...")
			if err := buildOnce(cmd, svc, policiesPath); err != nil {
				// Keep watching; a bad intermediate save should not
				// kill the session.
				cmd.Printf("Rebuild failed: %v\n", err)
			}
		}
	}
}
