package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/angelsen/ry-tool/pkg/console"
	"github.com/angelsen/ry-tool/pkg/logger"
	"github.com/angelsen/ry-tool/pkg/workflow"
)

var watchLog = logger.New("cli:watch")

// watchDebounce coalesces the event bursts editors produce for a
// single save.
const watchDebounce = 200 * time.Millisecond

// watchAndRecompile recompiles the document to the output file whenever
// it (or a sibling in its directory) changes. Compile errors are
// reported and watching continues; only watcher failures end the loop.
func watchAndRecompile(ctx *workflow.ExecutionContext, output string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory rather than the file: editors that rename-
	// and-replace on save would otherwise detach the watch.
	docDir := filepath.Dir(ctx.DocumentPath)
	if err := watcher.Add(docDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", docDir, err)
	}
	watchLog.Printf("Watching %s", docDir)

	recompile := func() {
		script, err := compileDocument(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			return
		}
		if err := writeOutput(script, output); err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			return
		}
		fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(
			fmt.Sprintf("Compiled %s -> %s", console.ToRelativePath(ctx.DocumentPath), output)))
	}

	recompile()
	fmt.Fprintln(os.Stderr, console.FormatInfoMessage("Watching for changes (Ctrl+C to stop)"))

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantWatchEvent(event) {
				continue
			}
			watchLog.Printf("Change detected: %s (%s)", event.Name, event.Op)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case <-pending:
			recompile()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// relevantWatchEvent filters to YAML writes and the rename/create pairs
// editors emit on save.
func relevantWatchEvent(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	return ext == ".yaml" || ext == ".yml"
}
