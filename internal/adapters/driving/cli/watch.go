package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/h24486064/plagiarism-detection/internal/logger"
)

// defaultSettle is how long a file must stay quiet before it is checked.
// Editors and copy tools write in bursts.
const defaultSettle = 2 * time.Second

var (
	watchExisting bool
	watchSettle   time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Check new and modified files in a submissions directory",
	Long: `Watches a directory and runs check on every supported file that is created
or modified in it. Files are checked one at a time, after they have stopped
changing. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	addRunFlags(watchCmd)
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also check files already in the directory")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", defaultSettle, "quiet period before a changed file is checked")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) (err error) {
	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch: %s is not a directory", dir)
	}

	rt, err := openRuntime(cmd, runOptions())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close runtime: %w", cerr)
		}
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx := commandContext(cmd)
	handle := func(path string) {
		if !wantsCheck(path) || !rt.Check.Supports(path) {
			return
		}
		report, err := rt.Check.Check(ctx, path)
		if err != nil {
			if ctx.Err() == nil {
				cmd.PrintErrf("%s: %v\n", path, err)
			}
			return
		}
		printReport(cmd, report)
	}

	if watchExisting {
		existing, err := listFiles(dir)
		if err != nil {
			return err
		}
		for _, path := range existing {
			if ctx.Err() != nil {
				return nil
			}
			handle(path)
		}
	}

	cmd.Println(mutedStyle.Render("Watching " + dir + " (Ctrl+C to stop)"))
	watchLoop(ctx, watcher.Events, watcher.Errors, watchSettle, handle)
	return nil
}

// watchLoop collects create and write events and calls handle for each path
// once it has been quiet for settle. Paths are handled one at a time in the
// order they settled. It returns when ctx is done or events is closed.
func watchLoop(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	settle time.Duration,
	handle func(path string),
) {
	if settle <= 0 {
		settle = defaultSettle
	}
	tick := time.NewTicker(settle / 4)
	defer tick.Stop()

	pending := make(map[string]time.Time)
	flush := func(now time.Time) {
		var ready []string
		for path, last := range pending {
			if now.Sub(last) >= settle {
				ready = append(ready, path)
			}
		}
		sort.Slice(ready, func(i, j int) bool {
			return pending[ready[i]].Before(pending[ready[j]])
		})
		for _, path := range ready {
			delete(pending, path)
			if ctx.Err() != nil {
				return
			}
			handle(path)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch {
			case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
				pending[ev.Name] = time.Now()
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				delete(pending, ev.Name)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("Watch error: %v", err)
		case now := <-tick.C:
			flush(now)
		}
	}
}

// wantsCheck filters out hidden files, editor lock files and reports.
func wantsCheck(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."), strings.HasPrefix(base, "~$"):
		return false
	case strings.HasSuffix(base, "_report.html"), strings.HasSuffix(base, "_summary.json"):
		return false
	}
	return true
}

// listFiles returns the regular files directly inside dir, sorted by name.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
