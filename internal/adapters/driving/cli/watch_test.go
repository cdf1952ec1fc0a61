package cli

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects handled paths from the watch loop.
type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) handle(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) handled() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestWatchLoop_DebouncesBursts(t *testing.T) {
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		watchLoop(ctx, events, errs, 40*time.Millisecond, rec.handle)
		close(done)
	}()

	events <- fsnotify.Event{Name: "a.pdf", Op: fsnotify.Create}
	events <- fsnotify.Event{Name: "a.pdf", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "a.pdf", Op: fsnotify.Write}
	errs <- assert.AnError
	events <- fsnotify.Event{Name: "b.pdf", Op: fsnotify.Create}
	events <- fsnotify.Event{Name: "b.pdf", Op: fsnotify.Remove}

	require.Eventually(t, func() bool {
		return len(rec.handled()) == 1
	}, time.Second, 10*time.Millisecond)

	// Nothing else settles afterwards.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"a.pdf"}, rec.handled())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch loop did not stop")
	}
}

func TestWatchLoop_StopsWhenEventsClose(t *testing.T) {
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	close(errs)
	close(events)

	done := make(chan struct{})
	go func() {
		watchLoop(context.Background(), events, errs, time.Second, func(string) {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch loop did not stop")
	}
}

func TestWantsCheck(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"submissions/paper.pdf", true},
		{"submissions/.paper.pdf.swp", false},
		{"submissions/~$paper.docx", false},
		{"submissions/paper.pdf_report.html", false},
		{"submissions/paper.pdf_summary.json", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, wantsCheck(tt.path))
		})
	}
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o700))

	files, err := listFiles(dir)

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}, files)

	_, err = listFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestWatchCmd_RejectsFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	path := filepath.Join(t.TempDir(), "paper.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := execute(t, "watch", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestWatchCmd_ChecksExistingFiles(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	for _, name := range []string{"one.txt", "two.pdf", "notes.odt", ".hidden.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	rootCmd.SetArgs([]string{"watch", "--existing", dir})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "one.txt"), filepath.Join(dir, "two.pdf")}, env.check.checked)
	assert.Equal(t, 1, env.closed)
}
