package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestNewFileWatcher(t *testing.T) {
	watcher, err := NewFileWatcher(100 * time.Millisecond)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NotNil(t, watcher.watcher)
	assert.NotNil(t, watcher.debouncer)
	assert.Empty(t, watcher.filters)
	assert.Empty(t, watcher.handlers)
}

func TestFileWatcherAddFilter(t *testing.T) {
	watcher, err := NewFileWatcher(100 * time.Millisecond)
	require.NoError(t, err)
	defer watcher.Stop()

	watcher.AddFilter(YamlFilter)
	assert.Len(t, watcher.filters, 1)

	watcher.AddFilter(NoHiddenFilter)
	assert.Len(t, watcher.filters, 2)
}

func TestFileWatcherAddHandler(t *testing.T) {
	watcher, err := NewFileWatcher(100 * time.Millisecond)
	require.NoError(t, err)
	defer watcher.Stop()

	handlerCalled := false
	handler := func(events []ChangeEvent) error {
		handlerCalled = true
		return nil
	}

	watcher.AddHandler(handler)
	assert.Len(t, watcher.handlers, 1)

	watcher.mutex.RLock()
	for _, h := range watcher.handlers {
		h([]ChangeEvent{{Type: EventTypeCreated, Path: "calc.yml"}})
	}
	watcher.mutex.RUnlock()

	assert.True(t, handlerCalled)
}

func TestFileWatcherAddPath(t *testing.T) {
	watcher, err := NewFileWatcher(100 * time.Millisecond)
	require.NoError(t, err)
	defer watcher.Stop()

	tempDir := t.TempDir()

	err = watcher.AddPath(tempDir)
	assert.NoError(t, err)

	err = watcher.AddPath("/non/existent/path")
	assert.Error(t, err)
}

func TestFileWatcherAddDocument(t *testing.T) {
	watcher, err := NewFileWatcher(100 * time.Millisecond)
	require.NoError(t, err)
	defer watcher.Stop()

	tempDir := t.TempDir()
	docPath := filepath.Join(tempDir, "calc.yml")
	require.NoError(t, os.WriteFile(docPath, []byte("calculation: uscf-1\n"), 0644))

	// The enclosing directory is watched, so the document itself does
	// not have to exist yet.
	err = watcher.AddDocument(docPath)
	assert.NoError(t, err)

	err = watcher.AddDocument(filepath.Join(tempDir, "not-written-yet.yml"))
	assert.NoError(t, err)

	err = watcher.AddDocument("/non/existent/dir/calc.yml")
	assert.Error(t, err)
}

func TestFileWatcherStartStop(t *testing.T) {
	watcher, err := NewFileWatcher(50 * time.Millisecond)
	require.NoError(t, err)
	defer watcher.Stop()

	tempDir := t.TempDir()

	err = watcher.AddPath(tempDir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var eventReceived bool
	var eventMutex sync.Mutex

	watcher.AddHandler(func(events []ChangeEvent) error {
		eventMutex.Lock()
		eventReceived = true
		eventMutex.Unlock()
		return nil
	})

	err = watcher.Start(ctx)
	require.NoError(t, err)

	// Give watcher time to start
	time.Sleep(100 * time.Millisecond)

	testFile := filepath.Join(tempDir, "calc.yml")
	err = os.WriteFile(testFile, []byte("calculation: uscf-1\n"), 0644)
	require.NoError(t, err)

	// Wait for debouncing and event processing
	time.Sleep(200 * time.Millisecond)

	eventMutex.Lock()
	received := eventReceived
	eventMutex.Unlock()

	assert.True(t, received)

	cancel()
	err = watcher.Stop()
	assert.NoError(t, err)
}

func TestYamlFilter(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"calc.yml", true},
		{"runs/fe2o3/calc.yaml", true},
		{"main.go", false},
		{"aiida.in", false},
		{"notes.txt", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, YamlFilter(tc.path))
		})
	}
}

func TestNoHiddenFilter(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"calc.yml", true},
		{"runs/calc.yml", true},
		{".calc.yml.swx", false},
		{"runs/.hidden", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, NoHiddenFilter(tc.path))
		})
	}
}

func TestNoBackupFilter(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"calc.yml", true},
		{"calc.yml~", false},
		{"calc.yml.swp", false},
		{"calc.yml.tmp", false},
		{"calc.yml.bak", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, NoBackupFilter(tc.path))
		})
	}
}

func TestPathFilter(t *testing.T) {
	filter := PathFilter("runs/calc.yml", "/scratch/other.yml")

	assert.True(t, filter("runs/calc.yml"))
	assert.True(t, filter("./runs/calc.yml"))
	assert.True(t, filter("/scratch/other.yml"))
	assert.False(t, filter("runs/unrelated.yml"))
	assert.False(t, filter("calc.yml"))
}

func TestDebouncer(t *testing.T) {
	debouncer := &Debouncer{
		delay:   50 * time.Millisecond,
		events:  make(chan ChangeEvent, 100),
		output:  make(chan []ChangeEvent, 10),
		pending: make([]ChangeEvent, 0),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go debouncer.start(ctx)

	var receivedEvents [][]ChangeEvent
	var eventMutex sync.Mutex

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case events := <-debouncer.output:
				eventMutex.Lock()
				receivedEvents = append(receivedEvents, events)
				eventMutex.Unlock()
			}
		}
	}()

	// Send multiple events quickly
	debouncer.events <- ChangeEvent{Path: "calc.yml", Type: EventTypeModified}
	debouncer.events <- ChangeEvent{Path: "calc.yml", Type: EventTypeModified}
	debouncer.events <- ChangeEvent{Path: "other.yml", Type: EventTypeModified}

	// Wait for debouncing
	time.Sleep(150 * time.Millisecond)

	eventMutex.Lock()
	finalEvents := receivedEvents
	eventMutex.Unlock()

	assert.Greater(t, len(finalEvents), 0)
	if len(finalEvents) > 0 {
		// calc.yml deduplicated, other.yml kept
		assert.LessOrEqual(t, len(finalEvents[0]), 2)
	}
}

func TestChangeEvent(t *testing.T) {
	now := time.Now()
	event := ChangeEvent{
		Type:    EventTypeModified,
		Path:    "/scratch/runs/calc.yml",
		ModTime: now,
		Size:    1024,
	}

	assert.Equal(t, EventTypeModified, event.Type)
	assert.Equal(t, "/scratch/runs/calc.yml", event.Path)
	assert.Equal(t, now, event.ModTime)
	assert.Equal(t, int64(1024), event.Size)
}

func TestFileWatcherValidation(t *testing.T) {
	watcher, err := NewFileWatcher(100 * time.Millisecond)
	require.NoError(t, err)
	defer watcher.Stop()

	err = watcher.AddPath("../../../etc")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "traversal")

	err = watcher.AddDocument("../calc.yml")
	assert.Error(t, err)
}

func TestFileWatcherConcurrency(t *testing.T) {
	watcher, err := NewFileWatcher(50 * time.Millisecond)
	require.NoError(t, err)
	defer watcher.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			watcher.AddFilter(YamlFilter)
			watcher.AddHandler(func(events []ChangeEvent) error { return nil })
		}()
	}
	wg.Wait()

	watcher.mutex.RLock()
	defer watcher.mutex.RUnlock()
	assert.Len(t, watcher.filters, 10)
	assert.Len(t, watcher.handlers, 10)
}

func TestAddRecursive(t *testing.T) {
	watcher, err := NewFileWatcher(100 * time.Millisecond)
	require.NoError(t, err)
	defer watcher.Stop()

	tempDir := t.TempDir()
	nested := filepath.Join(tempDir, "runs", "fe2o3")
	require.NoError(t, os.MkdirAll(nested, 0755))

	err = watcher.AddRecursive(tempDir)
	assert.NoError(t, err)

	err = watcher.AddRecursive("/non/existent/root")
	assert.Error(t, err)
}
