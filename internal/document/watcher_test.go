package document

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/wikicore/internal/event"
)

type recorder struct {
	mu     sync.Mutex
	events []event.DocumentEvent
}

func (r *recorder) Notify(_ context.Context, e event.Event, _, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.(event.DocumentEvent))
}

func (r *recorder) snapshot() []event.DocumentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.DocumentEvent(nil), r.events...)
}

func TestChangeTypeString(t *testing.T) {
	assert.Equal(t, "created", ChangeCreated.String())
	assert.Equal(t, "modified", ChangeModified.String())
	assert.Equal(t, "deleted", ChangeDeleted.String())
	assert.Equal(t, "unknown", ChangeType(9).String())
}

func TestApply(t *testing.T) {
	s, root := newSource(t)
	rec := &recorder{}
	w, err := NewWatcher(s, rec, 0, nil)
	require.NoError(t, err)
	defer w.Stop()

	ctx := context.Background()
	_, err = s.Scan(ctx)
	require.NoError(t, err)

	w.Apply(ctx, Change{Type: ChangeModified, Path: filepath.Join(root, "Top.md")})
	newPath := writeFile(t, root, "Sandbox/New.xwiki", "new")
	w.Apply(ctx, Change{Type: ChangeCreated, Path: newPath})
	require.NoError(t, os.Remove(newPath))
	w.Apply(ctx, Change{Type: ChangeDeleted, Path: newPath})
	w.Apply(ctx, Change{Type: ChangeDeleted, Path: filepath.Join(root, "Never.xwiki")})

	// the export now holds another document
	writeFile(t, root, "export.xml", `<xwikidoc><web>Help</web><name>Moved</name></xwikidoc>`)
	w.Apply(ctx, Change{Type: ChangeModified, Path: filepath.Join(root, "export.xml")})

	assert.Equal(t, []event.DocumentEvent{
		event.DocumentUpdatedEvent("xwiki:Main.Top"),
		event.DocumentCreatedEvent("xwiki:Sandbox.New"),
		event.DocumentDeletedEvent("xwiki:Sandbox.New"),
		event.DocumentDeletedEvent("xwiki:Help.Start"),
		event.DocumentCreatedEvent("xwiki:Help.Moved"),
	}, rec.snapshot())
}

func TestDebouncerKeepsLastChangePerPath(t *testing.T) {
	d := newDebouncer(time.Hour)
	d.add(Change{Type: ChangeCreated, Path: "a"})
	d.add(Change{Type: ChangeModified, Path: "b"})
	d.add(Change{Type: ChangeModified, Path: "a"})
	d.stop()
	d.flush()

	select {
	case changes := <-d.output:
		assert.Equal(t, []Change{
			{Type: ChangeModified, Path: "b"},
			{Type: ChangeModified, Path: "a"},
		}, changes)
	default:
		t.Fatal("no changes flushed")
	}
	d.flush()
	assert.Empty(t, d.output)
}

func TestWatcherNotifiesFileChanges(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping file system watcher test in short mode")
	}
	s, root := newSource(t)
	rec := &recorder{}
	w, err := NewWatcher(s, rec, 20*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	writeFile(t, root, "Main/WebHome.xwiki", "edited")
	writeFile(t, root, "Main/notes.pdf", "ignored")

	assert.Eventually(t, func() bool {
		for _, e := range rec.snapshot() {
			if e == event.DocumentUpdatedEvent("xwiki:Main.WebHome") {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	for _, e := range rec.snapshot() {
		assert.NotContains(t, e.Reference, "notes")
	}
}
