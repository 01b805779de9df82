package document

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/event"
	"github.com/conneroisu/wikicore/internal/logging"
	"github.com/conneroisu/wikicore/internal/model"
)

// DefaultDebounce groups the file events of one save.
const DefaultDebounce = 100 * time.Millisecond

// ChangeType is the kind of file change.
type ChangeType int

const (
	ChangeCreated ChangeType = iota
	ChangeModified
	ChangeDeleted
)

func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeModified:
		return "modified"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is a debounced file change.
type Change struct {
	Type ChangeType
	Path string
}

// Watcher turns file changes below a source root into document events.
type Watcher struct {
	source    *Source
	notifier  event.Notifier
	fs        *fsnotify.Watcher
	debouncer *debouncer
	logger    logging.Logger
	done      chan struct{}
	stopOnce  sync.Once
}

// NewWatcher watches the root of source, and every directory below it,
// notifying document events to notifier.
func NewWatcher(source *Source, notifier event.Notifier, debounce time.Duration, logger logging.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.Discard()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeIO, "create file watcher")
	}
	w := &Watcher{
		source:    source,
		notifier:  notifier,
		fs:        fw,
		debouncer: newDebouncer(debounce),
		logger:    logger.WithComponent("document-watcher"),
		done:      make(chan struct{}),
	}
	if err := w.addRecursive(source.Root()); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
	if err != nil {
		return errors.WrapIO(err, errors.ErrCodeIO, "watch "+root)
	}
	return nil
}

// Start indexes the source and processes changes until ctx is done or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if _, err := w.source.Scan(ctx); err != nil {
		return err
	}
	go w.watchLoop(ctx)
	go w.processLoop(ctx)
	return nil
}

// Stop releases the watcher.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		w.debouncer.stop()
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ctx, e)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, err, "file watcher error")
		}
	}
}

func (w *Watcher) handle(ctx context.Context, e fsnotify.Event) {
	var t ChangeType
	switch {
	case e.Has(fsnotify.Create):
		if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(e.Name); err != nil {
				w.logger.Warn(ctx, err, "cannot watch new directory", "path", e.Name)
			}
			return
		}
		t = ChangeCreated
	case e.Has(fsnotify.Write):
		t = ChangeModified
	case e.Has(fsnotify.Remove), e.Has(fsnotify.Rename):
		t = ChangeDeleted
	default:
		return
	}
	if !Supported(e.Name) {
		return
	}
	w.debouncer.add(Change{Type: t, Path: e.Name})
}

func (w *Watcher) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case changes := <-w.debouncer.output:
			for _, c := range changes {
				w.Apply(ctx, c)
			}
		}
	}
}

// Apply fires the document event of c and updates the source index.
func (w *Watcher) Apply(ctx context.Context, c Change) {
	ref, known := w.source.Indexed(c.Path)
	var e event.DocumentEvent
	switch c.Type {
	case ChangeDeleted:
		if !known {
			return
		}
		w.source.Forget(ref)
		e = event.DocumentDeletedEvent(ref.String())
	default:
		current, err := w.source.Reference(c.Path)
		if err != nil {
			w.logger.Warn(ctx, err, "cannot read changed document", "path", c.Path)
			return
		}
		if known && !current.Equal(ref) {
			// an xwikidoc file now holds another document
			w.source.Forget(ref)
			w.notify(ctx, event.DocumentDeletedEvent(ref.String()), ref)
			known = false
		}
		rel, _ := w.source.rel(c.Path)
		w.source.remember(current, rel)
		ref = current
		e = event.DocumentUpdatedEvent(ref.String())
		if !known {
			e = event.DocumentCreatedEvent(ref.String())
		}
	}
	w.notify(ctx, e, ref)
}

func (w *Watcher) notify(ctx context.Context, e event.DocumentEvent, ref *model.EntityReference) {
	w.logger.Info(ctx, "document changed", "document", e.Reference, "action", e.Action.String())
	w.notifier.Notify(ctx, e, w.source, ref)
}

// debouncer groups rapid changes. The last change of a path wins.
type debouncer struct {
	delay   time.Duration
	output  chan []Change
	mu      sync.Mutex
	timer   *time.Timer
	pending []Change
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, output: make(chan []Change, 10)}
}

func (d *debouncer) add(c Change) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, c)
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.pending) == 0 {
		return
	}
	last := make(map[string]int, len(d.pending))
	for i, c := range d.pending {
		last[c.Path] = i
	}
	changes := make([]Change, 0, len(last))
	for i, c := range d.pending {
		if last[c.Path] == i {
			changes = append(changes, c)
		}
	}
	select {
	case d.output <- changes:
	default:
		// Channel full, skip
	}
	d.pending = d.pending[:0]
}
