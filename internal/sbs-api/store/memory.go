package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/kart-io/logger"

	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/internal/pkg/textmatch"
	"github.com/kart-io/sbs-x/pkg/cache"
	"github.com/kart-io/sbs-x/pkg/utils/json"
)

// Dataset is the on-disk layout of the memory backend.
type Dataset struct {
	Volumes []*model.Volume     `json:"volumes"`
	Tags    []*model.VolumeTags `json:"tags"`
}

// LoadDataset reads and decodes a dataset file.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset %s: %w", path, err)
	}
	for i, v := range ds.Volumes {
		if v == nil || v.Volume <= 0 {
			return nil, fmt.Errorf("dataset %s: volume entry %d has no valid volume number", path, i)
		}
	}
	for i, t := range ds.Tags {
		if t == nil || t.Volume <= 0 {
			return nil, fmt.Errorf("dataset %s: tags entry %d has no valid volume number", path, i)
		}
	}
	return &ds, nil
}

var (
	_ Factory  = (*MemoryFactory)(nil)
	_ Reloader = (*MemoryFactory)(nil)
)

// MemoryFactory implements Factory on in-memory caches loaded from a dataset file.
type MemoryFactory struct {
	path    string
	volumes *memoryVolumes
	tags    *memoryTags

	mu       sync.Mutex
	reloaded []func()
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewMemoryFactory loads the dataset at path. An empty path yields an empty store.
func NewMemoryFactory(path string) (*MemoryFactory, error) {
	f := NewMemoryFactoryFromDataset(&Dataset{})
	f.path = path
	if path == "" {
		return f, nil
	}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// NewMemoryFactoryFromDataset builds a store over ds.
func NewMemoryFactoryFromDataset(ds *Dataset) *MemoryFactory {
	f := &MemoryFactory{
		volumes: &memoryVolumes{data: cache.NewTable[int, *model.Volume](volumeKey, nil)},
		tags: &memoryTags{data: cache.NewTable(tagsKey, map[string]cache.IndexFunc[*model.VolumeTags]{
			string(model.FieldTags):       tagValues(model.FieldTags),
			string(model.FieldCharacters): tagValues(model.FieldCharacters),
		})},
	}
	f.apply(ds)
	return f
}

func tagValues(field model.TagField) cache.IndexFunc[*model.VolumeTags] {
	return func(t *model.VolumeTags) []string {
		var out []string
		for ci := range t.Chapters {
			for si := range t.Chapters[ci].Sections {
				out = append(out, t.Chapters[ci].Sections[si].Values(field)...)
			}
		}
		return out
	}
}

func (f *MemoryFactory) apply(ds *Dataset) {
	f.volumes.data.Replace(ds.Volumes)
	f.tags.data.Replace(ds.Tags)
}

// Reload re-reads the dataset file. On failure the current content is kept.
func (f *MemoryFactory) Reload() error {
	ds, err := LoadDataset(f.path)
	if err != nil {
		return err
	}
	f.apply(ds)
	logger.Infow("Dataset loaded", "path", f.path, "volumes", len(ds.Volumes), "tags", len(ds.Tags))

	f.mu.Lock()
	hooks := slices.Clone(f.reloaded)
	f.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
	return nil
}

// OnReload registers fn to run after every successful Reload.
func (f *MemoryFactory) OnReload(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloaded = append(f.reloaded, fn)
}

// Watch reloads the dataset whenever its file is written, created or renamed into place.
// The parent directory is watched so editors that replace the file are noticed.
func (f *MemoryFactory) Watch() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.path == "" {
		return fmt.Errorf("no dataset file to watch")
	}
	if f.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create dataset watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(f.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(f.path), err)
	}

	f.watcher = w
	f.stopCh = make(chan struct{})
	f.doneCh = make(chan struct{})
	go f.watchLoop(w, f.stopCh, f.doneCh)

	logger.Infow("Watching dataset for changes", "path", f.path)
	return nil
}

func (f *MemoryFactory) watchLoop(w *fsnotify.Watcher, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	target := filepath.Clean(f.path)
	for {
		select {
		case <-stopCh:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if err := f.Reload(); err != nil {
				logger.Warnw("Dataset reload failed, keeping previous content", "path", f.path, "error", err.Error())
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warnw("Dataset watcher error", "error", err.Error())
		}
	}
}

// Volumes returns the volume store.
func (f *MemoryFactory) Volumes() VolumeStore {
	return f.volumes
}

// Tags returns the tag store.
func (f *MemoryFactory) Tags() TagStore {
	return f.tags
}

// Ping always succeeds.
func (f *MemoryFactory) Ping(context.Context) error {
	return nil
}

// Close stops the watcher, if any.
func (f *MemoryFactory) Close() error {
	return f.Unwatch()
}

// Unwatch stops reloading on file changes. It is a no-op when not watching.
func (f *MemoryFactory) Unwatch() error {
	return f.UnwatchContext(context.Background())
}

// UnwatchContext is Unwatch bounded by ctx. The watcher is closed even when
// ctx expires before a running reload finishes.
func (f *MemoryFactory) UnwatchContext(ctx context.Context) error {
	f.mu.Lock()
	w, stopCh, doneCh := f.watcher, f.stopCh, f.doneCh
	f.watcher, f.stopCh, f.doneCh = nil, nil, nil
	f.mu.Unlock()

	if w == nil {
		return nil
	}
	close(stopCh)
	err := w.Close()

	select {
	case <-doneCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type memoryVolumes struct {
	data *cache.Table[int, *model.Volume]
}

func volumeKey(v *model.Volume) int { return v.Volume }

func tagsKey(t *model.VolumeTags) int { return t.Volume }

func (s *memoryVolumes) List(context.Context) ([]model.VolumeSummary, error) {
	vols := s.data.Values()
	list := make([]model.VolumeSummary, 0, len(vols))
	for _, v := range vols {
		list = append(list, v.Summarize())
	}
	return list, nil
}

func (s *memoryVolumes) Get(_ context.Context, volume int) (*model.Volume, error) {
	v, ok := s.data.Get(volume)
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *memoryVolumes) SearchText(_ context.Context, term string) ([]*model.Volume, error) {
	m := textmatch.New(term)
	return s.data.Filter(func(v *model.Volume) bool { return v.MentionsText(m) }), nil
}

type memoryTags struct {
	data *cache.Table[int, *model.VolumeTags]
}

func (s *memoryTags) Get(_ context.Context, volume int) (*model.VolumeTags, error) {
	t, ok := s.data.Get(volume)
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *memoryTags) SearchByField(_ context.Context, field model.TagField, term string) ([]*model.VolumeTags, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("unknown tag field %q", field)
	}
	m := textmatch.New(term)
	return s.data.Filter(func(t *model.VolumeTags) bool { return t.Matches(field, m) }), nil
}

func (s *memoryTags) Distinct(_ context.Context, field model.TagField) ([]string, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("unknown tag field %q", field)
	}
	return s.data.Distinct(string(field))
}
