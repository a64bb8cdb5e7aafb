package store

import "context"

// Watcher runs dataset hot reload as a server component, so it starts after
// the listener binds and stops before the store closes.
type Watcher struct {
	f *MemoryFactory
}

// NewWatcher wraps f.
func NewWatcher(f *MemoryFactory) *Watcher {
	return &Watcher{f: f}
}

func (w *Watcher) Name() string { return "dataset-watcher" }

func (w *Watcher) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return w.f.Watch()
}

func (w *Watcher) Stop(ctx context.Context) error {
	return w.f.UnwatchContext(ctx)
}
