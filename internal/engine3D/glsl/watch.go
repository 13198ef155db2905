package glsl

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"portalscene/internal/utils"
)

// Watcher reports programs whose override files changed. Notifications for
// the same program coalesce until the consumer drains them.
type Watcher struct {
	fs      *fsnotify.Watcher
	changed chan string
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

func Watch(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		fs:      fw,
		changed: make(chan string, 8),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	utils.Debug("Shader watcher: watching %s", dir)
	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	pending := make(map[string]bool)

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			name := programFor(event.Name)
			if name == "" {
				continue
			}
			utils.Debug("Shader watcher: %s changed (%s)", event.Name, event.Op)
			pending[name] = true
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			utils.Warn("Shader watcher: %v", err)
		}

		for name := range pending {
			select {
			case w.changed <- name:
				delete(pending, name)
			default:
			}
		}
	}
}

// Drain returns every queued program name without blocking.
func (w *Watcher) Drain() []string {
	seen := make(map[string]bool)
	var names []string
	for {
		select {
		case name := <-w.changed:
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		default:
			return names
		}
	}
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}
