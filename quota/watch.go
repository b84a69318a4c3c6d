package quota

// watchBuffer is how many changes a slow watcher may fall behind before its
// pending changes are coalesced into a single "all" change.
const watchBuffer = 16

// Watcher receives registry changes on C until Close is called.
type Watcher struct {
	C <-chan Change

	ch chan Change
	r  *Registry
}

// Watch subscribes to registry changes.
func (r *Registry) Watch() *Watcher {
	ch := make(chan Change, watchBuffer)
	w := &Watcher{C: ch, ch: ch, r: r}
	r.watchMu.Lock()
	r.watchers[w] = struct{}{}
	r.watchMu.Unlock()
	return w
}

// Close detaches the watcher. It is idempotent and may be called from the
// goroutine reading C. Once Close returns, C is closed and drained, so no
// further change is received.
func (w *Watcher) Close() {
	r := w.r
	r.watchMu.Lock()
	if _, ok := r.watchers[w]; !ok {
		r.watchMu.Unlock()
		return
	}
	delete(r.watchers, w)
	close(w.ch)
	r.watchMu.Unlock()
	for range w.ch {
	}
}

// notify never blocks: sends are non-blocking and a full buffer collapses
// into an "all" change.
func (r *Registry) notify(c Change) {
	r.watchMu.Lock()
	defer r.watchMu.Unlock()
	for w := range r.watchers {
		select {
		case w.ch <- c:
			continue
		default:
		}
		select {
		case <-w.ch:
		default:
		}
		select {
		case w.ch <- Change{All: true}:
		default:
		}
	}
}
