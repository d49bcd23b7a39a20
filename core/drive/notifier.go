package drive

import (
	"sync"
)

// RefreshNotifier decouples external refresh signals (device arrival,
// platform glue) from the controller's own suspension points. Publishers
// call Notify; the controller consumes C in Listen. Pending signals
// coalesce: a refresh already requested but not yet served absorbs further
// requests.
type RefreshNotifier struct {
	mu     sync.Mutex
	ch     chan struct{}
	closed bool
}

func NewRefreshNotifier() *RefreshNotifier {
	return &RefreshNotifier{
		ch: make(chan struct{}, 1),
	}
}

// Notify requests a status refresh. Never blocks. Publishers may race with
// Close, so a notification after Close is dropped rather than sent.
func (n *RefreshNotifier) Notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

func (n *RefreshNotifier) C() <-chan struct{} {
	return n.ch
}

// Close ends the subscription. Safe to call more than once.
func (n *RefreshNotifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	close(n.ch)
}
