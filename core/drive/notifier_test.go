package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefreshNotifier_CoalescesPendingSignals(t *testing.T) {
	n := NewRefreshNotifier()

	n.Notify()
	n.Notify()
	n.Notify()

	<-n.C()
	select {
	case <-n.C():
		t.Fatal("pending signals should coalesce into one")
	default:
	}
}

func TestRefreshNotifier_NotifyAfterCloseIsDropped(t *testing.T) {
	n := NewRefreshNotifier()
	n.Close()

	assert.NotPanics(t, func() {
		n.Notify()
	})

	_, ok := <-n.C()
	assert.False(t, ok)
}

func TestRefreshNotifier_CloseIsIdempotent(t *testing.T) {
	n := NewRefreshNotifier()

	assert.NotPanics(t, func() {
		n.Close()
		n.Close()
	})
}
