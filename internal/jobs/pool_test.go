package jobs

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsSubmittedTasks(t *testing.T) {
	p := NewPool(2, 8, quietTestLogger())

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit(func() { ran.Add(1) }))
	}
	p.Close()

	assert.Equal(t, int32(5), ran.Load())
}

func TestPoolRejectsWhenSaturated(t *testing.T) {
	p := NewPool(1, 1, quietTestLogger())

	started := make(chan struct{})
	release := make(chan struct{})

	// Occupy the single worker, then fill the single queue slot.
	require.NoError(t, p.Submit(func() {
		close(started)
		<-release
	}))
	<-started
	require.NoError(t, p.Submit(func() { <-release }))

	err := p.Submit(func() {})
	assert.ErrorIs(t, err, ErrPoolSaturated)

	close(release)
	p.Close()
}

func TestPoolCloseWaitsForInFlightWork(t *testing.T) {
	p := NewPool(1, 1, quietTestLogger())

	var done atomic.Bool
	require.NoError(t, p.Submit(func() {
		time.Sleep(20 * time.Millisecond)
		done.Store(true)
	}))

	p.Close()
	assert.True(t, done.Load())
}

func quietTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}
