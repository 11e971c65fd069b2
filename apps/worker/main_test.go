package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logsvc "github.com/ChukwumaKingsley/smart-school-forked/services/logger"
)

type fakeEnder struct {
	calls int32
	n     int
	err   error
	block chan struct{}
}

func (f *fakeEnder) EndDue(context.Context) (int, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block != nil {
		<-f.block
	}
	return f.n, f.err
}

func Test_endAssessmentsJob(t *testing.T) {
	logger := logsvc.NewNopLogger()

	ok := &fakeEnder{n: 2}
	endAssessmentsJob(context.Background(), ok, logger)()
	assert.EqualValues(t, 1, atomic.LoadInt32(&ok.calls))

	failing := &fakeEnder{err: errors.New("db down")}
	assert.NotPanics(t, endAssessmentsJob(context.Background(), failing, logger))
}

func Test_newScheduler_skipsOverlappingRuns(t *testing.T) {
	svc := &fakeEnder{block: make(chan struct{})}
	c := newScheduler(logsvc.NewNopLogger())
	_, err := c.AddFunc("@every 1s", endAssessmentsJob(context.Background(), svc, logsvc.NewNopLogger()))
	require.NoError(t, err)

	c.Start()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&svc.calls) == 1 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(1500 * time.Millisecond) // at least one tick while the first run blocks
	stopped := c.Stop()
	close(svc.block)
	<-stopped.Done()

	assert.EqualValues(t, 1, atomic.LoadInt32(&svc.calls))
}

func Test_newScheduler_recovers(t *testing.T) {
	c := newScheduler(logsvc.NewNopLogger())
	var runs int32
	_, err := c.AddFunc("@every 1s", func() {
		atomic.AddInt32(&runs, 1)
		panic("boom")
	})
	require.NoError(t, err)

	c.Start()
	defer c.Stop()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 2 }, 5*time.Second, 10*time.Millisecond)
}
