package kvreport

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/popbal"
)

type fakeProgress struct {
	completed atomic.Int64
}

func (f *fakeProgress) Progress() popbal.Progress {
	done := int(f.completed.Load())

	return popbal.Progress{Running: done < 4, Total: 4, Completed: done}
}

func TestPublisher_Progress(t *testing.T) {
	ctx := t.Context()
	pub, _ := newPublisher(t, "reports-progress")

	_, err := pub.Progress(ctx)
	require.ErrorIs(t, err, ErrReportNotFound)

	src := &fakeProgress{}
	stop, err := pub.StartProgress(ctx, src, 20*time.Millisecond)
	require.NoError(t, err)

	got, err := pub.Progress(ctx)
	require.NoError(t, err)
	require.Equal(t, popbal.Progress{Running: true, Total: 4}, got)

	src.completed.Store(2)
	require.Eventually(t, func() bool {
		got, err := pub.Progress(ctx)
		return err == nil && got.Completed == 2
	}, 5*time.Second, 10*time.Millisecond)

	src.completed.Store(4)
	require.NoError(t, stop())

	got, err = pub.Progress(ctx)
	require.NoError(t, err)
	require.Equal(t, popbal.Progress{Running: false, Total: 4, Completed: 4}, got)

	reports, err := pub.List(ctx)
	require.NoError(t, err)
	require.Empty(t, reports, "progress key is not a report")
}
