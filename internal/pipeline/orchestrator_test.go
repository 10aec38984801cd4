package pipeline

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/chatmd/internal/config"
)

func testConfig() config.Config {
	return config.Config{WorkerCount: 1, MaxQueueSize: 4, JobTTL: time.Hour}
}

func waitDone(t *testing.T, job *Job) JobSnapshot {
	t.Helper()
	var snap JobSnapshot
	require.Eventually(t, func() bool {
		snap = job.Snapshot()
		return snap.Status == StatusCompleted || snap.Status == StatusFailed
	}, 5*time.Second, 5*time.Millisecond)
	return snap
}

func TestOrchestrator_CompletesJob(t *testing.T) {
	o := NewOrchestrator(testConfig(), NewExporter(&stubFetcher{contentType: "image/png"}, nil), slog.New(slog.DiscardHandler))
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob([]byte(chatPage), ExportOptions{DownloadImages: true})
	require.NoError(t, o.Submit(job))
	assert.Same(t, job, o.GetJob(job.ID))

	snap := waitDone(t, job)
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, "Trip Plan.zip", snap.Filename)
	assert.Equal(t, 2, snap.Progress.Turns)
	assert.Equal(t, 1, snap.Progress.Images)
	assert.NotEmpty(t, snap.ContentHash)
	require.NotNil(t, job.Artifact())
	assert.Equal(t, ZipContentType, job.Artifact().ContentType)
	assert.Nil(t, job.HTMLData())
}

func TestOrchestrator_FailedExtraction(t *testing.T) {
	o := NewOrchestrator(testConfig(), NewExporter(&stubFetcher{}, nil), slog.New(slog.DiscardHandler))
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob([]byte("<html><body>nothing</body></html>"), ExportOptions{})
	require.NoError(t, o.Submit(job))

	snap := waitDone(t, job)
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, "extracting", snap.Phase)
	assert.Equal(t, []string{"No conversation turns found."}, snap.Progress.Errors)
	assert.Nil(t, job.Artifact())
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	// Not started, so nothing drains the queue.
	o := NewOrchestrator(cfg, NewExporter(&stubFetcher{}, nil), slog.New(slog.DiscardHandler))

	require.NoError(t, o.Submit(NewJob([]byte(chatPage), ExportOptions{})))
	assert.Equal(t, 1, o.QueueDepth())

	second := NewJob([]byte(chatPage), ExportOptions{})
	require.Error(t, o.Submit(second))
	assert.Equal(t, StatusFailed, second.Snapshot().Status)
	assert.Equal(t, "queue_full", second.Snapshot().Phase)
}

func TestCleanupInterval(t *testing.T) {
	assert.Equal(t, 5*time.Minute, cleanupInterval(time.Hour))
	assert.Equal(t, 30*time.Second, cleanupInterval(time.Minute))
	assert.Equal(t, time.Second, cleanupInterval(time.Millisecond))
}
