package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/pagealign/internal/oracle"
	"github.com/MeKo-Tech/pagealign/internal/textequiv"
)

type countingProgress struct {
	mu       sync.Mutex
	total    int
	progress []int
	errors   int
	done     bool
}

func (c *countingProgress) OnStart(total int) { c.total = total }
func (c *countingProgress) OnProgress(current, _ int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress = append(c.progress, current)
}
func (c *countingProgress) OnComplete() { c.done = true }
func (c *countingProgress) OnError(int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors++
}

func TestProcessPagesParallel(t *testing.T) {
	seg := oracle.NewReplaySegmenter()
	rec := &oracle.ReplayRecognizer{Pages: map[string][]oracle.Record{}}
	var pages []*Page
	for i := range 6 {
		id := fmt.Sprintf("page%d", i)
		seg.ForPage(id, oneLine())
		r := hi()
		r.Prediction = fmt.Sprintf("%d%d", i, i)
		rec.Pages[id] = []oracle.Record{r}
		pages = append(pages, newPage(id))
	}

	p, err := NewBuilder().
		WithSegmenter(seg).
		WithRecognizer(rec).
		WithAggregation(textequiv.DefaultOptions()).
		Build()
	require.NoError(t, err)

	progress := &countingProgress{}
	stats, err := p.ProcessPagesParallel(context.Background(), pages, ParallelConfig{
		MaxWorkers:       3,
		ProgressCallback: progress,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TotalPages)
	assert.Equal(t, 6, stats.ProcessedPages)
	assert.Zero(t, stats.FailedPages)
	assert.Equal(t, 3, stats.WorkerCount)

	for i, pg := range pages {
		region, ok := pg.Layout.Element("region_0001")
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("%d%d", i, i), region.Text(), "page %d gets its own recording", i)
	}

	assert.Equal(t, 6, progress.total)
	assert.Len(t, progress.progress, 6)
	assert.True(t, progress.done)
}

func TestProcessPagesParallel_Errors(t *testing.T) {
	seg := oracle.NewReplaySegmenter().ForPage("ok", oneLine())
	p, err := NewBuilder().WithSegmenter(seg).Build()
	require.NoError(t, err)

	var handled []int
	progress := &countingProgress{}
	pages := []*Page{newPage("ok"), newPage("missing")}
	stats, err := p.ProcessPagesParallel(context.Background(), pages, ParallelConfig{
		MaxWorkers:       2,
		ProgressCallback: progress,
		ErrorHandler:     func(i int, _ *Page, _ error) { handled = append(handled, i) },
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, oracle.ErrReplayExhausted)
	assert.Contains(t, err.Error(), "missing")
	assert.Equal(t, 1, stats.ProcessedPages)
	assert.Equal(t, 1, stats.FailedPages)
	assert.NoError(t, stats.Errors[0])
	assert.Error(t, stats.Errors[1])
	assert.Equal(t, []int{1}, handled)
	assert.Equal(t, 1, progress.errors)
}

func TestProcessPagesParallel_InvalidInput(t *testing.T) {
	p, err := NewBuilder().WithSegmenter(oracle.NewReplaySegmenter()).Build()
	require.NoError(t, err)

	_, err = p.ProcessPagesParallel(context.Background(), nil, DefaultParallelConfig())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.ProcessPagesParallel(ctx, []*Page{newPage("a")}, ParallelConfig{})
	assert.ErrorIs(t, err, context.Canceled)
}
