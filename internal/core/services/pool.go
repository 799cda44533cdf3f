package services

import (
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// newPool creates a bounded worker pool of at least one worker. A task that
// panics is logged instead of dying silently inside ants.
func newPool(size int) (*ants.Pool, error) {
	if size < 1 {
		size = 1
	}
	return ants.NewPool(size, ants.WithPanicHandler(func(p any) {
		logger.Error("pool: task panicked: %v", p)
	}))
}

// submit runs task on pool and tracks it in wg. If the pool rejects the
// task it runs on the calling goroutine so no work is silently dropped.
func submit(pool *ants.Pool, wg *sync.WaitGroup, task func()) {
	wg.Add(1)
	run := func() {
		defer wg.Done()
		task()
	}
	if pool == nil {
		run()
		return
	}
	if err := pool.Submit(run); err != nil {
		logger.Debug("pool: submit rejected, running inline: %v", err)
		run()
	}
}
