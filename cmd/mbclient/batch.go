package main

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/claashk/modbusclient"
	"github.com/claashk/modbusclient/client"
	"github.com/claashk/modbusclient/codec/mbap"
)

var (
	counterOk        int64
	counterFailed    int64
	counterCancelled int64
)

// runBatch issues all commands concurrently over one multiplexed
// connection, at most MaxTransactions at a time.
func runBatch(ctx context.Context, cfg client.Config, cmds []modbusclient.Command) error {
	c := client.NewMuxClient(cfg)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = c.Disconnect() }()

	options := ants.Options{
		ExpiryDuration:   time.Minute,
		Nonblocking:      false, // Submit waits for a free worker
		MaxBlockingTasks: 0,
		PreAlloc:         true,
		PanicHandler: func(e interface{}) {
			log.Errorf("[%-9s] %v", "Batch", e)
		},
	}
	pool, err := ants.NewPool(cfg.MaxTransactions, ants.WithOptions(options))
	if err != nil {
		return err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	begin := time.Now()
	for i := range cmds {
		req, err := cmds[i].Request(cfg.Unit)
		if err != nil {
			log.Errorf("[%-9s] command %d: %v", "Batch", i, err)
			atomic.AddInt64(&counterFailed, 1)
			continue
		}
		for n := 0; n < max(cmds[i].Repeat, 1) && ctx.Err() == nil; n++ {
			wg.Add(1)
			err = pool.Submit(func() {
				defer wg.Done()
				call(ctx, c, req)
			})
			if err != nil {
				wg.Done()
				log.Errorf("[%-9s] %v", "Batch", err)
				atomic.AddInt64(&counterFailed, 1)
			}
		}
	}
	wg.Wait()
	logResult(time.Since(begin))
	return nil
}

func call(ctx context.Context, c *client.MuxClient, req mbap.Request) {
	resp, err := c.Call(ctx, req)
	switch {
	case err == nil:
		atomic.AddInt64(&counterOk, 1)
		log.Debugf("[%-9s] %s", "Response", resp)
	case errors.Is(err, client.ErrCancelled), errors.Is(err, context.Canceled):
		atomic.AddInt64(&counterCancelled, 1)
	default:
		atomic.AddInt64(&counterFailed, 1)
		log.Warnf("[%-9s] %s: %v", "Response", &req, err)
	}
}

func logResult(elapsed time.Duration) {
	ok := atomic.LoadInt64(&counterOk)
	rate := float64(ok) / elapsed.Seconds()
	log.Infof("[%-9s] CounterOk=%d, CounterFailed=%d, CounterCancelled=%d, elapsed=%v, %.1f calls/s",
		"Result", ok, atomic.LoadInt64(&counterFailed), atomic.LoadInt64(&counterCancelled), elapsed, rate)
}
