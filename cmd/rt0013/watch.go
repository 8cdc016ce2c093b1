// cmd/rt0013/watch.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/tamzrod/rt0013/internal/poller"
	"github.com/tamzrod/rt0013/internal/status"
	"github.com/tamzrod/rt0013/internal/writer"
)

// statusSink is what the orchestrator delivers snapshots to.
type statusSink interface {
	WriteStatus(s status.Snapshot) error
}

func cmdWatch(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- status clients (shared per endpoint) ----
	clients, closeWriters, err := writer.BuildEndpointClients(cfg.Tags)
	if err != nil {
		return err
	}
	defer closeWriters()

	var wg sync.WaitGroup

	// --------------------
	// Build per-tag pipelines
	// --------------------
	for _, tc := range cfg.Tags {
		p, err := poller.Build(tc, log.Default())
		if err != nil {
			stop()
			wg.Wait()
			return err
		}
		defer p.Close()

		var sink statusSink
		if plan := writer.BuildStatusPlan(tc); plan != nil {
			sw, _ := writer.NewStatusWriter(plan, clients[plan.Endpoint])
			sink = sw
		}

		out := make(chan poller.PollResult)

		secTicker := time.NewTicker(time.Second)
		defer secTicker.Stop()

		wg.Add(2)
		go func(tagID string) {
			defer wg.Done()
			orchestrate(ctx, tagID, out, sink, secTicker.C)
		}(tc.ID)

		// poller producer
		go func() {
			defer wg.Done()
			p.Run(ctx, out)
		}()

		log.Printf("watching tag (tag=%s, interval=%dms)", tc.ID, tc.Watch.IntervalMs)
	}

	<-ctx.Done()
	wg.Wait()
	log.Printf("watch stopped")
	return nil
}

// orchestrate owns the health state of one tag: poll outcomes and the 1 Hz
// tick drive the tracker, and every change is delivered to sink (nil: log only).
func orchestrate(ctx context.Context, tagID string, in <-chan poller.PollResult, sink statusSink, tick <-chan time.Time) {
	tr := status.NewTracker()

	deliver := func(what string) {
		if sink == nil {
			return
		}
		if err := sink.WriteStatus(tr.Snapshot()); err != nil {
			log.Printf("status %s write failed (tag=%s): %v", what, tagID, err)
		}
	}

	// Full block write on start (identity re-assert).
	deliver("start")

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-in:
			if res.Err != nil {
				log.Printf("poll failed (tag=%s): %v", tagID, res.Err)
				if tr.Failure(res.Err) {
					deliver("error")
				}
				continue
			}

			log.Printf("poll ok (tag=%s): T=%.2f H=%.2f samples=%d/%d battery=%s",
				tagID, res.Temperature(), res.Humidity(), res.SamplesT, res.SamplesH, res.Status.Battery)
			if tr.Success(res.Live(), res.Logging, res.Status) {
				deliver("update")
			}

		case <-tick:
			// seconds_in_error increments here only
			if tr.Tick() {
				deliver("seconds tick")
			}
		}
	}
}
