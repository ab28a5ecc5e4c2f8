package screens

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestEffectUnmountDiscardsLateResult(t *testing.T) {
	var eff Effect[string]
	started := make(chan struct{})
	release := make(chan struct{})
	var applied, failed atomic.Bool

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = eff.Run(context.Background(),
			func(ctx context.Context) (string, error) {
				close(started)
				<-release
				// a backend that ignores cancellation still answers
				return "late", nil
			},
			func(string) { applied.Store(true) },
			func(error) { failed.Store(true) },
		)
	}()

	<-started
	eff.Stop()
	close(release)
	wg.Wait()

	if applied.Load() || failed.Load() {
		t.Fatalf("unmounted effect must not apply or fail (applied=%v failed=%v)", applied.Load(), failed.Load())
	}
	if err := eff.Run(context.Background(), func(context.Context) (string, error) { return "x", nil }, nil, nil); err == nil {
		t.Fatalf("stopped effect must refuse new runs")
	}
}

func TestEffectNewRunSupersedesOld(t *testing.T) {
	var eff Effect[int]
	started := make(chan struct{})
	var mu sync.Mutex
	var got []int

	done := make(chan error, 1)
	go func() {
		done <- eff.Run(context.Background(),
			func(ctx context.Context) (int, error) {
				close(started)
				<-ctx.Done()
				return 1, nil
			},
			func(v int) {
				mu.Lock()
				got = append(got, v)
				mu.Unlock()
			},
			nil,
		)
	}()

	<-started
	if err := eff.Run(context.Background(), func(context.Context) (int, error) { return 2, nil }, func(v int) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	}, nil); err != nil {
		t.Fatalf("second run: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("first run was not canceled by the second")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("only the latest run may apply, got %v", got)
	}
}

func TestEffectCanceledErrorsNeverReachFail(t *testing.T) {
	var eff Effect[int]
	var failed atomic.Bool
	err := eff.Run(context.Background(),
		func(context.Context) (int, error) { return 0, context.Canceled },
		nil,
		func(error) { failed.Store(true) },
	)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected the canceled error back, got %v", err)
	}
	if failed.Load() {
		t.Fatalf("canceled errors must not be reported")
	}

	boom := errors.New("boom")
	var reported error
	_ = eff.Run(context.Background(),
		func(context.Context) (int, error) { return 0, boom },
		nil,
		func(err error) { reported = err },
	)
	if reported != boom {
		t.Fatalf("expected real failures to reach fail, got %v", reported)
	}
}
