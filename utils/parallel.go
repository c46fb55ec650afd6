package utils

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
}

// SimpleFunc is for RunInParallel.
type SimpleFunc func(ctx context.Context) error

// RunInParallel runs all functions in parallel, return is elapsed time and an error.
// The first failing function cancels the context handed to the others. A panic in any
// function is recovered and reported as an error.
func RunInParallel(ctx context.Context, fs []SimpleFunc) (time.Duration, error) {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	var bigError error
	var bigErrorMutex sync.Mutex
	storeError := func(err error) {
		bigErrorMutex.Lock()
		defer bigErrorMutex.Unlock()
		if bigError == nil || !errors.Is(err, context.Canceled) {
			bigError = multierr.Combine(bigError, err)
		}
	}

	for _, f := range fs {
		f := f
		wg.Add(1)
		// wg.Done is not deferred in f: on panic the callback owns it.
		utils.PanicCapturingGoWithCallback(func() {
			if err := f(ctx); err != nil {
				storeError(err)
				cancel()
			}
			wg.Done()
		}, func(thePanic interface{}) {
			storeError(fmt.Errorf("got panic running something in parallel: %v", thePanic))
			cancel()
			wg.Done()
		})
	}

	wg.Wait()
	return time.Since(start), bigError
}
