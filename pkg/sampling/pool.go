package sampling

import (
	"errors"
	"fmt"
	"sync"

	"fabrictensor/internal/models"
	"fabrictensor/pkg/fabric"
)

// run measures every task with a fixed pool of workers. Each worker writes
// only the result slot of the task it took, so results stay aligned with
// tasks whatever the completion order.
//
// With AbortOnFitFailure the pool stops handing out tasks after the first
// failure and the lowest-index error seen is returned without results.
func run(v models.Volume, tasks []task, roiSize int, p Params) ([]Result, error) {
	pl, err := NewPipeline(p)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(tasks))
	total := len(tasks)

	var (
		progressMutex sync.Mutex
		completed     int
	)
	report := func(message string) {
		progressMutex.Lock()
		defer progressMutex.Unlock()
		completed++
		if p.Progress != nil {
			p.Progress(completed, total, message)
		}
	}

	var (
		failMutex sync.Mutex
		failIdx   = -1
		failErr   error
	)
	stop := make(chan struct{})
	fail := func(i int, err error) {
		failMutex.Lock()
		defer failMutex.Unlock()
		if failIdx < 0 {
			close(stop)
		}
		if failIdx < 0 || i < failIdx {
			failIdx, failErr = i, err
		}
	}

	jobs := make(chan int)
	go func() {
		defer close(jobs)
		for i := range tasks {
			select {
			case jobs <- i:
			case <-stop:
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < min(p.workers(), max(total, 1)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = measure(v, tasks[i], roiSize, pl)

				if err := results[i].Err; err != nil && !errors.Is(err, ErrMasked) && p.AbortOnFitFailure {
					fail(i, fmt.Errorf("sample %d at %v: %w", i, tasks[i].center, err))
				}
				report(fmt.Sprintf("sample %d at ROI %v", i, tasks[i].roi))
			}
		}()
	}
	wg.Wait()

	if failErr != nil {
		return nil, failErr
	}
	return results, nil
}

// measure runs the pipeline on one task and never fails: errors end up in
// Result.Err with a NaN sample.
func measure(v models.Volume, t task, roiSize int, pl *Pipeline) Result {
	res := Result{Center: t.center, ROI: t.roi}
	if t.skip != nil {
		res.Sample = fabric.NaNSample()
		res.Err = t.skip
		return res
	}

	roi, err := v.Crop(t.roi)
	if err != nil {
		res.Sample = fabric.NaNSample()
		res.Err = err
		return res
	}

	res.Sample, res.Err = pl.Run(roi, roiSize)
	return res
}
