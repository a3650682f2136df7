package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/weightsync/engine/core"
)

// JobTask describes a unit of work run on one of the job system workers.
type JobTask struct {
	// Name is used in log messages.
	Name        string
	InputParams interface{}
	// OnStart does the work. Required.
	OnStart func(params interface{}) (interface{}, error)
	// OnComplete receives the result of a successful OnStart. Optional.
	OnComplete func(result interface{})
	// OnFailure receives the error of a failed OnStart. Optional.
	OnFailure func(err error)
	// OnCompletionCallback runs after OnComplete or OnFailure. Optional.
	OnCompletionCallback func()
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = errors.New("job system is shut down")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	if job.OnCompletionCallback != nil {
		defer job.OnCompletionCallback()
	}
	if job.OnStart == nil {
		err := fmt.Errorf("job '%s' has no entry point", job.Name)
		core.LogError(err.Error())
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	result, err := job.OnStart(job.InputParams)
	if err != nil {
		core.LogError("job '%s' failed: %s", job.Name, err)
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete(result)
	}
}

/**
 * @brief Shuts the job system down, waiting for queued jobs to finish.
 */
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if js.closed {
		js.mu.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.mu.Unlock()

	js.wg.Wait()
	return nil
}

// AddWorkNonBlocking queues the job from a new goroutine and returns immediately.
func (js *JobSystem) AddWorkNonBlocking(jt JobTask) {
	go func() {
		if err := js.Submit(jt); err != nil {
			core.LogError(err.Error())
		}
	}()
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while the queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.closed {
		return fmt.Errorf("%w: dropping job '%s'", ErrJobSystemClosed, jt.Name)
	}
	js.jobQueue <- jt
	return nil
}
