package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dletozeun/3D/engine/core"
)

var (
	ErrNoWorkers           = errors.New("attempting to create worker pool with less than 1 worker")
	ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")
	ErrJobQueueFull        = errors.New("job queue is full")
	ErrJobSystemShutdown   = errors.New("job system is shut down")
)

/**
 * @brief Describes a job to be run on a worker.
 */
type JobTask struct {
	/** @brief A readable name, used in logs. */
	Name string
	/** @brief Invoked on the worker. Required. */
	OnStart func(params interface{}) error
	/** @brief Invoked on the worker when OnStart succeeded. Optional. */
	OnComplete func()
	/** @brief Invoked on the worker when OnStart failed. Optional. */
	OnFailure func(err error)
	/** @brief Passed to OnStart. */
	InputParams interface{}
}

// Job is a submitted task that can be polled for completion.
type Job interface {
	// Done reports, without blocking, whether the job has finished.
	Done() bool
	// Wait blocks until the job has finished and returns its error.
	Wait() error
}

// JobHandle tracks one submitted JobTask.
type JobHandle struct {
	name string
	done chan struct{}
	err  error
}

func newJobHandle(name string) *JobHandle {
	return &JobHandle{
		name: name,
		done: make(chan struct{}),
	}
}

func (h *JobHandle) Done() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *JobHandle) Wait() error {
	<-h.done
	return h.err
}

func (h *JobHandle) finish(err error) {
	h.err = err
	close(h.done)
}

type queuedJob struct {
	task   JobTask
	handle *JobHandle
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan queuedJob
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan queuedJob, channelSize),
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

func (js *JobSystem) run(job queuedJob) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.task.Name, r)
			core.LogError(err.Error())
		}
		job.handle.finish(err)
	}()

	err = job.task.OnStart(job.task.InputParams)
	if err != nil {
		core.LogError("job %s failed: %s", job.task.Name, err)
		if job.task.OnFailure != nil {
			job.task.OnFailure(err)
		}
		return
	}
	if job.task.OnComplete != nil {
		job.task.OnComplete()
	}
}

/**
 * @brief Shuts the job system down. Queued jobs are run before the workers exit.
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

/**
 * @brief Submits the provided job to be queued for execution. Never blocks:
 * ErrJobQueueFull is returned when every worker is busy and the queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt JobTask) (*JobHandle, error) {
	if jt.OnStart == nil {
		return nil, fmt.Errorf("job %s has no entry point", jt.Name)
	}

	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.closed {
		return nil, ErrJobSystemShutdown
	}

	handle := newJobHandle(jt.Name)
	select {
	case js.jobQueue <- queuedJob{task: jt, handle: handle}:
		return handle, nil
	default:
		return nil, fmt.Errorf("job %s: %w", jt.Name, ErrJobQueueFull)
	}
}

// Spawn runs fn on a worker.
func (js *JobSystem) Spawn(name string, fn func() error) (Job, error) {
	handle, err := js.Submit(JobTask{
		Name: name,
		OnStart: func(interface{}) error {
			return fn()
		},
	})
	if err != nil {
		return nil, err
	}
	return handle, nil
}
