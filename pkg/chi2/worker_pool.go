package chi2

import (
	"runtime"
	"sync"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/material"
)

// TaskKind selects the work a task performs
type TaskKind int

const (
	// SampleTask draws BSDF samples into a histogram
	SampleTask TaskKind = iota
	// IntegrateTask integrates the pdf over one row of histogram cells
	IntegrateTask
)

// Task represents a unit of work for the worker pool
type Task struct {
	TaskID int // For deterministic seeding and ordering
	Kind   TaskKind
	Count  int // Samples to draw (SampleTask)
	Row    int // cos(theta) row to integrate (IntegrateTask)
}

// TaskResult contains the result of a task
type TaskResult struct {
	TaskID    int
	Kind      TaskKind
	Row       int
	Histogram []float64 // Sample counts per cell (SampleTask) or expected mass per cell of Row (IntegrateTask)
	Stats     SampleStats
}

// Job is the shared, read-only description of what the workers evaluate
type Job struct {
	BSDF         material.BSDF
	Context      material.Context
	Interaction  *core.SurfaceInteraction
	Domain       SphericalDomain
	Subdivisions int
	Seed         int64
}

// WorkerPool evaluates sampling and integration tasks in parallel
type WorkerPool struct {
	taskQueue   chan Task
	resultQueue chan TaskResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker handles individual tasks
type Worker struct {
	ID          int
	job         *Job
	taskQueue   chan Task
	resultQueue chan TaskResult
}

// NewWorkerPool creates a worker pool with room for maxTasks queued tasks
func NewWorkerPool(j *Job, numWorkers, maxTasks int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan Task, maxTasks),       // Buffer for all tasks
		resultQueue: make(chan TaskResult, maxTasks), // Buffer for all results
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			job:         j,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop waits for queued tasks to finish and closes the result queue
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a task to the worker pool
func (wp *WorkerPool) SubmitTask(task Task) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed result
func (wp *WorkerPool) GetResult() (TaskResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		switch task.Kind {
		case SampleTask:
			w.resultQueue <- w.sample(task)
		case IntegrateTask:
			w.resultQueue <- w.integrate(task)
		}
	}
}

// sample draws task.Count samples with a sampler seeded by the task ID, so
// results do not depend on the number of workers
func (w *Worker) sample(task Task) TaskResult {
	j := w.job
	sampler := core.NewSeededSampler(j.Seed + int64(task.TaskID))
	result := TaskResult{
		TaskID:    task.TaskID,
		Kind:      SampleTask,
		Histogram: make([]float64, j.Domain.Bins()),
	}

	for i := 0; i < task.Count; i++ {
		bs, weight := j.BSDF.Sample(j.Context, j.Interaction, sampler.Get1D(), sampler.Get2D())
		result.Stats.AddSample(bs, weight)
		if bs.PDF > 0 {
			result.Histogram[j.Domain.BinIndex(bs.Wo)]++
		}
	}
	return result
}

// integrate computes the probability mass of each cell in task.Row
func (w *Worker) integrate(task Task) TaskResult {
	j := w.job
	pdf := func(wo core.Vec3) float64 {
		return j.BSDF.PDF(j.Context, j.Interaction, wo)
	}

	result := TaskResult{
		TaskID:    task.TaskID,
		Kind:      IntegrateTask,
		Row:       task.Row,
		Histogram: make([]float64, j.Domain.PhiRes),
	}
	for i := 0; i < j.Domain.PhiRes; i++ {
		result.Histogram[i] = j.Domain.IntegrateBin(i, task.Row, j.Subdivisions, pdf)
	}
	return result
}
