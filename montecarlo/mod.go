package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/xor-shift/pibench/util/rng"
)

const (
	// SeedMultiplier spaces out per-worker seeds in PartitionSeed mode.
	SeedMultiplier = 0x9E3779B97F4A7C15

	// workers look at their context once per this many samples
	cancelCheckInterval = 1 << 16
)

type Partition string

const (
	// PartitionSeed seeds worker i with BaseSeed + i*SeedMultiplier.
	PartitionSeed Partition = "seed"
	// PartitionJump seeds every worker with BaseSeed and jumps worker i
	// ahead i times, giving non-overlapping 2^128 long streams as long as the
	// seed lands on a full period orbit (just under 2^191).
	PartitionJump Partition = "jump"
)

var ErrBadPartition = errors.New("unknown partition mode")

func ParsePartition(s string) (Partition, error) {
	switch p := Partition(s); p {
	case PartitionSeed, PartitionJump:
		return p, nil
	case "":
		return PartitionSeed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrBadPartition, s)
	}
}

type Estimate struct {
	Iterations uint64
	Inside     uint64
	Pi         float64
	AbsError   float64
}

func newEstimate(iterations, inside uint64) Estimate {
	if iterations == 0 {
		return Estimate{}
	}

	pi := 4.0 * float64(inside) / float64(iterations)

	return Estimate{
		Iterations: iterations,
		Inside:     inside,
		Pi:         pi,
		AbsError:   math.Abs(pi - math.Pi),
	}
}

func countInside(ctx context.Context, src rng.Source, iterations uint64) (uint64, error) {
	inside := uint64(0)

	for i := uint64(0); i < iterations; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return inside, err
			}
		}

		x := src.NextDouble()
		y := src.NextDouble()

		if x*x+y*y <= 1.0 {
			inside++
		}
	}

	return inside, nil
}

// EstimatePi samples iterations points in the unit square from src and
// counts the ones inside the quarter circle.
func EstimatePi(src rng.Source, iterations uint64) Estimate {
	estimate, _ := EstimatePiContext(context.Background(), src, iterations)
	return estimate
}

// EstimatePiContext is EstimatePi that gives up once ctx is done.
func EstimatePiContext(ctx context.Context, src rng.Source, iterations uint64) (Estimate, error) {
	inside, err := countInside(ctx, src, iterations)
	if err != nil {
		return Estimate{}, fmt.Errorf("estimate interrupted: %w", err)
	}

	return newEstimate(iterations, inside), nil
}

type ParallelConfig struct {
	Iterations uint64
	// Workers <= 0 means one per CPU.
	Workers   int
	BaseSeed  uint64
	Partition Partition
}

// WorkerCount resolves the Workers default.
func (cfg ParallelConfig) WorkerCount() int {
	if cfg.Workers <= 0 {
		return runtime.NumCPU()
	}

	return cfg.Workers
}

// workerSources builds one independent generator per worker.
func (cfg ParallelConfig) workerSources() ([]rng.Source, error) {
	n := cfg.WorkerCount()
	sources := make([]rng.Source, n)

	switch cfg.Partition {
	case PartitionSeed, "":
		for i := 0; i < n; i++ {
			sources[i] = rng.NewXoshiro256SS(cfg.BaseSeed + uint64(i)*SeedMultiplier)
		}
	case PartitionJump:
		cur := rng.NewXoshiro256SS(cfg.BaseSeed)
		for i := 0; i < n; i++ {
			gen := *cur
			sources[i] = &gen
			cur.Jump()
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadPartition, cfg.Partition)
	}

	return sources, nil
}

// EstimatePiParallel splits cfg.Iterations over the workers. The first
// Iterations%Workers workers take one extra sample so nothing is dropped.
// The result does not depend on scheduling.
func EstimatePiParallel(ctx context.Context, cfg ParallelConfig) (Estimate, error) {
	sources, err := cfg.workerSources()
	if err != nil {
		return Estimate{}, err
	}

	n := uint64(len(sources))
	perWorker := cfg.Iterations / n
	remainder := cfg.Iterations % n

	estimator := NewEstimator(ctx, len(sources))
	estimator.Start(uint(len(sources)))

	for i, src := range sources {
		iterations := perWorker
		if uint64(i) < remainder {
			iterations++
		}

		estimator.Submit(src, iterations)
	}

	estimate, err := estimator.Stop()
	if err != nil {
		return Estimate{}, fmt.Errorf("parallel estimate interrupted: %w", err)
	}

	return estimate, nil
}

type job struct {
	src        rng.Source
	iterations uint64
}

type jobResult struct {
	iterations uint64
	inside     uint64
	err        error
}

// Estimator is a pool of sampling workers. Every submitted job carries its
// own generator, so workers never share state.
type Estimator struct {
	ctx context.Context

	workerWG *sync.WaitGroup
	jobs     chan job
	results  chan jobResult

	collectorDone chan struct{}
	iterations    uint64
	inside        uint64
	err           error
}

func NewEstimator(ctx context.Context, queueSize int) *Estimator {
	return &Estimator{
		ctx: ctx,

		workerWG: &sync.WaitGroup{},
		jobs:     make(chan job, queueSize),
		results:  make(chan jobResult, queueSize),

		collectorDone: make(chan struct{}),
	}
}

// Start launches numWorkers sampling goroutines. Call it once.
func (estimator *Estimator) Start(numWorkers uint) {
	go estimator.collect()

	estimator.workerWG.Add(int(numWorkers))

	for i := uint(0); i < numWorkers; i++ {
		go estimator.task()
	}
}

// Submit queues a job and blocks while the queue is full.
func (estimator *Estimator) Submit(src rng.Source, iterations uint64) {
	estimator.jobs <- job{src: src, iterations: iterations}
}

// Stop waits for every submitted job and returns the combined estimate, or
// the first worker error.
func (estimator *Estimator) Stop() (Estimate, error) {
	close(estimator.jobs)
	estimator.workerWG.Wait()

	close(estimator.results)
	<-estimator.collectorDone

	if estimator.err != nil {
		return Estimate{}, estimator.err
	}

	return newEstimate(estimator.iterations, estimator.inside), nil
}

func (estimator *Estimator) collect() {
	defer close(estimator.collectorDone)

	for res := range estimator.results {
		if res.err != nil {
			if estimator.err == nil {
				estimator.err = res.err
			}
			continue
		}

		estimator.iterations += res.iterations
		estimator.inside += res.inside
	}
}

func (estimator *Estimator) task() {
	defer estimator.workerWG.Done()

	for j := range estimator.jobs {
		inside, err := countInside(estimator.ctx, j.src, j.iterations)
		estimator.results <- jobResult{
			iterations: j.iterations,
			inside:     inside,
			err:        err,
		}
	}
}
