package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	ft "github.com/gofhir/tabulate"
	"github.com/gofhir/tabulate/table"
	"github.com/gofhir/tabulate/tree"
)

// BatchCracker applies one table description to many bundle sets, for
// example one per input file, preserving input order in the results.
type BatchCracker struct {
	crack   CrackFunc
	workers int
}

// NewBatchCracker creates a new batch cracker.
func NewBatchCracker(crack CrackFunc, workers int) *BatchCracker {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BatchCracker{
		crack:   crack,
		workers: workers,
	}
}

// CrackBatch cracks each job in parallel. Results come back in job
// order regardless of which worker finished first.
func (bc *BatchCracker) CrackBatch(ctx context.Context, jobs []Job) *BatchResult {
	if len(jobs) == 0 {
		return &BatchResult{Results: make([]*JobResult, 0)}
	}

	// For small batches, don't use parallelism
	if len(jobs) <= 2 {
		return bc.crackSequential(ctx, jobs)
	}

	return bc.crackParallel(ctx, jobs)
}

func (bc *BatchCracker) crackSequential(ctx context.Context, jobs []Job) *BatchResult {
	results := make([]*JobResult, 0, len(jobs))
	failed := 0

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return &BatchResult{
				Results:       results,
				TotalJobs:     len(jobs),
				CompletedJobs: len(results),
				FailedJobs:    failed,
			}
		default:
		}

		tbl, issues, err := bc.crack(ctx, job)
		if err != nil {
			failed++
		}
		results = append(results, &JobResult{
			ID:     job.ID,
			Name:   job.Name,
			Table:  tbl,
			Issues: issues,
			Err:    err,
		})
	}

	return &BatchResult{
		Results:       results,
		TotalJobs:     len(jobs),
		CompletedJobs: len(results),
		FailedJobs:    failed,
	}
}

func (bc *BatchCracker) crackParallel(ctx context.Context, jobs []Job) *BatchResult {
	numWorkers := bc.workers
	if numWorkers > len(jobs) {
		numWorkers = len(jobs)
	}

	jobChan := make(chan indexedJob, len(jobs))
	resultChan := make(chan *indexedResult, len(jobs))

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for ij := range jobChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				tbl, issues, err := bc.crack(ctx, ij.job)
				resultChan <- &indexedResult{
					index:  ij.index,
					table:  tbl,
					issues: issues,
					err:    err,
				}
			}
		}()
	}

	for i, job := range jobs {
		jobChan <- indexedJob{index: i, job: job}
	}
	close(jobChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results back into job order
	results := make([]*JobResult, len(jobs))
	completed := 0
	failed := 0

	for ir := range resultChan {
		job := jobs[ir.index]
		results[ir.index] = &JobResult{
			ID:     job.ID,
			Name:   job.Name,
			Table:  ir.table,
			Issues: ir.issues,
			Err:    ir.err,
		}
		completed++
		if ir.err != nil {
			failed++
		}
	}

	return &BatchResult{
		Results:       results,
		TotalJobs:     len(jobs),
		CompletedJobs: completed,
		FailedJobs:    failed,
	}
}

type indexedJob struct {
	index int
	job   Job
}

type indexedResult struct {
	index  int
	table  *table.Table
	issues []ft.Issue
	err    error
}

// CrackBundleSets is a convenience wrapper that builds one job per
// bundle set and cracks them all with the given function.
func CrackBundleSets(ctx context.Context, crack CrackFunc, name string, sets []tree.Bundles) *BatchResult {
	jobs := make([]Job, len(sets))
	for i, set := range sets {
		job := NewJob(fmt.Sprintf("%s-%d", name, i+1), nil)
		job.Bundles = set
		jobs[i] = job
	}
	bc := NewBatchCracker(crack, runtime.NumCPU())
	return bc.CrackBatch(ctx, jobs)
}
