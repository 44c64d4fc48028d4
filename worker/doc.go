// Package worker provides a worker pool for cracking many tables in
// parallel.
//
// The pool takes advantage of multi-core processors when a design names
// several independent tables, or when the same description is applied
// to many bundle sets.
//
// Example usage:
//
//	// Create a worker pool with 4 workers
//	pool := worker.NewPool(crackFunc, 4)
//
//	// Submit jobs
//	for _, e := range entries {
//	    pool.Submit(ctx, worker.NewJob(e.Name, e.Description))
//	}
//
//	// Collect everything at once
//	batch := pool.CloseAndWait()
//	for _, result := range batch.Results {
//	    if result.Err != nil {
//	        // Handle error
//	    }
//	    // Process result.Table
//	}
package worker
