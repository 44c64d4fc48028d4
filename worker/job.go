package worker

import (
	"time"

	"github.com/google/uuid"

	ft "github.com/gofhir/tabulate"
	"github.com/gofhir/tabulate/design"
	"github.com/gofhir/tabulate/table"
	"github.com/gofhir/tabulate/tree"
)

// Job represents one table to crack.
type Job struct {
	// ID is a unique identifier for this job.
	ID string

	// Name is the output table name.
	Name string

	// Description is the table description to crack against.
	Description *design.TableDescription

	// Bundles optionally carries job-specific input. When nil, the crack
	// function supplies the bundles (the usual case when one design is
	// cracked against one bundle set).
	Bundles tree.Bundles
}

// NewJob creates a job with a generated ID.
func NewJob(name string, desc *design.TableDescription) Job {
	return Job{
		ID:          uuid.NewString(),
		Name:        name,
		Description: desc,
	}
}

// JobResult represents the outcome of one crack job.
type JobResult struct {
	// ID matches the Job.ID that produced this result.
	ID string

	// Name matches the Job.Name.
	Name string

	// Table is the cracked table, nil when Err is set.
	Table *table.Table

	// Issues are the advisory conditions collected while cracking.
	Issues []ft.Issue

	// Err contains any error that occurred during cracking.
	Err error

	// Duration is the time taken to crack this table.
	Duration time.Duration
}

// BatchResult aggregates results from multiple jobs.
type BatchResult struct {
	// Results contains all job results.
	Results []*JobResult

	// TotalJobs is the number of jobs submitted.
	TotalJobs int

	// CompletedJobs is the number of jobs completed (including errors).
	CompletedJobs int

	// FailedJobs is the number of jobs that failed with an error.
	FailedJobs int

	// TotalDuration is the summed crack time across all jobs.
	TotalDuration time.Duration
}

// HasErrors returns true if any job failed.
func (br *BatchResult) HasErrors() bool {
	for _, r := range br.Results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// IssueCount returns the total number of advisory issues across all
// results.
func (br *BatchResult) IssueCount() int {
	count := 0
	for _, r := range br.Results {
		count += len(r.Issues)
	}
	return count
}
