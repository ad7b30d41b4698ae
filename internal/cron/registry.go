package cron

import (
	"context"
	"time"
)

// Job is one scheduled unit of work.
type Job interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) error
}

// Registry holds the jobs a worker runs.
type Registry struct {
	jobs []Job
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a job.
func (r *Registry) Register(job Job) {
	r.jobs = append(r.jobs, job)
}

// Jobs returns the registered jobs.
func (r *Registry) Jobs() []Job {
	return r.jobs
}
