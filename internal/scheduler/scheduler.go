// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs: pruning login
// protection state, trimming the per-IP rate limiter and reloading the
// GeoIP database when its file changes.
package scheduler

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Job is a named maintenance task. Errors are logged, never fatal; a
// failing job runs again on its next tick.
type Job struct {
	Name string
	Spec string // standard 5-field cron expression
	Run  func() error
}

// Scheduler drives registered jobs on their cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	jobs   []Job
}

// New creates a scheduler. Register jobs with Add before Start.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{cron: cron.New(), logger: logger}
}

// Add registers a job. Must be called before Start.
func (s *Scheduler) Add(job Job) {
	s.jobs = append(s.jobs, job)
}

// Start schedules every registered job and starts the cron loop.
func (s *Scheduler) Start() error {
	for _, job := range s.jobs {
		job := job
		_, err := s.cron.AddFunc(job.Spec, func() {
			if err := job.Run(); err != nil {
				s.logger.Error("maintenance job failed", "category", "system", "job", job.Name, "error", err)
				return
			}
			s.logger.Debug("maintenance job completed", "job", job.Name)
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs to finish and stops the loop.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// JobCount returns the number of registered jobs.
func (s *Scheduler) JobCount() int {
	return len(s.jobs)
}
