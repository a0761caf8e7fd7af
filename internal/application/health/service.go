package health

import (
	"context"
	"time"

	corehealth "3tcapital/ms_service_documents/internal/core/health"
)

const checkTimeout = 2 * time.Second

// Metadata contains immutable metadata about the running service.
type Metadata struct {
	Service     string
	Version     string
	Environment string
}

// Check pings one dependency, e.g. the history database.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Service reports availability.
type Service struct {
	meta      Metadata
	checks    []Check
	startedAt time.Time
}

func NewService(meta Metadata, checks ...Check) *Service {
	return &Service{
		meta:      meta,
		checks:    checks,
		startedAt: time.Now().UTC(),
	}
}

// Status runs every check and reports DEGRADED when any of them fails.
func (s *Service) Status(ctx context.Context) corehealth.Status {
	uptime := time.Since(s.startedAt)
	status := corehealth.Status{
		Service:     s.meta.Service,
		Version:     s.meta.Version,
		Environment: s.meta.Environment,
		Status:      corehealth.StatusUp,
		StartedAt:   s.startedAt,
		Uptime:      uptime.Round(time.Second).String(),
		UptimeSecs:  int64(uptime.Seconds()),
	}

	for _, c := range s.checks {
		dep := corehealth.Dependency{Name: c.Name, Status: corehealth.StatusUp}
		pctx, cancel := context.WithTimeout(ctx, checkTimeout)
		if err := c.Ping(pctx); err != nil {
			dep.Status = corehealth.StatusDegraded
			dep.Error = err.Error()
			status.Status = corehealth.StatusDegraded
		}
		cancel()
		status.Dependencies = append(status.Dependencies, dep)
	}
	return status
}
