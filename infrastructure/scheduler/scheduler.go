package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Anmirazik/ev-server/config"
	"github.com/Anmirazik/ev-server/domain/repository"
	"github.com/Anmirazik/ev-server/pkg/logging"
	"github.com/Anmirazik/ev-server/pkg/metrics"
	"github.com/Anmirazik/ev-server/shared/common"
	"github.com/Anmirazik/ev-server/usecase"
)

// cronParser supports standard 5-field cron and descriptors like "@every 1m"
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ImportScheduler fires the user import on a cron schedule across all
// active tenants. Tenants are imported with bounded parallelism and
// launches are paced so a large tenant list does not hit the stores
// all at once.
type ImportScheduler struct {
	importUseCase *usecase.ImportUsersUseCase
	tenantRepo    repository.TenantRepository
	schedule      string
	maxConcurrent int
	launchLimiter *rate.Limiter
	logger        *logging.Logger
	metrics       *metrics.Collector

	cron *cron.Cron

	// ticking guards against overlapping sweeps when a sweep outlasts
	// the schedule interval
	ticking atomic.Bool
}

// NewImportScheduler creates a new import scheduler
func NewImportScheduler(
	importUseCase *usecase.ImportUsersUseCase,
	tenantRepo repository.TenantRepository,
	cfg config.ImportConfig,
	logger *logging.Logger,
	metrics *metrics.Collector,
) *ImportScheduler {
	maxConcurrent := cfg.MaxConcurrentTenants
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	perSecond := cfg.TenantsPerSecond
	if perSecond <= 0 {
		perSecond = 1
	}

	return &ImportScheduler{
		importUseCase: importUseCase,
		tenantRepo:    tenantRepo,
		schedule:      cfg.Schedule,
		maxConcurrent: maxConcurrent,
		launchLimiter: rate.NewLimiter(rate.Limit(perSecond), maxConcurrent),
		logger:        logger,
		metrics:       metrics,
	}
}

// Start registers the import job and starts the cron runner
func (s *ImportScheduler) Start() error {
	s.cron = cron.New(cron.WithParser(cronParser), cron.WithLocation(time.UTC))

	if _, err := s.cron.AddFunc(s.schedule, s.tick); err != nil {
		return common.WrapError(err, common.ErrCodeInvalidInput, "invalid import schedule")
	}

	s.cron.Start()

	s.logger.Info("Import scheduler started",
		logging.String("schedule", s.schedule),
		logging.Int("max_concurrent_tenants", s.maxConcurrent),
	)

	return nil
}

// Stop stops the cron runner and waits for a running sweep to finish
// or the context to expire
func (s *ImportScheduler) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}

	stopCtx := s.cron.Stop()

	select {
	case <-stopCtx.Done():
		s.logger.Info("Import scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Import scheduler stop timed out with sweep still running")
		return ctx.Err()
	}
}

// tick runs one sweep, skipping when the previous one is still going
func (s *ImportScheduler) tick() {
	if !s.ticking.CompareAndSwap(false, true) {
		s.logger.Warn("Previous import sweep still running, skipping tick")
		return
	}
	defer s.ticking.Store(false)

	if err := s.RunOnce(context.Background()); err != nil {
		s.logger.Error("Import sweep failed", logging.String("error", err.Error()))
	}
}

// RunOnce imports all active tenants once
func (s *ImportScheduler) RunOnce(ctx context.Context) error {
	sweep := metrics.NewTimer()

	tenants, err := s.tenantRepo.ListActive(ctx)
	if err != nil {
		s.metrics.RecordError("tenant_list_error", "scheduler")
		return common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to list active tenants")
	}

	if len(tenants) == 0 {
		s.logger.Debug("No active tenants to import")
		return nil
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for _, tenant := range tenants {
		tenant := tenant

		if err := s.launchLimiter.Wait(groupCtx); err != nil {
			// shutdown in progress, stop launching new tenants
			break
		}

		g.Go(func() error {
			// A failed tenant never stops the sweep
			if err := s.importUseCase.Execute(groupCtx, tenant.ID); err != nil {
				s.logger.Error("Tenant import failed",
					logging.String("tenant_id", tenant.ID.String()),
					logging.String("tenant", tenant.Name),
					logging.String("error", err.Error()),
				)
			}
			return nil
		})
	}

	_ = g.Wait()

	sweep.ObserveDuration(s.metrics.BusinessDuration.WithLabelValues("import_sweep", "all"))

	s.logger.Info("Import sweep completed",
		logging.Int("tenants", len(tenants)),
		logging.Duration("duration", sweep.Duration()),
	)
	s.logger.LogPerformance("import_sweep", sweep.Duration(),
		logging.Int("tenants", len(tenants)),
	)

	return nil
}
