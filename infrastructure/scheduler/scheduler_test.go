package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Anmirazik/ev-server/config"
	"github.com/Anmirazik/ev-server/domain/entity"
	"github.com/Anmirazik/ev-server/domain/service"
	"github.com/Anmirazik/ev-server/infrastructure/scheduler"
	"github.com/Anmirazik/ev-server/pkg/logging"
	"github.com/Anmirazik/ev-server/pkg/metrics"
	"github.com/Anmirazik/ev-server/shared/common"
	"github.com/Anmirazik/ev-server/shared/types"
	"github.com/Anmirazik/ev-server/usecase"
)

// stubTenantRepo serves a fixed tenant list.
type stubTenantRepo struct {
	tenants []*entity.Tenant
	listErr error
}

func (r *stubTenantRepo) GetByID(_ context.Context, tenantID types.TenantID) (*entity.Tenant, error) {
	for _, t := range r.tenants {
		if t.ID == tenantID {
			return t, nil
		}
	}
	return nil, common.ErrNotFound("tenant")
}

func (r *stubTenantRepo) ListActive(_ context.Context) ([]*entity.Tenant, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.tenants, nil
}

// stubLockCoordinator always grants locks, except for one tenant it can
// be told to fail. Sweeps run tenants concurrently, so calls are
// recorded under a mutex.
type stubLockCoordinator struct {
	mu         sync.Mutex
	failTenant types.TenantID
	failErr    error
	acquires   int
}

func (c *stubLockCoordinator) Acquire(_ context.Context, tenantID types.TenantID, purpose string) (*service.Lock, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failErr != nil && tenantID == c.failTenant {
		return nil, c.failErr
	}

	c.acquires++
	return &service.Lock{
		Key:        "evserver:lock:" + tenantID.String() + ":" + purpose,
		Token:      "test-token",
		TenantID:   tenantID,
		Purpose:    purpose,
		AcquiredAt: time.Now().UTC(),
		TTL:        time.Minute,
	}, nil
}

func (c *stubLockCoordinator) Release(_ context.Context, _ *service.Lock) error {
	return nil
}

// emptyStagingRepo holds no staged records, every pass is an empty one.
type emptyStagingRepo struct{}

func (emptyStagingRepo) Count(_ context.Context, _ types.TenantID, _ entity.ImportStatus) (int64, error) {
	return 0, nil
}

func (emptyStagingRepo) GetByStatus(_ context.Context, _ types.TenantID, _ entity.ImportStatus, _, _ int64) ([]*entity.ImportedUser, error) {
	return nil, nil
}

func (emptyStagingRepo) Upsert(_ context.Context, _ *entity.ImportedUser) error { return nil }

func (emptyStagingRepo) Delete(_ context.Context, _ types.TenantID, _ types.ImportID) error {
	return nil
}

// unusedUserRepo fails the test if an empty sweep ever reaches the user store.
type unusedUserRepo struct{ t *testing.T }

func (r unusedUserRepo) FindByEmail(_ context.Context, _ types.TenantID, _ string) (*entity.User, error) {
	r.t.Error("unexpected FindByEmail call during an empty sweep")
	return nil, nil
}

func (r unusedUserRepo) Create(_ context.Context, _ *entity.User) (types.UserID, error) {
	r.t.Error("unexpected Create call during an empty sweep")
	return types.UserID{}, nil
}

func (r unusedUserRepo) Update(_ context.Context, _ *entity.User) error {
	r.t.Error("unexpected Update call during an empty sweep")
	return nil
}

func (r unusedUserRepo) SaveRole(_ context.Context, _ types.TenantID, _ types.UserID, _ entity.UserRole) error {
	r.t.Error("unexpected SaveRole call during an empty sweep")
	return nil
}

func (r unusedUserRepo) SaveStatus(_ context.Context, _ types.TenantID, _ types.UserID, _ entity.UserStatus) error {
	r.t.Error("unexpected SaveStatus call during an empty sweep")
	return nil
}

// recordingReporter collects the tenants it reported for.
type recordingReporter struct {
	mu      sync.Mutex
	tenants []types.TenantID
}

func (r *recordingReporter) Report(_ context.Context, tenantID types.TenantID, _ *entity.ImportResult, _ service.ReportTemplates) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants = append(r.tenants, tenantID)
	return nil
}

func (r *recordingReporter) ReportFault(_ context.Context, _ types.TenantID, _ error) error {
	return nil
}

func (r *recordingReporter) reported() []types.TenantID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.TenantID, len(r.tenants))
	copy(out, r.tenants)
	return out
}

func importConfig() config.ImportConfig {
	return config.ImportConfig{
		Schedule:             "@every 1m",
		PageSize:             100,
		LockTTL:              time.Minute,
		ReleaseTimeout:       time.Second,
		MaxConcurrentTenants: 2,
		TenantsPerSecond:     1000,
	}
}

func newTestScheduler(t *testing.T, tenantRepo *stubTenantRepo, lock *stubLockCoordinator, reporter *recordingReporter) *scheduler.ImportScheduler {
	t.Helper()

	logger := &logging.Logger{Logger: zaptest.NewLogger(t)}
	collector := metrics.NewCollector("test")
	cfg := importConfig()

	uc := usecase.NewImportUsersUseCase(
		lock,
		emptyStagingRepo{},
		unusedUserRepo{t: t},
		reporter,
		service.DefaultReportTemplates(),
		cfg.PageSize,
		cfg.ReleaseTimeout,
		logger,
		collector,
	)

	return scheduler.NewImportScheduler(uc, tenantRepo, cfg, logger, collector)
}

func TestRunOnce_SweepsAllActiveTenants(t *testing.T) {
	tenantRepo := &stubTenantRepo{tenants: []*entity.Tenant{
		entity.NewTenant("acme", "acme"),
		entity.NewTenant("globex", "globex"),
		entity.NewTenant("initech", "initech"),
	}}
	lock := &stubLockCoordinator{}
	reporter := &recordingReporter{}
	sched := newTestScheduler(t, tenantRepo, lock, reporter)

	err := sched.RunOnce(context.Background())

	require.NoError(t, err)

	reported := reporter.reported()
	assert.Len(t, reported, 3, "every active tenant gets its own pass and report")
	seen := map[types.TenantID]bool{}
	for _, id := range reported {
		seen[id] = true
	}
	for _, tenant := range tenantRepo.tenants {
		assert.True(t, seen[tenant.ID], "tenant %s was not swept", tenant.Name)
	}
}

func TestRunOnce_NoActiveTenants(t *testing.T) {
	tenantRepo := &stubTenantRepo{}
	reporter := &recordingReporter{}
	sched := newTestScheduler(t, tenantRepo, &stubLockCoordinator{}, reporter)

	err := sched.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Empty(t, reporter.reported())
}

func TestRunOnce_TenantListFaultPropagates(t *testing.T) {
	tenantRepo := &stubTenantRepo{listErr: errors.New("mongo: network error")}
	reporter := &recordingReporter{}
	sched := newTestScheduler(t, tenantRepo, &stubLockCoordinator{}, reporter)

	err := sched.RunOnce(context.Background())

	require.Error(t, err)
	assert.True(t, common.HasErrorCode(err, common.ErrCodeDatabaseQuery))
	assert.Empty(t, reporter.reported())
}

func TestRunOnce_FailedTenantDoesNotStopSweep(t *testing.T) {
	tenants := []*entity.Tenant{
		entity.NewTenant("acme", "acme"),
		entity.NewTenant("globex", "globex"),
		entity.NewTenant("initech", "initech"),
	}
	tenantRepo := &stubTenantRepo{tenants: tenants}
	lock := &stubLockCoordinator{
		failTenant: tenants[1].ID,
		failErr:    errors.New("redis: connection refused"),
	}
	reporter := &recordingReporter{}
	sched := newTestScheduler(t, tenantRepo, lock, reporter)

	err := sched.RunOnce(context.Background())

	require.NoError(t, err, "a failing tenant must not fail the sweep")

	reported := reporter.reported()
	assert.Len(t, reported, 2)
	for _, id := range reported {
		assert.NotEqual(t, tenants[1].ID, id, "the failed tenant has no result to report")
	}
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	cfg := importConfig()
	cfg.Schedule = "not-a-schedule"

	logger := &logging.Logger{Logger: zaptest.NewLogger(t)}
	collector := metrics.NewCollector("test")
	uc := usecase.NewImportUsersUseCase(
		&stubLockCoordinator{},
		emptyStagingRepo{},
		unusedUserRepo{t: t},
		&recordingReporter{},
		service.DefaultReportTemplates(),
		cfg.PageSize,
		cfg.ReleaseTimeout,
		logger,
		collector,
	)
	sched := scheduler.NewImportScheduler(uc, &stubTenantRepo{}, cfg, logger, collector)

	err := sched.Start()

	require.Error(t, err)
	assert.True(t, common.HasErrorCode(err, common.ErrCodeInvalidInput))
}

func TestStartAndStop(t *testing.T) {
	tenantRepo := &stubTenantRepo{}
	sched := newTestScheduler(t, tenantRepo, &stubLockCoordinator{}, &recordingReporter{})

	require.NoError(t, sched.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, sched.Stop(ctx))
}
