package usecase

import (
	"context"
	"time"

	"github.com/Anmirazik/ev-server/domain/entity"
	"github.com/Anmirazik/ev-server/domain/repository"
	"github.com/Anmirazik/ev-server/domain/service"
	"github.com/Anmirazik/ev-server/pkg/logging"
	"github.com/Anmirazik/ev-server/pkg/metrics"
	"github.com/Anmirazik/ev-server/shared/common"
	"github.com/Anmirazik/ev-server/shared/types"
)

const (
	defaultPageSize       = 100
	defaultReleaseTimeout = 5 * time.Second

	// maxErrorDescription caps the failure message stored on a record
	maxErrorDescription = 500
)

// ImportUsersUseCase drains staged user records into the canonical user
// store for one tenant. A pass is guarded by a distributed lock so only
// one instance imports a tenant at a time.
type ImportUsersUseCase struct {
	lockCoordinator  service.LockCoordinator
	importedUserRepo repository.ImportedUserRepository
	userRepo         repository.UserRepository
	reporter         service.ImportReporter
	templates        service.ReportTemplates
	pageSize         int64
	releaseTimeout   time.Duration
	logger           *logging.Logger
	metrics          *metrics.Collector
}

// NewImportUsersUseCase creates a new ImportUsersUseCase
func NewImportUsersUseCase(
	lockCoordinator service.LockCoordinator,
	importedUserRepo repository.ImportedUserRepository,
	userRepo repository.UserRepository,
	reporter service.ImportReporter,
	templates service.ReportTemplates,
	pageSize int64,
	releaseTimeout time.Duration,
	logger *logging.Logger,
	metrics *metrics.Collector,
) *ImportUsersUseCase {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if releaseTimeout <= 0 {
		releaseTimeout = defaultReleaseTimeout
	}

	return &ImportUsersUseCase{
		lockCoordinator:  lockCoordinator,
		importedUserRepo: importedUserRepo,
		userRepo:         userRepo,
		reporter:         reporter,
		templates:        templates,
		pageSize:         pageSize,
		releaseTimeout:   releaseTimeout,
		logger:           logger,
		metrics:          metrics,
	}
}

// Execute runs one import pass for the tenant.
//
// When another instance already holds the import lock the pass is
// skipped and Execute returns nil. Record-level failures are absorbed
// into the result; only lock store and page fetch faults abort the
// pass. The lock is released on every exit path.
func (uc *ImportUsersUseCase) Execute(ctx context.Context, tenantID types.TenantID) error {
	start := time.Now()
	logger := uc.logger.WithTenant(tenantID).WithComponent("users-import")

	lock, err := uc.lockCoordinator.Acquire(ctx, tenantID, service.LockPurposeUserImport)
	if err != nil {
		logger.Error("Failed to acquire import lock", logging.String("error", err.Error()))
		return common.WrapError(err, common.ErrCodeLockAcquisition, "failed to acquire import lock")
	}
	if lock == nil {
		// Another instance is importing this tenant right now
		logger.Info("Import already running elsewhere, skipping pass")
		return nil
	}

	// The pass context may already be cancelled when we get here, so
	// the release runs on its own context to never strand the lock
	// until the lease expires.
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), uc.releaseTimeout)
		defer cancel()

		if releaseErr := uc.lockCoordinator.Release(releaseCtx, lock); releaseErr != nil {
			logger.Error("Failed to release import lock",
				logging.String("lock_key", lock.Key),
				logging.String("error", releaseErr.Error()),
			)
		}
	}()

	// The backlog count is informational only, a failed count never
	// stops the pass
	if total, countErr := uc.importedUserRepo.Count(ctx, tenantID, entity.ImportStatusReady); countErr != nil {
		logger.Warn("Failed to count staged users", logging.String("error", countErr.Error()))
	} else {
		uc.metrics.SetImportBacklog(tenantID.String(), float64(total))
		logger.Info("Starting user import pass", logging.Int64("staged_ready", total))
	}

	result := entity.NewImportResult()

	for {
		// Processed records leave the ready view, deleted on success
		// or flipped to error, so every fetch reads from offset zero
		page, pageErr := uc.importedUserRepo.GetByStatus(ctx, tenantID, entity.ImportStatusReady, uc.pageSize, 0)
		if pageErr != nil {
			uc.metrics.RecordImportRun(tenantID.String(), "aborted", time.Since(start))
			logger.Error("Failed to fetch staged users page", logging.String("error", pageErr.Error()))
			uc.reportFault(ctx, tenantID, pageErr, logger)
			return common.WrapError(pageErr, common.ErrCodeDatabaseQuery, "failed to fetch staged users page")
		}

		if len(page) == 0 {
			break
		}

		for _, record := range page {
			if importErr := uc.importRecord(ctx, record); importErr != nil {
				if markErr := uc.markRecordError(ctx, record, importErr, logger); markErr != nil {
					// The record would stay in the ready view and be
					// retried forever, abort the pass instead
					uc.metrics.RecordImportRun(tenantID.String(), "aborted", time.Since(start))
					uc.reportFault(ctx, tenantID, markErr, logger)
					return markErr
				}
				result.AddError()
				uc.metrics.RecordImportRecord(tenantID.String(), "error")
				continue
			}

			result.AddSuccess()
			uc.metrics.RecordImportRecord(tenantID.String(), "success")
		}
	}

	result.Duration = time.Since(start)

	if reportErr := uc.reporter.Report(ctx, tenantID, result, uc.templates); reportErr != nil {
		// Reporting is best effort, the pass itself succeeded
		uc.metrics.RecordError("report_publish", "users-import")
		logger.Error("Failed to publish import report", logging.String("error", reportErr.Error()))
	}

	uc.metrics.RecordImportRun(tenantID.String(), string(result.Outcome()), result.Duration)
	uc.metrics.SetImportBacklog(tenantID.String(), 0)

	logger.Info("User import pass completed",
		logging.Int("in_success", result.InSuccess),
		logging.Int("in_error", result.InError),
		logging.Duration("duration", result.Duration),
	)

	return nil
}

// importRecord merges one staged record into the canonical user store.
// A returned error means the record could not be imported and must be
// marked accordingly; the pass itself continues.
func (uc *ImportUsersUseCase) importRecord(ctx context.Context, record *entity.ImportedUser) error {
	if record.Email == "" || !common.Validation.IsValidEmail(record.Email) {
		return entity.ErrInvalidEmail
	}

	existing, err := uc.userRepo.FindByEmail(ctx, record.TenantID, record.Email)
	if err != nil {
		return common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to look up user by email")
	}

	if existing != nil {
		return uc.updateExistingUser(ctx, existing, record)
	}

	return uc.createUser(ctx, record)
}

// updateExistingUser merges the staged record into an existing account
func (uc *ImportUsersUseCase) updateExistingUser(ctx context.Context, user *entity.User, record *entity.ImportedUser) error {
	if err := user.CanApplyImport(); err != nil {
		return err
	}

	user.ApplyImport(record.Name, record.FirstName)
	user.SetProvenance(record.ImportedBy, record.ImportedOn)

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to update user")
	}

	// A previous pass may have stopped between the create and the role
	// or status writes. Finishing the activation here makes partial
	// creations converge on retry.
	if !user.HasRole() {
		if err := uc.userRepo.SaveRole(ctx, user.TenantID, user.ID, entity.UserRoleBasic); err != nil {
			return common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to save user role")
		}
	}

	if err := uc.userRepo.SaveStatus(ctx, user.TenantID, user.ID, entity.UserStatusActive); err != nil {
		return common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to save user status")
	}

	return uc.deleteRecord(ctx, record)
}

// createUser creates a new issuer-managed account from the staged record
func (uc *ImportUsersUseCase) createUser(ctx context.Context, record *entity.ImportedUser) error {
	user := entity.NewUser(record.TenantID, record.Email, record.Name, record.FirstName)
	user.SetProvenance(record.ImportedBy, record.ImportedOn)

	if err := user.Validate(); err != nil {
		return err
	}

	userID, err := uc.userRepo.Create(ctx, user)
	if err != nil {
		return common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to create user")
	}

	// Role and status live in their own documents and are written
	// separately after the create
	if err := uc.userRepo.SaveRole(ctx, record.TenantID, userID, entity.UserRoleBasic); err != nil {
		return common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to save user role")
	}

	if err := uc.userRepo.SaveStatus(ctx, record.TenantID, userID, entity.UserStatusActive); err != nil {
		return common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to save user status")
	}

	return uc.deleteRecord(ctx, record)
}

// deleteRecord removes a fully imported record from the staged store
func (uc *ImportUsersUseCase) deleteRecord(ctx context.Context, record *entity.ImportedUser) error {
	if err := uc.importedUserRepo.Delete(ctx, record.TenantID, record.ID); err != nil {
		return common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to delete staged user")
	}
	return nil
}

// markRecordError persists the failure on the staged record so it is
// excluded from later passes. The returned error is non-nil only when
// the mark itself could not be persisted.
func (uc *ImportUsersUseCase) markRecordError(ctx context.Context, record *entity.ImportedUser, cause error, logger *logging.Logger) error {
	record.MarkError(common.Strings.Truncate(cause.Error(), maxErrorDescription))

	if err := uc.importedUserRepo.Upsert(ctx, record); err != nil {
		logger.Error("Failed to persist import error status",
			logging.String("email", record.Email),
			logging.String("error", err.Error()),
		)
		return common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to persist import error status")
	}

	logger.Warn("Staged user could not be imported",
		logging.String("email", record.Email),
		logging.String("error", cause.Error()),
	)

	return nil
}

// reportFault publishes an abnormal pass termination, best effort
func (uc *ImportUsersUseCase) reportFault(ctx context.Context, tenantID types.TenantID, faultErr error, logger *logging.Logger) {
	if err := uc.reporter.ReportFault(ctx, tenantID, faultErr); err != nil {
		uc.metrics.RecordError("report_publish", "users-import")
		logger.Error("Failed to publish import fault report", logging.String("error", err.Error()))
	}
}
