package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventory-sync-service/config"
	"inventory-sync-service/internal/models"
	"inventory-sync-service/internal/provider"
	"inventory-sync-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSyncInProgress means another run holds the store's sync lock.
var ErrSyncInProgress = errors.New("a sync is already running for this store")

// ProviderAPI is the carrier API surface the orchestrator needs.
type ProviderAPI interface {
	FetchInventory(ctx context.Context, apiKey string) ([]provider.InventoryRecord, error)
	FetchWarehouses(ctx context.Context, apiKey string) ([]provider.WarehouseRecord, error)
	FetchLocations(ctx context.Context, apiKey string) ([]provider.LocationRecord, error)
}

// Locker guards against overlapping runs for the same store/provider.
type Locker interface {
	AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, lockKey string) error
}

// RunStore persists and reads run history.
type RunStore interface {
	InsertSyncRun(ctx context.Context, run *models.SyncRun) error
	GetRecentSyncRuns(ctx context.Context, storeID int64, limit int) ([]models.SyncRun, error)
}

// RunCache holds the latest summary per store for the fast read path.
type RunCache interface {
	SetLatestRun(ctx context.Context, storeID int64, payload []byte) error
	GetLatestRun(ctx context.Context, storeID int64) ([]byte, error)
}

// SyncEventPublisher publishes run lifecycle events.
type SyncEventPublisher interface {
	PublishSyncCompleted(ctx context.Context, event *models.SyncCompletedEvent) error
}

// OperationResult describes one entity type's reconciliation within a run.
type OperationResult struct {
	Operation        string `json:"operation"`
	Success          bool   `json:"success"`
	Duration         int64  `json:"duration"`
	RecordsProcessed int    `json:"recordsProcessed"`
	Added            int    `json:"added"`
	Updated          int    `json:"updated"`
	Failed           int    `json:"failed"`
	Error            string `json:"error,omitempty"`
}

// SyncSummary is the aggregate result of one orchestrator run. Immutable once
// the run finishes.
type SyncSummary struct {
	TotalOperations      int               `json:"totalOperations"`
	SuccessfulOperations int               `json:"successfulOperations"`
	FailedOperations     int               `json:"failedOperations"`
	TotalDuration        int64             `json:"totalDuration"`
	Timestamp            time.Time         `json:"timestamp"`
	Operations           []OperationResult `json:"operations"`
}

// SyncRequest describes one requested run. APIKey, when set, bypasses the
// credential resolver; Entities, when set, overrides the configured subset.
type SyncRequest struct {
	StoreID  int64
	APIKey   string
	Entities []string
}

// Orchestrator sequences the configured entity reconciliations for a store.
// Each operation is wrapped so its failure is recorded in the summary without
// aborting the remaining operations; there is no aborted state, every
// configured entity type is always attempted.
type Orchestrator struct {
	resolver     *CredentialResolver
	provider     ProviderAPI
	reconciler   *Reconciler
	runs         RunStore
	locker       Locker
	cache        RunCache
	publisher    SyncEventPublisher
	providerType string
	cfg          config.SyncConfig
	logger       *zap.Logger
}

// NewOrchestrator creates a new sync orchestrator. cache and publisher may be
// nil, in which case caching and event publishing are skipped.
func NewOrchestrator(
	resolver *CredentialResolver,
	providerAPI ProviderAPI,
	reconciler *Reconciler,
	runs RunStore,
	locker Locker,
	cache RunCache,
	publisher SyncEventPublisher,
	providerType string,
	cfg config.SyncConfig,
) *Orchestrator {
	return &Orchestrator{
		resolver:     resolver,
		provider:     providerAPI,
		reconciler:   reconciler,
		runs:         runs,
		locker:       locker,
		cache:        cache,
		publisher:    publisher,
		providerType: providerType,
		cfg:          cfg,
		logger:       util.GetLogger(),
	}
}

// Run executes one sync run for a store and returns its summary.
func (o *Orchestrator) Run(ctx context.Context, req SyncRequest) (*SyncSummary, error) {
	ctx, span := util.StartSpan(ctx, "Orchestrator.Run")
	defer span.End()

	lockKey := fmt.Sprintf("sync:%d:%s", req.StoreID, o.providerType)
	acquired, err := o.locker.AcquireLock(ctx, lockKey, o.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !acquired {
		util.SyncLockContentionTotal.Inc()
		return nil, ErrSyncInProgress
	}
	defer func() {
		// Release with a fresh context so an expired run deadline does not
		// leave the lock held until its TTL.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := o.locker.ReleaseLock(releaseCtx, lockKey); err != nil {
			o.logger.Error("Failed to release sync lock",
				zap.String("lock_key", lockKey),
				zap.Error(err))
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, o.cfg.RunTimeout)
	defer cancel()

	entities := req.Entities
	if len(entities) == 0 {
		entities = o.cfg.Entities
	}

	o.logger.Info("Starting sync run",
		zap.Int64("store_id", req.StoreID),
		zap.String("provider_type", o.providerType),
		zap.Strings("entities", entities))

	start := time.Now()
	summary := &SyncSummary{Timestamp: start.UTC()}

	for _, entity := range entities {
		opRes := o.runOperation(runCtx, req, entity)
		summary.Operations = append(summary.Operations, opRes)
		if opRes.Success {
			summary.SuccessfulOperations++
			util.SyncOperationsTotal.WithLabelValues(entity, "success").Inc()
		} else {
			summary.FailedOperations++
			util.SyncOperationsTotal.WithLabelValues(entity, "failure").Inc()
			o.logger.Warn("Sync operation failed",
				zap.Int64("store_id", req.StoreID),
				zap.String("operation", entity),
				zap.String("error", opRes.Error))
		}
	}

	summary.TotalOperations = len(summary.Operations)
	summary.TotalDuration = time.Since(start).Milliseconds()

	util.SyncRunDuration.Observe(time.Since(start).Seconds())
	if summary.FailedOperations == 0 {
		util.SyncRunsTotal.WithLabelValues("completed").Inc()
	} else {
		util.SyncRunsTotal.WithLabelValues("completed_with_failures").Inc()
	}

	o.recordRun(ctx, req.StoreID, summary)
	o.publishCompleted(ctx, req.StoreID, summary)

	o.logger.Info("Sync run finished",
		zap.Int64("store_id", req.StoreID),
		zap.Int("successful", summary.SuccessfulOperations),
		zap.Int("failed", summary.FailedOperations),
		zap.Int64("duration_ms", summary.TotalDuration))

	return summary, nil
}

// runOperation runs a single entity reconciliation, catching its failure into
// the result. The credential is resolved per operation so a missing or
// inactive integration fails only this operation.
func (o *Orchestrator) runOperation(ctx context.Context, req SyncRequest, entity string) OperationResult {
	start := time.Now()
	res := OperationResult{Operation: entity}
	defer func() {
		res.Duration = time.Since(start).Milliseconds()
	}()

	apiKey := req.APIKey
	if apiKey == "" {
		key, err := o.resolver.Resolve(ctx, req.StoreID, o.providerType)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		apiKey = key
	}

	var rr ReconcileResult
	switch entity {
	case models.EntityInventory:
		records, err := o.provider.FetchInventory(ctx, apiKey)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		rr = o.reconciler.ReconcileInventory(ctx, req.StoreID, records)

	case models.EntityWarehouses:
		records, err := o.provider.FetchWarehouses(ctx, apiKey)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		rr = o.reconciler.ReconcileWarehouses(ctx, req.StoreID, records)

	case models.EntityLocations:
		records, err := o.provider.FetchLocations(ctx, apiKey)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		rr = o.reconciler.ReconcileLocations(ctx, req.StoreID, records)

	default:
		res.Error = fmt.Sprintf("unknown entity type: %s", entity)
		return res
	}

	res.Success = true
	res.RecordsProcessed = rr.Processed
	res.Added = rr.Added
	res.Updated = rr.Updated
	res.Failed = rr.Failed
	return res
}

// recordRun persists the run-history row and refreshes the latest-summary
// cache. Both are observability paths; failures are logged, not returned.
func (o *Orchestrator) recordRun(ctx context.Context, storeID int64, summary *SyncSummary) {
	payload, err := json.Marshal(summary)
	if err != nil {
		o.logger.Error("Failed to marshal run summary", zap.Error(err))
		return
	}

	run := &models.SyncRun{
		StoreID:              storeID,
		ProviderType:         o.providerType,
		TotalOperations:      summary.TotalOperations,
		SuccessfulOperations: summary.SuccessfulOperations,
		FailedOperations:     summary.FailedOperations,
		DurationMs:           summary.TotalDuration,
		Summary:              string(payload),
	}
	if err := o.runs.InsertSyncRun(ctx, run); err != nil {
		o.logger.Error("Failed to persist sync run",
			zap.Int64("store_id", storeID),
			zap.Error(err))
	}

	if o.cache != nil {
		if err := o.cache.SetLatestRun(ctx, storeID, payload); err != nil {
			o.logger.Warn("Failed to cache latest run summary",
				zap.Int64("store_id", storeID),
				zap.Error(err))
		}
	}
}

func (o *Orchestrator) publishCompleted(ctx context.Context, storeID int64, summary *SyncSummary) {
	if o.publisher == nil {
		return
	}

	event := &models.SyncCompletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeSyncCompleted,
			Timestamp: time.Now(),
		},
		StoreID:              storeID,
		ProviderType:         o.providerType,
		TotalOperations:      summary.TotalOperations,
		SuccessfulOperations: summary.SuccessfulOperations,
		FailedOperations:     summary.FailedOperations,
		TotalDuration:        summary.TotalDuration,
	}
	if err := o.publisher.PublishSyncCompleted(ctx, event); err != nil {
		o.logger.Error("Failed to publish SyncCompleted event", zap.Error(err))
	}
}

// History returns the most recent run summaries for a store.
func (o *Orchestrator) History(ctx context.Context, storeID int64, limit int) ([]models.SyncRun, error) {
	if limit <= 0 || limit > o.cfg.HistoryLimit {
		limit = o.cfg.HistoryLimit
	}
	return o.runs.GetRecentSyncRuns(ctx, storeID, limit)
}

// LatestSummary returns the most recent run summary for a store, preferring
// the cache and falling back to the persisted history.
func (o *Orchestrator) LatestSummary(ctx context.Context, storeID int64) (*SyncSummary, error) {
	if o.cache != nil {
		payload, err := o.cache.GetLatestRun(ctx, storeID)
		if err != nil {
			o.logger.Warn("Failed to read latest run from cache",
				zap.Int64("store_id", storeID),
				zap.Error(err))
		} else if payload != nil {
			var summary SyncSummary
			if err := json.Unmarshal(payload, &summary); err == nil {
				return &summary, nil
			}
		}
	}

	runs, err := o.runs.GetRecentSyncRuns(ctx, storeID, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}

	var summary SyncSummary
	if err := json.Unmarshal([]byte(runs[0].Summary), &summary); err != nil {
		return nil, fmt.Errorf("failed to decode stored summary: %w", err)
	}
	return &summary, nil
}
