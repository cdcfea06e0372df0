package service

import (
	"context"

	"inventory-sync-service/internal/models"
	"inventory-sync-service/internal/provider"
	"inventory-sync-service/internal/util"

	"go.uber.org/zap"
)

// ReconcilerStore provides store-scoped access to the reconciled tables and
// the catalog projection.
type ReconcilerStore interface {
	GetInventoryLevel(ctx context.Context, storeID int64, sku string) (*models.InventoryLevel, error)
	InsertInventoryLevel(ctx context.Context, level *models.InventoryLevel) error
	UpdateInventoryLevel(ctx context.Context, level *models.InventoryLevel) error

	GetWarehouse(ctx context.Context, storeID int64, warehouseID string) (*models.Warehouse, error)
	InsertWarehouse(ctx context.Context, wh *models.Warehouse) error
	UpdateWarehouse(ctx context.Context, wh *models.Warehouse) error

	GetInventoryLocation(ctx context.Context, storeID int64, locationID string) (*models.InventoryLocation, error)
	InsertInventoryLocation(ctx context.Context, loc *models.InventoryLocation) error
	UpdateInventoryLocation(ctx context.Context, loc *models.InventoryLocation) error

	UpdateProductStock(ctx context.Context, storeID int64, sku string, quantity int) (bool, error)
}

// ReconcileResult aggregates one entity type's reconciliation pass.
type ReconcileResult struct {
	Processed int
	Added     int
	Updated   int
	Failed    int
}

// Reconciler merges remote record sets into the store-scoped local tables by
// upsert on the natural key. The unit of failure isolation is the individual
// record: a bad record is counted and skipped, never aborting the batch, and
// no transaction spans multiple records.
type Reconciler struct {
	store  ReconcilerStore
	logger *zap.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(store ReconcilerStore) *Reconciler {
	return &Reconciler{
		store:  store,
		logger: util.GetLogger(),
	}
}

// ReconcileInventory upserts inventory levels keyed by (store_id, sku) and
// projects each reconciled quantity onto the matching catalog entry.
func (r *Reconciler) ReconcileInventory(ctx context.Context, storeID int64, records []provider.InventoryRecord) ReconcileResult {
	ctx, span := util.StartSpan(ctx, "Reconciler.ReconcileInventory")
	defer span.End()

	var res ReconcileResult
	for _, rec := range records {
		res.Processed++

		if rec.SKU == "" {
			r.recordFailure(&res, models.EntityInventory, storeID, "(missing sku)", nil)
			continue
		}

		existing, err := r.store.GetInventoryLevel(ctx, storeID, rec.SKU)
		if err != nil {
			r.recordFailure(&res, models.EntityInventory, storeID, rec.SKU, err)
			continue
		}

		if existing != nil {
			existing.ProductName = rec.Name
			existing.Available = rec.Available
			existing.WarehouseID = rec.WarehouseID
			if err := r.store.UpdateInventoryLevel(ctx, existing); err != nil {
				r.recordFailure(&res, models.EntityInventory, storeID, rec.SKU, err)
				continue
			}
			res.Updated++
			util.RecordsUpdatedTotal.WithLabelValues(models.EntityInventory).Inc()
		} else {
			level := &models.InventoryLevel{
				StoreID:     storeID,
				SKU:         rec.SKU,
				ProductName: rec.Name,
				Available:   rec.Available,
				WarehouseID: rec.WarehouseID,
			}
			if err := r.store.InsertInventoryLevel(ctx, level); err != nil {
				r.recordFailure(&res, models.EntityInventory, storeID, rec.SKU, err)
				continue
			}
			res.Added++
			util.RecordsAddedTotal.WithLabelValues(models.EntityInventory).Inc()
		}

		r.projectToCatalog(ctx, storeID, rec.SKU, rec.Available)
	}

	return res
}

// projectToCatalog propagates a reconciled quantity onto the denormalized
// stock_quantity of the matching product. No matching SKU is a no-op; a write
// failure is logged but does not fail the record, whose inventory row is
// already correct.
func (r *Reconciler) projectToCatalog(ctx context.Context, storeID int64, sku string, available int) {
	projected, err := r.store.UpdateProductStock(ctx, storeID, sku, available)
	if err != nil {
		r.logger.Warn("Failed to project stock quantity to catalog",
			zap.Int64("store_id", storeID),
			zap.String("sku", sku),
			zap.Error(err))
		return
	}
	if projected {
		util.CatalogProjectionsTotal.Inc()
	}
}

// ReconcileWarehouses upserts warehouses keyed by (store_id, warehouse_id).
func (r *Reconciler) ReconcileWarehouses(ctx context.Context, storeID int64, records []provider.WarehouseRecord) ReconcileResult {
	ctx, span := util.StartSpan(ctx, "Reconciler.ReconcileWarehouses")
	defer span.End()

	var res ReconcileResult
	for _, rec := range records {
		res.Processed++

		if rec.WarehouseID == "" {
			r.recordFailure(&res, models.EntityWarehouses, storeID, "(missing id)", nil)
			continue
		}

		existing, err := r.store.GetWarehouse(ctx, storeID, rec.WarehouseID)
		if err != nil {
			r.recordFailure(&res, models.EntityWarehouses, storeID, rec.WarehouseID, err)
			continue
		}

		if existing != nil {
			existing.Name = rec.Name
			existing.City = rec.City
			existing.Country = rec.Country
			existing.Phone = rec.Phone
			if err := r.store.UpdateWarehouse(ctx, existing); err != nil {
				r.recordFailure(&res, models.EntityWarehouses, storeID, rec.WarehouseID, err)
				continue
			}
			res.Updated++
			util.RecordsUpdatedTotal.WithLabelValues(models.EntityWarehouses).Inc()
		} else {
			wh := &models.Warehouse{
				StoreID:     storeID,
				WarehouseID: rec.WarehouseID,
				Name:        rec.Name,
				City:        rec.City,
				Country:     rec.Country,
				Phone:       rec.Phone,
			}
			if err := r.store.InsertWarehouse(ctx, wh); err != nil {
				r.recordFailure(&res, models.EntityWarehouses, storeID, rec.WarehouseID, err)
				continue
			}
			res.Added++
			util.RecordsAddedTotal.WithLabelValues(models.EntityWarehouses).Inc()
		}
	}

	return res
}

// ReconcileLocations upserts inventory locations keyed by (store_id, location_id).
func (r *Reconciler) ReconcileLocations(ctx context.Context, storeID int64, records []provider.LocationRecord) ReconcileResult {
	ctx, span := util.StartSpan(ctx, "Reconciler.ReconcileLocations")
	defer span.End()

	var res ReconcileResult
	for _, rec := range records {
		res.Processed++

		if rec.LocationID == "" {
			r.recordFailure(&res, models.EntityLocations, storeID, "(missing id)", nil)
			continue
		}

		existing, err := r.store.GetInventoryLocation(ctx, storeID, rec.LocationID)
		if err != nil {
			r.recordFailure(&res, models.EntityLocations, storeID, rec.LocationID, err)
			continue
		}

		if existing != nil {
			existing.WarehouseID = rec.WarehouseID
			existing.Name = rec.Name
			existing.Kind = rec.Kind
			if err := r.store.UpdateInventoryLocation(ctx, existing); err != nil {
				r.recordFailure(&res, models.EntityLocations, storeID, rec.LocationID, err)
				continue
			}
			res.Updated++
			util.RecordsUpdatedTotal.WithLabelValues(models.EntityLocations).Inc()
		} else {
			loc := &models.InventoryLocation{
				StoreID:     storeID,
				LocationID:  rec.LocationID,
				WarehouseID: rec.WarehouseID,
				Name:        rec.Name,
				Kind:        rec.Kind,
			}
			if err := r.store.InsertInventoryLocation(ctx, loc); err != nil {
				r.recordFailure(&res, models.EntityLocations, storeID, rec.LocationID, err)
				continue
			}
			res.Added++
			util.RecordsAddedTotal.WithLabelValues(models.EntityLocations).Inc()
		}
	}

	return res
}

func (r *Reconciler) recordFailure(res *ReconcileResult, entity string, storeID int64, key string, err error) {
	res.Failed++
	util.RecordFailuresTotal.WithLabelValues(entity).Inc()
	r.logger.Error("Failed to reconcile record",
		zap.String("entity", entity),
		zap.Int64("store_id", storeID),
		zap.String("key", key),
		zap.Error(err))
}
