package store

import (
	"context"
	"database/sql"

	"inventory-sync-service/internal/models"
)

// GetInventoryLevel retrieves an inventory level by (store_id, sku).
// Returns nil without error when no row exists.
func (s *Store) GetInventoryLevel(ctx context.Context, storeID int64, sku string) (*models.InventoryLevel, error) {
	var level models.InventoryLevel
	err := s.db.GetContext(ctx, &level,
		"SELECT * FROM inventory_levels WHERE store_id = $1 AND sku = $2", storeID, sku)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// InsertInventoryLevel creates a new inventory level row
func (s *Store) InsertInventoryLevel(ctx context.Context, level *models.InventoryLevel) error {
	query := `
		INSERT INTO inventory_levels (store_id, sku, product_name, available, warehouse_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, level, query,
		level.StoreID, level.SKU, level.ProductName, level.Available, level.WarehouseID)
}

// UpdateInventoryLevel updates the mutable fields of an inventory level
func (s *Store) UpdateInventoryLevel(ctx context.Context, level *models.InventoryLevel) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE inventory_levels
		SET product_name = $1, available = $2, warehouse_id = $3, updated_at = NOW()
		WHERE store_id = $4 AND sku = $5`,
		level.ProductName, level.Available, level.WarehouseID, level.StoreID, level.SKU)
	return err
}

// GetWarehouse retrieves a warehouse by (store_id, warehouse_id).
// Returns nil without error when no row exists.
func (s *Store) GetWarehouse(ctx context.Context, storeID int64, warehouseID string) (*models.Warehouse, error) {
	var wh models.Warehouse
	err := s.db.GetContext(ctx, &wh,
		"SELECT * FROM warehouses WHERE store_id = $1 AND warehouse_id = $2", storeID, warehouseID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wh, nil
}

// InsertWarehouse creates a new warehouse row
func (s *Store) InsertWarehouse(ctx context.Context, wh *models.Warehouse) error {
	query := `
		INSERT INTO warehouses (store_id, warehouse_id, name, city, country, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, wh, query,
		wh.StoreID, wh.WarehouseID, wh.Name, wh.City, wh.Country, wh.Phone)
}

// UpdateWarehouse updates the mutable fields of a warehouse
func (s *Store) UpdateWarehouse(ctx context.Context, wh *models.Warehouse) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE warehouses
		SET name = $1, city = $2, country = $3, phone = $4, updated_at = NOW()
		WHERE store_id = $5 AND warehouse_id = $6`,
		wh.Name, wh.City, wh.Country, wh.Phone, wh.StoreID, wh.WarehouseID)
	return err
}

// GetInventoryLocation retrieves a location by (store_id, location_id).
// Returns nil without error when no row exists.
func (s *Store) GetInventoryLocation(ctx context.Context, storeID int64, locationID string) (*models.InventoryLocation, error) {
	var loc models.InventoryLocation
	err := s.db.GetContext(ctx, &loc,
		"SELECT * FROM inventory_locations WHERE store_id = $1 AND location_id = $2", storeID, locationID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// InsertInventoryLocation creates a new location row
func (s *Store) InsertInventoryLocation(ctx context.Context, loc *models.InventoryLocation) error {
	query := `
		INSERT INTO inventory_locations (store_id, location_id, warehouse_id, name, kind)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, loc, query,
		loc.StoreID, loc.LocationID, loc.WarehouseID, loc.Name, loc.Kind)
}

// UpdateInventoryLocation updates the mutable fields of a location
func (s *Store) UpdateInventoryLocation(ctx context.Context, loc *models.InventoryLocation) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE inventory_locations
		SET warehouse_id = $1, name = $2, kind = $3, updated_at = NOW()
		WHERE store_id = $4 AND location_id = $5`,
		loc.WarehouseID, loc.Name, loc.Kind, loc.StoreID, loc.LocationID)
	return err
}

// UpdateProductStock sets stock_quantity on the catalog entry matching
// (store_id, sku). Zero rows affected means no matching product, which is
// not an error.
func (s *Store) UpdateProductStock(ctx context.Context, storeID int64, sku string, quantity int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET stock_quantity = $1, updated_at = NOW()
		WHERE store_id = $2 AND sku = $3`,
		quantity, storeID, sku)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// GetProductBySKU retrieves a catalog entry by (store_id, sku).
// Returns nil without error when no row exists.
func (s *Store) GetProductBySKU(ctx context.Context, storeID int64, sku string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT * FROM products WHERE store_id = $1 AND sku = $2", storeID, sku)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}
