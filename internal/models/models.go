package models

import "time"

// Integration represents a store's connection to an external provider.
// The API key is stored base64-encoded; at most one active row exists per
// (store_id, provider_type).
type Integration struct {
	ID              int64     `db:"id" json:"id"`
	StoreID         int64     `db:"store_id" json:"store_id"`
	ProviderType    string    `db:"provider_type" json:"provider_type"`
	APIKeyEncrypted string    `db:"api_key_encrypted" json:"-"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// InventoryLevel is the local counterpart of one provider inventory line,
// unique per (store_id, sku).
type InventoryLevel struct {
	ID          int64     `db:"id" json:"id"`
	StoreID     int64     `db:"store_id" json:"store_id"`
	SKU         string    `db:"sku" json:"sku"`
	ProductName string    `db:"product_name" json:"product_name"`
	Available   int       `db:"available" json:"available"`
	WarehouseID string    `db:"warehouse_id" json:"warehouse_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Warehouse mirrors a provider warehouse, unique per (store_id, warehouse_id).
type Warehouse struct {
	ID          int64     `db:"id" json:"id"`
	StoreID     int64     `db:"store_id" json:"store_id"`
	WarehouseID string    `db:"warehouse_id" json:"warehouse_id"`
	Name        string    `db:"name" json:"name"`
	City        string    `db:"city" json:"city"`
	Country     string    `db:"country" json:"country"`
	Phone       string    `db:"phone" json:"phone"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// InventoryLocation mirrors a provider inventory location (a bin or zone
// inside a warehouse), unique per (store_id, location_id).
type InventoryLocation struct {
	ID          int64     `db:"id" json:"id"`
	StoreID     int64     `db:"store_id" json:"store_id"`
	LocationID  string    `db:"location_id" json:"location_id"`
	WarehouseID string    `db:"warehouse_id" json:"warehouse_id"`
	Name        string    `db:"name" json:"name"`
	Kind        string    `db:"kind" json:"kind"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Product is a catalog entry. StockQuantity is denormalized from the matching
// inventory level during reconciliation.
type Product struct {
	ID            int64     `db:"id" json:"id"`
	StoreID       int64     `db:"store_id" json:"store_id"`
	SKU           string    `db:"sku" json:"sku"`
	Name          string    `db:"name" json:"name"`
	Price         int64     `db:"price" json:"price"`
	StockQuantity int       `db:"stock_quantity" json:"stock_quantity"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// SyncRun is one persisted orchestrator invocation. Summary holds the full
// JSON run summary for the history endpoint.
type SyncRun struct {
	ID                   int64     `db:"id" json:"id"`
	StoreID              int64     `db:"store_id" json:"store_id"`
	ProviderType         string    `db:"provider_type" json:"provider_type"`
	TotalOperations      int       `db:"total_operations" json:"total_operations"`
	SuccessfulOperations int       `db:"successful_operations" json:"successful_operations"`
	FailedOperations     int       `db:"failed_operations" json:"failed_operations"`
	DurationMs           int64     `db:"duration_ms" json:"duration_ms"`
	Summary              string    `db:"summary" json:"summary"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
}

// Sync entity types
const (
	EntityInventory  = "inventory"
	EntityWarehouses = "warehouses"
	EntityLocations  = "locations"
)
