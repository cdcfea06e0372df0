package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"inventory-sync-service/internal/models"
	"inventory-sync-service/internal/provider"
)

// fakeStore is an in-memory ReconcilerStore/CredentialStore/RunStore.
// Natural keys listed in failKeys make every write for that key fail, which
// drives the partial-failure tests.
type fakeStore struct {
	mu           sync.Mutex
	nextID       int64
	levels       map[string]models.InventoryLevel
	warehouses   map[string]models.Warehouse
	locations    map[string]models.InventoryLocation
	products     map[string]models.Product
	integrations map[string]models.Integration
	runs         []models.SyncRun
	failKeys     map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		levels:       make(map[string]models.InventoryLevel),
		warehouses:   make(map[string]models.Warehouse),
		locations:    make(map[string]models.InventoryLocation),
		products:     make(map[string]models.Product),
		integrations: make(map[string]models.Integration),
		failKeys:     make(map[string]bool),
	}
}

func scopedKey(storeID int64, natural string) string {
	return fmt.Sprintf("%d|%s", storeID, natural)
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) GetInventoryLevel(_ context.Context, storeID int64, sku string) (*models.InventoryLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lvl, ok := f.levels[scopedKey(storeID, sku)]; ok {
		cp := lvl
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) InsertInventoryLevel(_ context.Context, level *models.InventoryLevel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys[level.SKU] {
		return fmt.Errorf("write failed for %s", level.SKU)
	}
	level.ID = f.id()
	level.CreatedAt = time.Now()
	level.UpdatedAt = level.CreatedAt
	f.levels[scopedKey(level.StoreID, level.SKU)] = *level
	return nil
}

func (f *fakeStore) UpdateInventoryLevel(_ context.Context, level *models.InventoryLevel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys[level.SKU] {
		return fmt.Errorf("write failed for %s", level.SKU)
	}
	level.UpdatedAt = time.Now()
	f.levels[scopedKey(level.StoreID, level.SKU)] = *level
	return nil
}

func (f *fakeStore) GetWarehouse(_ context.Context, storeID int64, warehouseID string) (*models.Warehouse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if wh, ok := f.warehouses[scopedKey(storeID, warehouseID)]; ok {
		cp := wh
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) InsertWarehouse(_ context.Context, wh *models.Warehouse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys[wh.WarehouseID] {
		return fmt.Errorf("write failed for %s", wh.WarehouseID)
	}
	wh.ID = f.id()
	wh.CreatedAt = time.Now()
	wh.UpdatedAt = wh.CreatedAt
	f.warehouses[scopedKey(wh.StoreID, wh.WarehouseID)] = *wh
	return nil
}

func (f *fakeStore) UpdateWarehouse(_ context.Context, wh *models.Warehouse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys[wh.WarehouseID] {
		return fmt.Errorf("write failed for %s", wh.WarehouseID)
	}
	wh.UpdatedAt = time.Now()
	f.warehouses[scopedKey(wh.StoreID, wh.WarehouseID)] = *wh
	return nil
}

func (f *fakeStore) GetInventoryLocation(_ context.Context, storeID int64, locationID string) (*models.InventoryLocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if loc, ok := f.locations[scopedKey(storeID, locationID)]; ok {
		cp := loc
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) InsertInventoryLocation(_ context.Context, loc *models.InventoryLocation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys[loc.LocationID] {
		return fmt.Errorf("write failed for %s", loc.LocationID)
	}
	loc.ID = f.id()
	loc.CreatedAt = time.Now()
	loc.UpdatedAt = loc.CreatedAt
	f.locations[scopedKey(loc.StoreID, loc.LocationID)] = *loc
	return nil
}

func (f *fakeStore) UpdateInventoryLocation(_ context.Context, loc *models.InventoryLocation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys[loc.LocationID] {
		return fmt.Errorf("write failed for %s", loc.LocationID)
	}
	loc.UpdatedAt = time.Now()
	f.locations[scopedKey(loc.StoreID, loc.LocationID)] = *loc
	return nil
}

func (f *fakeStore) UpdateProductStock(_ context.Context, storeID int64, sku string, quantity int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := scopedKey(storeID, sku)
	p, ok := f.products[key]
	if !ok {
		return false, nil
	}
	p.StockQuantity = quantity
	p.UpdatedAt = time.Now()
	f.products[key] = p
	return true, nil
}

func (f *fakeStore) addProduct(storeID int64, sku string, stock int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[scopedKey(storeID, sku)] = models.Product{
		ID: f.id(), StoreID: storeID, SKU: sku, StockQuantity: stock,
	}
}

func (f *fakeStore) product(storeID int64, sku string) models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[scopedKey(storeID, sku)]
}

func (f *fakeStore) addIntegration(storeID int64, providerType, encodedKey string, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.integrations[scopedKey(storeID, providerType)] = models.Integration{
		ID: f.id(), StoreID: storeID, ProviderType: providerType,
		APIKeyEncrypted: encodedKey, Active: active,
	}
}

func (f *fakeStore) GetActiveIntegration(_ context.Context, storeID int64, providerType string) (*models.Integration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if integration, ok := f.integrations[scopedKey(storeID, providerType)]; ok {
		cp := integration
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) InsertSyncRun(_ context.Context, run *models.SyncRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	run.ID = f.id()
	run.CreatedAt = time.Now()
	f.runs = append(f.runs, *run)
	return nil
}

func (f *fakeStore) GetRecentSyncRuns(_ context.Context, storeID int64, limit int) ([]models.SyncRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SyncRun
	for i := len(f.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.runs[i].StoreID == storeID {
			out = append(out, f.runs[i])
		}
	}
	return out, nil
}

// fakeProviderAPI returns canned records per entity type.
type fakeProviderAPI struct {
	mu            sync.Mutex
	inventory     []provider.InventoryRecord
	warehouses    []provider.WarehouseRecord
	locations     []provider.LocationRecord
	inventoryErr  error
	warehousesErr error
	locationsErr  error
	calls         int
}

func (f *fakeProviderAPI) FetchInventory(_ context.Context, _ string) ([]provider.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.inventory, f.inventoryErr
}

func (f *fakeProviderAPI) FetchWarehouses(_ context.Context, _ string) ([]provider.WarehouseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.warehouses, f.warehousesErr
}

func (f *fakeProviderAPI) FetchLocations(_ context.Context, _ string) ([]provider.LocationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.locations, f.locationsErr
}

func (f *fakeProviderAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// memLocker is an in-process Locker.
type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemLocker() *memLocker {
	return &memLocker{held: make(map[string]bool)}
}

func (l *memLocker) AcquireLock(_ context.Context, lockKey string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[lockKey] {
		return false, nil
	}
	l.held[lockKey] = true
	return true, nil
}

func (l *memLocker) ReleaseLock(_ context.Context, lockKey string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, lockKey)
	return nil
}

// fakePublisher records published completion events.
type fakePublisher struct {
	mu     sync.Mutex
	events []*models.SyncCompletedEvent
}

func (p *fakePublisher) PublishSyncCompleted(_ context.Context, event *models.SyncCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// memCache is an in-process RunCache.
type memCache struct {
	mu      sync.Mutex
	entries map[int64][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[int64][]byte)}
}

func (c *memCache) SetLatestRun(_ context.Context, storeID int64, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[storeID] = payload
	return nil
}

func (c *memCache) GetLatestRun(_ context.Context, storeID int64) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[storeID], nil
}
