package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider serves a paginated collection whose page sizes are fixed up
// front. Requests beyond the configured pages return an empty batch.
func fakeProvider(t *testing.T, envelopeKey string, pageSizes []int, requests *int32) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)

		assert.Equal(t, "test-api-key", r.Header.Get("X-Api-Key"))

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		require.NoError(t, err)
		require.NotEmpty(t, r.URL.Query().Get("page_size"))

		var count int
		if page >= 1 && page <= len(pageSizes) {
			count = pageSizes[page-1]
		}

		records := make([]map[string]interface{}, count)
		for i := range records {
			records[i] = map[string]interface{}{
				"sku":       fmt.Sprintf("SKU-%d-%d", page, i),
				"id":        fmt.Sprintf("ID-%d-%d", page, i),
				"available": i,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{envelopeKey: records})
	}))
}

func TestFetchInventoryStopsOnShortPage(t *testing.T) {
	var requests int32
	srv := fakeProvider(t, "inventory", []int{100, 100, 37}, &requests)
	defer srv.Close()

	client := NewClient(srv.URL, 100, 5*time.Second)

	records, err := client.FetchInventory(context.Background(), "test-api-key")
	require.NoError(t, err)

	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
	assert.Len(t, records, 237)
}

func TestFetchInventoryStopsOnEmptyPage(t *testing.T) {
	var requests int32
	srv := fakeProvider(t, "inventory", []int{100, 100, 100, 0}, &requests)
	defer srv.Close()

	client := NewClient(srv.URL, 100, 5*time.Second)

	records, err := client.FetchInventory(context.Background(), "test-api-key")
	require.NoError(t, err)

	assert.Equal(t, int32(4), atomic.LoadInt32(&requests))
	assert.Len(t, records, 300)
}

func TestFetchSinglePartialPage(t *testing.T) {
	var requests int32
	srv := fakeProvider(t, "inventory", []int{12}, &requests)
	defer srv.Close()

	client := NewClient(srv.URL, 100, 5*time.Second)

	records, err := client.FetchInventory(context.Background(), "test-api-key")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
	assert.Len(t, records, 12)
}

func TestFetchWarehousesUsesOwnEnvelope(t *testing.T) {
	var requests int32
	srv := fakeProvider(t, "warehouses", []int{2}, &requests)
	defer srv.Close()

	client := NewClient(srv.URL, 100, 5*time.Second)

	records, err := client.FetchWarehouses(context.Background(), "test-api-key")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ID-1-0", records[0].WarehouseID)
}

func TestFetchMapsProviderStatuses(t *testing.T) {
	tests := []struct {
		status int
		hint   string
	}{
		{http.StatusUnauthorized, "invalid API key"},
		{http.StatusForbidden, "access forbidden, check the integration permissions"},
		{http.StatusTooManyRequests, "rate limited by provider, try again later"},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		client := NewClient(srv.URL, 100, 5*time.Second)
		_, err := client.FetchInventory(context.Background(), "test-api-key")

		var perr *Error
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, tt.status, perr.StatusCode)
		assert.Equal(t, tt.hint, perr.Message)

		srv.Close()
	}
}

func TestFetchReturnsPartialRecordsOnPageFailure(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		records := make([]map[string]interface{}, 100)
		for i := range records {
			records[i] = map[string]interface{}{"sku": fmt.Sprintf("SKU-%d", i)}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"inventory": records})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 100, 5*time.Second)

	records, err := client.FetchInventory(context.Background(), "test-api-key")
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusInternalServerError, perr.StatusCode)
	assert.Len(t, records, 100)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
}

func TestFetchNetworkErrorBecomesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, 100, time.Second)

	_, err := client.FetchInventory(context.Background(), "test-api-key")
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 0, perr.StatusCode)
}
