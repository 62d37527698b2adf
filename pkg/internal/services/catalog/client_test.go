package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/services/catalog"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "default", r.Header.Get("Store"))

		var req struct {
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, jsoniter.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		if req.Variables["urlKey"] != "blue-kettle" {
			_, _ = w.Write([]byte(`{"data": {"products": {"items": []}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data": {"products": {"items": [{
			"name": "Blue Kettle",
			"url_key": "blue-kettle",
			"image": {"url": "https://cdn.example.com/kettle.png"},
			"price_range": {"minimum_price": {"final_price": {"currency": "VND", "value": 450000}}},
			"daily_sale": {"sale_price": 399000}
		}]}}}`))
	}))
}

func TestClient_Snapshot(t *testing.T) {
	server := newCatalogServer(t)
	defer server.Close()

	client := catalog.NewClient(server.URL, "default", "https://shop.example.com/", time.Second)

	product, err := client.Snapshot(context.Background(), "blue-kettle")
	require.NoError(t, err)
	assert.Equal(t, "Blue Kettle", product.Name)
	assert.Equal(t, "blue-kettle", product.URLKey)
	assert.Equal(t, "https://cdn.example.com/kettle.png", product.ImageURL)
	assert.Equal(t, 450000.0, product.Price)
	assert.Equal(t, "VND", product.Currency)
	require.NotNil(t, product.SalePrice)
	assert.Equal(t, 399000.0, *product.SalePrice)
	require.NotNil(t, product.ProductURL)
	assert.Equal(t, "https://shop.example.com/blue-kettle.html", *product.ProductURL)
}

func TestClient_SnapshotMissing(t *testing.T) {
	server := newCatalogServer(t)
	defer server.Close()

	client := catalog.NewClient(server.URL, "default", "", time.Second)
	_, err := client.Snapshot(context.Background(), "red-kettle")
	assert.Error(t, err)
}
