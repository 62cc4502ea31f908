package order

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maiyer/cfg"
	"maiyer/pkg/cache"
	"maiyer/pkg/idgen"
	"maiyer/pkg/krogerclient"
	"maiyer/pkg/logger"
	"maiyer/pkg/oauth2"
	"maiyer/pkg/tasksclient"
)

func testLogger() logger.Client {
	return logger.NewWithWriter("production", io.Discard)
}

type fixture struct {
	service      *Service
	productHits  *atomic.Int64
	cartItems    *[]krogerclient.CartItem
	patchedTasks *[]string
}

func newFixture(t *testing.T, productCache cache.Cache) fixture {
	t.Helper()

	krogerTokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		_, _ = w.Write([]byte(`{"access_token":"fresh-k"}`))
	}))
	t.Cleanup(krogerTokenSrv.Close)

	googleTokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"fresh-g"}`))
	}))
	t.Cleanup(googleTokenSrv.Close)

	productHits := &atomic.Int64{}
	cartItems := &[]krogerclient.CartItem{}

	krogerMux := http.NewServeMux()
	krogerMux.HandleFunc("/v1/products", func(w http.ResponseWriter, r *http.Request) {
		productHits.Add(1)
		assert.Equal(t, "Bearer fresh-k", r.Header.Get("Authorization"))
		assert.Equal(t, "70100153", r.URL.Query().Get("filter.locationId"))

		if r.URL.Query().Get("filter.term") == "unobtainium" {
			_, _ = w.Write([]byte(`{"data":[]}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{
					"productId":   "0001111041700",
					"description": "Whole Milk",
					"items": []map[string]any{
						{"inventory": map[string]any{"stockLevel": "HIGH"}},
					},
				},
			},
		})
	})
	krogerMux.HandleFunc("/v1/cart/add", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Items []krogerclient.CartItem `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		*cartItems = append(*cartItems, payload.Items...)
		w.WriteHeader(http.StatusNoContent)
	})
	krogerSrv := httptest.NewServer(krogerMux)
	t.Cleanup(krogerSrv.Close)

	patchedTasks := &[]string{}
	tasksMux := http.NewServeMux()
	tasksMux.HandleFunc("GET /lists/list-1/tasks", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer fresh-g", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{
				{"id": "t1", "title": "milk", "status": "needsAction"},
				{"id": "t2", "title": "unobtainium", "status": "needsAction"},
			},
		})
	})
	tasksMux.HandleFunc("PATCH /lists/list-1/tasks/{task}", func(w http.ResponseWriter, r *http.Request) {
		*patchedTasks = append(*patchedTasks, r.PathValue("task"))
	})
	tasksSrv := httptest.NewServer(tasksMux)
	t.Cleanup(tasksSrv.Close)

	config := &cfg.Config{
		AppEnv: "development",
		Kroger: cfg.KrogerSettings{
			ClientID:     "id",
			ClientSecret: "secret",
			RefreshToken: "k-refresh",
			StoreID:      "70100153",
		},
		Google: &cfg.GoogleSettings{
			ClientID:     "g-id",
			ClientSecret: "g-secret",
			RefreshToken: "g-refresh",
			TasksListID:  "list-1",
		},
		CacheTTLMinutes: 15,
	}

	krogerProvider := oauth2.Provider{Name: "kroger", TokenURL: krogerTokenSrv.URL, AuthStyle: oauth2.AuthStyleBasic}
	googleProvider := oauth2.Provider{Name: "google", TokenURL: googleTokenSrv.URL, AuthStyle: oauth2.AuthStyleForm}

	generator, err := idgen.NewSnowflakeGenerator(1)
	require.NoError(t, err)

	service := NewService(config,
		oauth2.NewTokenClient(http.DefaultClient, krogerProvider, testLogger()),
		oauth2.NewTokenClient(http.DefaultClient, googleProvider, testLogger()),
		krogerclient.New(http.DefaultClient, krogerSrv.URL, testLogger()),
		tasksclient.New(http.DefaultClient, tasksSrv.URL, testLogger()),
		productCache, generator, testLogger())

	return fixture{service: service, productHits: productHits, cartItems: cartItems, patchedTasks: patchedTasks}
}

func TestRun_FillsCartAndCompletesTasks(t *testing.T) {
	f := newFixture(t, nil)

	summary, err := f.service.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, summary.OrderRef)
	require.Len(t, summary.Added, 1)
	assert.Equal(t, "milk", summary.Added[0].Task)
	assert.Equal(t, "0001111041700", summary.Added[0].ProductID)
	assert.Equal(t, []string{"unobtainium"}, summary.NotFound)

	require.Len(t, *f.cartItems, 1)
	assert.Equal(t, "0001111041700", (*f.cartItems)[0].UPC)

	// Only the matched task gets checked off.
	assert.Equal(t, []string{"t1"}, *f.patchedTasks)
}

func TestRun_SecondRunServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	f := newFixture(t, cache.NewRedisCache(mr.Addr()))

	_, err := f.service.Run(context.Background())
	require.NoError(t, err)
	firstHits := f.productHits.Load()

	_, err = f.service.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, firstHits, f.productHits.Load(), "second run must not hit the product API")
}

func TestRun_CorruptCacheEntryEvictedAndRefetched(t *testing.T) {
	mr := miniredis.RunT(t)
	f := newFixture(t, cache.NewRedisCache(mr.Addr()))

	require.NoError(t, mr.Set(f.service.cacheKey("milk"), "{not json"))

	_, err := f.service.Run(context.Background())
	require.NoError(t, err)

	assert.Positive(t, f.productHits.Load())

	// The bad entry was replaced by a decodable one.
	cached, err := mr.Get(f.service.cacheKey("milk"))
	require.NoError(t, err)
	var products []krogerclient.Product
	require.NoError(t, json.Unmarshal([]byte(cached), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "0001111041700", products[0].ProductID)
}

func TestRun_NoTaskListConfigured(t *testing.T) {
	f := newFixture(t, nil)
	f.service.config.Google = nil

	_, err := f.service.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoTaskList)
}
