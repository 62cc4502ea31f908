package order

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"maiyer/cfg"
	"maiyer/pkg/cache"
	"maiyer/pkg/idgen"
	"maiyer/pkg/krogerclient"
	"maiyer/pkg/logger"
	"maiyer/pkg/oauth2"
	"maiyer/pkg/tasksclient"
)

// ErrNoTaskList is returned when `maiyer order` runs without a configured
// Google Tasks shopping list.
var ErrNoTaskList = errors.New("no task list configured: re-run `maiyer init` and set up Google Tasks")

const searchLimit = 5

// LineItem is one shopping-list entry matched to a catalog product.
type LineItem struct {
	Task      string `json:"task"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// Summary is the outcome of one order run. Tasks whose items were added to
// the cart are marked completed; completion may be partial on failure.
type Summary struct {
	OrderRef string     `json:"order_ref"`
	Added    []LineItem `json:"added"`
	NotFound []string   `json:"not_found"`
}

// Service pulls the shopping list, matches products at the configured
// store, fills the cart in one call and checks off the matched tasks.
type Service struct {
	config       *cfg.Config
	krogerTokens *oauth2.TokenClient
	googleTokens *oauth2.TokenClient
	krogerAPI    *krogerclient.Client
	tasksAPI     *tasksclient.Client
	cache        cache.Cache
	ttl          time.Duration
	idgen        idgen.Generator
	logger       logger.Client
}

// NewService wires the order flow. cache may be nil when no redis address
// is configured; searches then always go to the API.
func NewService(config *cfg.Config, krogerTokens, googleTokens *oauth2.TokenClient,
	krogerAPI *krogerclient.Client, tasksAPI *tasksclient.Client,
	productCache cache.Cache, generator idgen.Generator, log logger.Client) *Service {
	return &Service{
		config:       config,
		krogerTokens: krogerTokens,
		googleTokens: googleTokens,
		krogerAPI:    krogerAPI,
		tasksAPI:     tasksAPI,
		cache:        productCache,
		ttl:          time.Duration(config.CacheTTLMinutes) * time.Minute,
		idgen:        generator,
		logger:       log,
	}
}

func (s *Service) Run(ctx context.Context) (*Summary, error) {
	if s.config.Google == nil {
		return nil, ErrNoTaskList
	}

	krogerToken, err := s.krogerTokens.Refresh(ctx,
		s.config.Kroger.ClientID, s.config.Kroger.ClientSecret, s.config.Kroger.RefreshToken)
	if err != nil {
		return nil, err
	}
	googleToken, err := s.googleTokens.Refresh(ctx,
		s.config.Google.ClientID, s.config.Google.ClientSecret, s.config.Google.RefreshToken)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasksAPI.IncompleteTasks(ctx, googleToken.AccessToken, s.config.Google.TasksListID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{OrderRef: s.idgen.OrderRef()}
	if len(tasks) == 0 {
		s.logger.Info("shopping list empty", logger.Field{Key: "order_ref", Value: summary.OrderRef})
		return summary, nil
	}

	var items []krogerclient.CartItem
	var completed []string
	for _, task := range tasks {
		product, found, err := s.matchProduct(ctx, krogerToken.AccessToken, task.Title)
		if err != nil {
			return nil, err
		}
		if !found {
			summary.NotFound = append(summary.NotFound, task.Title)
			continue
		}
		items = append(items, krogerclient.CartItem{UPC: product.ProductID, Quantity: 1})
		completed = append(completed, task.ID)
		summary.Added = append(summary.Added, LineItem{
			Task:      task.Title,
			ProductID: product.ProductID,
			Name:      product.Name,
			Quantity:  1,
		})
	}

	if len(items) > 0 {
		if err := s.krogerAPI.AddToCart(ctx, krogerToken.AccessToken, items); err != nil {
			return nil, err
		}
		// Completion stops at the first failure; items already in the cart
		// and tasks already checked off stay that way.
		if err := s.tasksAPI.CompleteTasks(ctx, googleToken.AccessToken, s.config.Google.TasksListID, completed); err != nil {
			return nil, err
		}
	}

	s.logger.Info("order run finished",
		logger.Field{Key: "order_ref", Value: summary.OrderRef},
		logger.Field{Key: "added", Value: len(summary.Added)},
		logger.Field{Key: "not_found", Value: len(summary.NotFound)},
	)
	return summary, nil
}

// matchProduct picks the first in-stock search hit for a shopping-list
// entry, falling back to the first hit of any stock level.
func (s *Service) matchProduct(ctx context.Context, accessToken, term string) (krogerclient.Product, bool, error) {
	products, err := s.searchProducts(ctx, accessToken, term)
	if err != nil {
		return krogerclient.Product{}, false, err
	}
	if len(products) == 0 {
		return krogerclient.Product{}, false, nil
	}
	for _, product := range products {
		if product.InStock {
			return product, true, nil
		}
	}
	return products[0], true, nil
}

// searchProducts consults the redis cache first when one is configured.
func (s *Service) searchProducts(ctx context.Context, accessToken, term string) ([]krogerclient.Product, error) {
	if s.cache == nil {
		return s.krogerAPI.SearchProducts(ctx, accessToken, term, s.config.Kroger.StoreID, searchLimit)
	}

	key := s.cacheKey(term)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var products []krogerclient.Product
		if err := json.Unmarshal([]byte(cached), &products); err == nil {
			s.logger.Debug("product cache hit", logger.Field{Key: "term", Value: term})
			return products, nil
		}
		// Evict entries that no longer decode so they get refreshed below.
		if err := s.cache.Del(ctx, key); err != nil {
			s.logger.Warn("failed to evict cache entry", logger.Field{Key: "err", Value: err.Error()})
		}
	}

	products, err := s.krogerAPI.SearchProducts(ctx, accessToken, term, s.config.Kroger.StoreID, searchLimit)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(products); err == nil {
		if err := s.cache.Set(ctx, key, string(encoded), s.ttl); err != nil {
			s.logger.Warn("failed to cache products", logger.Field{Key: "err", Value: err.Error()})
		}
	}
	return products, nil
}

// cacheKey derives a deterministic key from the search term and store.
func (s *Service) cacheKey(term string) string {
	raw := fmt.Sprintf("product:%s:%s", s.config.Kroger.StoreID, term)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("product:search:%x", hash[:16])
}
