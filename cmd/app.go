package main

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/monitoring"
	"github.com/sells-group/intake-cli/internal/review"
	"github.com/sells-group/intake-cli/internal/service"
	"github.com/sells-group/intake-cli/internal/source"
	"github.com/sells-group/intake-cli/internal/store"
	anthropicpkg "github.com/sells-group/intake-cli/pkg/anthropic"
	sfpkg "github.com/sells-group/intake-cli/pkg/salesforce"
)

// appEnv holds the store and the service built on it.
type appEnv struct {
	Store   store.Store
	Service *service.Service
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// Queue returns a review queue over the service.
func (e *appEnv) Queue() *review.Queue {
	return review.NewQueue(e.Service, review.WithBulkLimit(cfg.Review.BulkLimit))
}

// Collector returns a queue health collector over the store.
func (e *appEnv) Collector() *monitoring.Collector {
	return monitoring.NewCollector(e.Store, monitoring.ThresholdsFrom(cfg.Monitoring))
}

// initApp validates config for mode, opens and migrates the store, and wires
// Salesforce and refresh when they are configured. Callers should defer
// env.Close().
func initApp(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	opts := []service.Option{service.WithRefresher(initRefresher())}

	sf, err := initSalesforce()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if sf != nil {
		opts = append(opts, service.WithSalesforce(sf, service.PromotionConfig{
			StageName:  cfg.Salesforce.StageName,
			LeadSource: cfg.Salesforce.LeadSource,
			CloseDays:  cfg.Salesforce.CloseDays,
		}))
		zap.L().Info("salesforce promotion enabled", zap.String("username", cfg.Salesforce.Username))
	} else {
		zap.L().Debug("INTAKE_SALESFORCE_CLIENT_ID not set, promotion mints local opportunity ids")
	}

	return &appEnv{Store: st, Service: service.New(st, opts...)}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "intake.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initSalesforce returns nil when Salesforce is not configured.
func initSalesforce() (sfpkg.Client, error) {
	if !cfg.Salesforce.Enabled() {
		return nil, nil
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	return sfpkg.Connect(sfpkg.Creds{
		LoginURL:   cfg.Salesforce.LoginURL,
		Username:   cfg.Salesforce.Username,
		ClientID:   cfg.Salesforce.ClientID,
		PrivateKey: string(pemData),
	}, sfpkg.WithRateLimit(cfg.Salesforce.RateLimit))
}

// initRefresher fetches source pages over HTTP. Extraction uses Claude when
// an Anthropic key is set and page metadata otherwise.
func initRefresher() *source.Refresher {
	fetcher := source.NewHTTPFetcher(source.HTTPOptions{
		UserAgent:   cfg.Source.UserAgent,
		Timeout:     time.Duration(cfg.Source.TimeoutSecs) * time.Second,
		MaxRetries:  cfg.Source.MaxRetries,
		RatePerHost: cfg.Source.RateLimit,
	})

	var extractor source.Extractor = source.MetaExtractor{}
	if cfg.Anthropic.Key != "" {
		client := anthropicpkg.NewClient(cfg.Anthropic.Key)
		extractor = source.NewAIExtractor(client, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
		zap.L().Info("ai extraction enabled for refresh", zap.String("model", cfg.Anthropic.Model))
	}
	return source.NewRefresher(fetcher, extractor)
}
