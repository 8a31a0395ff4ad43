package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/muse-movies/muse/internal/engine"
	"github.com/muse-movies/muse/internal/prefs"
	"github.com/muse-movies/muse/internal/ratings"
	"github.com/muse-movies/muse/internal/resolve"
	apperrors "github.com/muse-movies/muse/pkg/errors"
	"github.com/muse-movies/muse/pkg/metrics"
)

// ModelProvider trains the preference model lazily and caches it until a
// new rating marks it stale. Training failure from too little data is
// expected and downgrades the request to pure content ranking.
type ModelProvider struct {
	store   ratings.Store
	cfg     prefs.Config
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu    sync.Mutex
	model *prefs.Model
	stale bool
}

func NewModelProvider(store ratings.Store, cfg prefs.Config, m *metrics.Metrics) *ModelProvider {
	return &ModelProvider{
		store:   store,
		cfg:     cfg,
		metrics: m,
		logger:  slog.Default().With("component", "model-provider"),
		stale:   true,
	}
}

// Model returns the trained preference model, or nil when personalization
// was not requested or cannot be trained.
func (p *ModelProvider) Model(ctx context.Context, requested bool, eng *engine.Engine) *prefs.Model {
	if !requested {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.stale {
		return p.model
	}

	events, err := p.store.All(ctx)
	if err != nil {
		p.logger.Error("failed to read rating log", "error", err)
		p.observeFit("error")
		return nil
	}
	model, err := prefs.Fit(events, eng.Snapshot().Titles(), resolve.New(0), p.cfg)
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientData) {
			p.logger.Info("preference model unavailable, falling back to content ranking", "reason", err)
			p.observeFit("insufficient_data")
		} else {
			p.logger.Error("preference model training failed", "error", err)
			p.observeFit("error")
		}
		p.model = nil
		p.stale = false
		return nil
	}
	p.logger.Info("preference model trained", "ratings", len(events))
	p.observeFit("ok")
	p.model = model
	p.stale = false
	return model
}

// MarkStale forces retraining on the next personalized request.
func (p *ModelProvider) MarkStale() {
	p.mu.Lock()
	p.stale = true
	p.mu.Unlock()
}

func (p *ModelProvider) observeFit(status string) {
	if p.metrics != nil {
		p.metrics.PreferenceFitsTotal.WithLabelValues(status).Inc()
	}
}
