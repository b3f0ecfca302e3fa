package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/listenupapp/crate-server/internal/enrich"
	domainerrors "github.com/listenupapp/crate-server/internal/errors"
)

// EnrichService runs Last.fm enrichment on demand.
type EnrichService struct {
	pipeline *enrich.Pipeline
	enabled  bool
	logger   *slog.Logger
}

// NewEnrichService creates an enrichment service. With enabled false
// (no Last.fm API key) every run is refused.
func NewEnrichService(pipeline *enrich.Pipeline, enabled bool, logger *slog.Logger) *EnrichService {
	return &EnrichService{
		pipeline: pipeline,
		enabled:  enabled,
		logger:   logger,
	}
}

// Enabled reports whether runs are accepted.
func (s *EnrichService) Enabled() bool {
	return s.enabled
}

// EnrichRequest selects how many stale artists to process.
type EnrichRequest struct {
	Limit int `json:"limit,omitempty" validate:"gte=0,lte=10000" doc:"Artists to enrich, 0 for all stale artists"`
}

// Run enriches up to req.Limit artists. A canceled run returns the partial
// report alongside the error.
func (s *EnrichService) Run(ctx context.Context, req EnrichRequest) (*enrich.Report, error) {
	if !s.enabled {
		return nil, domainerrors.Conflict("last.fm is not configured; set LASTFM_API_KEY")
	}
	if req.Limit < 0 {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"limit": "must be 0 or greater"})
	}

	report, err := s.pipeline.Run(ctx, req.Limit)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return report, err
		}
		s.logger.Error("enrichment aborted", "error", err)
		return report, domainerrors.Internal("enrichment failed").WithCause(err)
	}
	return report, nil
}
