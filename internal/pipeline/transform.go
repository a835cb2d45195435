package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// ErrUnprocessable marks a message that will never succeed: malformed JSON or
// an invalid request. The pipeline skips it without retrying.
var ErrUnprocessable = errors.New("unprocessable message")

// Assessor runs a full risk assessment for one request.
type Assessor interface {
	Assess(ctx context.Context, req domain.AssessmentRequest) (domain.Assessment, error)
}

// AssessTransformer implements Transformer by parsing the request and running
// the assessor.
type AssessTransformer struct {
	assessor Assessor
	logger   *slog.Logger
}

// NewTransformer creates an AssessTransformer.
func NewTransformer(assessor Assessor, logger *slog.Logger) *AssessTransformer {
	return &AssessTransformer{
		assessor: assessor,
		logger:   logger,
	}
}

func (t *AssessTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.Assessment, error) {
	req, err := domain.ParseAssessmentRequest(raw)
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("%w: %w", ErrUnprocessable, err)
	}

	a, err := t.assessor.Assess(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			return domain.Assessment{}, fmt.Errorf("%w: %w", ErrUnprocessable, err)
		}
		return domain.Assessment{}, err
	}
	t.logger.Debug("request assessed",
		"request_id", a.RequestID,
		"location", domain.LocationKey(a.Geo),
		"mean_aal", a.MeanAAL,
		"data_source", a.DataSource,
	)
	return a, nil
}
