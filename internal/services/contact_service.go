package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/folio-dev/portfolio-api/internal/models"
	"github.com/folio-dev/portfolio-api/internal/notify"
	"github.com/folio-dev/portfolio-api/internal/validation"
	"github.com/folio-dev/portfolio-api/pkg/logger"
	"github.com/folio-dev/portfolio-api/pkg/metrics"
	"github.com/folio-dev/portfolio-api/pkg/tracing"
)

// Dispatcher relays a validated submission to the notification channels
type Dispatcher interface {
	Dispatch(ctx context.Context, sub models.ContactSubmission) []notify.Result
}

// ContactService handles contact form submissions
type ContactService struct {
	dispatcher Dispatcher
}

// NewContactService creates a new contact service instance
func NewContactService(dispatcher Dispatcher) *ContactService {
	return &ContactService{
		dispatcher: dispatcher,
	}
}

// SubmitContactForm validates the request and, only if it is valid, notifies
// every configured channel. Validation failures wrap errors.ErrInvalidInput and
// nothing is sent. A nil error with Delivered false means no channel
// acknowledged the notification.
func (s *ContactService) SubmitContactForm(ctx context.Context, req *models.ContactRequest) (*models.ContactOutcome, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.submit")
	defer span.End()

	sub, err := validation.Contact(req)
	if err != nil {
		metrics.ContactFormSubmissions.WithLabelValues("invalid").Inc()
		logger.Debug("Contact submission rejected", zap.Error(err))
		return nil, err
	}

	results := s.dispatcher.Dispatch(ctx, sub)
	outcome := &models.ContactOutcome{
		Delivered: notify.AnyDelivered(results),
		Channels:  notify.ChannelResults(results),
	}
	span.SetAttributes(
		attribute.Int("contact.channels", len(results)),
		attribute.Bool("contact.delivered", outcome.Delivered),
	)

	if !outcome.Delivered {
		metrics.ContactFormSubmissions.WithLabelValues("failed").Inc()
		logger.Error("Contact submission not delivered on any channel",
			zap.Int("channels", len(results)),
			zap.Error(errors.Join(failures(results)...)),
		)
		return outcome, nil
	}

	metrics.ContactFormSubmissions.WithLabelValues("delivered").Inc()
	logger.Info("Contact submission delivered", zap.Any("channels", outcome.Channels))
	return outcome, nil
}

func failures(results []notify.Result) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
