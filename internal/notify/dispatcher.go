package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/folio-dev/portfolio-api/internal/models"
	"github.com/folio-dev/portfolio-api/pkg/logger"
	"github.com/folio-dev/portfolio-api/pkg/metrics"
	"github.com/folio-dev/portfolio-api/pkg/tracing"
)

// DefaultChannelTimeout bounds a single channel attempt when none is configured
const DefaultChannelTimeout = 5 * time.Second

// Dispatcher fans a submission out to every channel concurrently and waits for
// all of them to settle. It never returns an error: each failure, timeout or
// panic becomes a failed Result for that channel.
type Dispatcher struct {
	channels []Channel
	timeout  time.Duration
}

// NewDispatcher creates a dispatcher over the given active channels
func NewDispatcher(timeout time.Duration, channels ...Channel) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultChannelTimeout
	}
	return &Dispatcher{
		channels: channels,
		timeout:  timeout,
	}
}

// Channels lists the active channel names in dispatch order
func (d *Dispatcher) Channels() []ChannelName {
	names := make([]ChannelName, 0, len(d.channels))
	for _, ch := range d.channels {
		names = append(names, ch.Name())
	}
	return names
}

// Dispatch attempts every channel once and returns one Result per channel, in
// channel order. With no channels it returns an empty slice.
func (d *Dispatcher) Dispatch(ctx context.Context, sub models.ContactSubmission) []Result {
	results := make([]Result, len(d.channels))

	var wg conc.WaitGroup
	for i, ch := range d.channels {
		wg.Go(func() {
			results[i] = d.attempt(ctx, ch, sub)
		})
	}
	wg.Wait()

	return results
}

func (d *Dispatcher) attempt(ctx context.Context, ch Channel, sub models.ContactSubmission) Result {
	name := ch.Name()
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "notify."+string(name), attribute.String("notify.channel", string(name)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.deliverWithDeadline(ctx, ch, sub)

	duration := metrics.MeasureDuration(start)
	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
	}
	metrics.NotificationDuration.WithLabelValues(string(name), status).Observe(duration)
	metrics.NotificationDeliveries.WithLabelValues(string(name), status).Inc()
	logger.LogAPICall(ctx, string(name), "deliver", status, duration, zap.Error(err))

	return Result{Channel: name, Err: err}
}

// deliverWithDeadline returns when the channel finishes or the deadline passes,
// whichever is first, so a channel that ignores its context cannot hold up the
// response.
func (d *Dispatcher) deliverWithDeadline(ctx context.Context, ch Channel, sub models.ContactSubmission) error {
	done := make(chan error, 1)
	go func() {
		done <- deliverSafely(ctx, ch, sub)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		select {
		case err := <-done:
			return err
		default:
		}
		return fmt.Errorf("%s delivery: %w", ch.Name(), ctx.Err())
	}
}

func deliverSafely(ctx context.Context, ch Channel, sub models.ContactSubmission) (err error) {
	var pc panics.Catcher
	pc.Try(func() {
		err = ch.Deliver(ctx, sub)
	})
	if r := pc.Recovered(); r != nil {
		return fmt.Errorf("%s channel panicked: %w", ch.Name(), r.AsError())
	}
	return err
}
