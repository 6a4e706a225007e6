package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/folio-dev/portfolio-api/internal/models"
	"github.com/folio-dev/portfolio-api/internal/notify"
)

// MockDispatcher is a mock implementation of services.Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, sub models.ContactSubmission) []notify.Result {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]notify.Result)
}
