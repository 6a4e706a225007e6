package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/folio-dev/portfolio-api/internal/middleware"
	"github.com/folio-dev/portfolio-api/internal/models"
	"github.com/folio-dev/portfolio-api/internal/notify"
	"github.com/folio-dev/portfolio-api/internal/services"
	pkgerrors "github.com/folio-dev/portfolio-api/pkg/errors"
)

type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) SubmitContactForm(ctx context.Context, req *models.ContactRequest) (*models.ContactOutcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContactOutcome), args.Error(1)
}

// stubChannel delivers or fails without touching the network.
type stubChannel struct {
	name  notify.ChannelName
	err   error
	calls int
}

func (s *stubChannel) Name() notify.ChannelName { return s.name }

func (s *stubChannel) Deliver(context.Context, models.ContactSubmission) error {
	s.calls++
	return s.err
}

func newContactRouter(service services.ContactServiceInterface) *gin.Engine {
	router := gin.New()
	router.Any("/api/contact", middleware.BodySizeLimitMiddleware(1024), NewContactHandler(service).HandleContact)
	return router
}

func newRealContactRouter(channels ...notify.Channel) *gin.Engine {
	dispatcher := notify.NewDispatcher(time.Second, channels...)
	return newContactRouter(services.NewContactService(dispatcher))
}

func serveContact(router *gin.Engine, method, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func assertCORSHeaders(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET,OPTIONS,PATCH,DELETE,POST,PUT", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
}

const validBody = `{"name":"Ada","email":"ada@example.com","message":"Hello"}`

func TestContactHandler_Preflight(t *testing.T) {
	service := new(MockContactService)
	router := newContactRouter(service)

	for _, body := range []string{"", validBody, "not json"} {
		w := serveContact(router, http.MethodOptions, body)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
		assertCORSHeaders(t, w)
	}
	service.AssertNotCalled(t, "SubmitContactForm", mock.Anything, mock.Anything)
}

func TestContactHandler_MethodNotAllowed(t *testing.T) {
	service := new(MockContactService)
	router := newContactRouter(service)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			w := serveContact(router, method, validBody)

			assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
			assert.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String())
			assertCORSHeaders(t, w)
		})
	}
	service.AssertNotCalled(t, "SubmitContactForm", mock.Anything, mock.Anything)
}

func TestContactHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		expected string
	}{
		{name: "missing", err: pkgerrors.ErrMissingFields, status: http.StatusBadRequest, expected: "Missing required fields"},
		{name: "too long", err: pkgerrors.ErrInputTooLong, status: http.StatusBadRequest, expected: "Input too long"},
		{name: "bad email", err: pkgerrors.ErrInvalidEmail, status: http.StatusBadRequest, expected: "Invalid email format"},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError, expected: "Failed to send message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockContactService)
			service.On("SubmitContactForm", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			w := serveContact(newContactRouter(service), http.MethodPost, validBody)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.expected+`"}`, w.Body.String())
			assertCORSHeaders(t, w)
			service.AssertExpectations(t)
		})
	}
}

func TestContactHandler_PassesDecodedRequest(t *testing.T) {
	service := new(MockContactService)
	service.On("SubmitContactForm", mock.Anything, &models.ContactRequest{
		Name:    "Ada",
		Email:   "ada@example.com",
		Message: "Hello",
	}).Return(&models.ContactOutcome{Delivered: true}, nil).Once()

	w := serveContact(newContactRouter(service), http.MethodPost, validBody)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Message sent successfully"}`, w.Body.String())
	service.AssertExpectations(t)
}

func TestContactHandler_Validation(t *testing.T) {
	long := func(n int) string { return strings.Repeat("a", n) }

	tests := []struct {
		name     string
		body     string
		status   int
		expected string
	}{
		{name: "empty body", body: "", status: http.StatusBadRequest, expected: `{"error":"Missing required fields"}`},
		{name: "malformed json", body: "{not json", status: http.StatusBadRequest, expected: `{"error":"Missing required fields"}`},
		{name: "numeric name discards body", body: `{"name":123,"email":"a@b.co","message":"hi"}`, status: http.StatusBadRequest, expected: `{"error":"Missing required fields"}`},
		{name: "missing name", body: `{"email":"a@b.co","message":"hi"}`, status: http.StatusBadRequest, expected: `{"error":"Missing required fields"}`},
		{name: "empty message", body: `{"name":"A","email":"a@b.co","message":""}`, status: http.StatusBadRequest, expected: `{"error":"Missing required fields"}`},
		{
			name:     "missing field wins over bad email",
			body:     `{"name":"A","email":"nope"}`,
			status:   http.StatusBadRequest,
			expected: `{"error":"Missing required fields"}`,
		},
		{
			name:     "name 101",
			body:     `{"name":"` + long(101) + `","email":"a@b.co","message":"hi"}`,
			status:   http.StatusBadRequest,
			expected: `{"error":"Input too long"}`,
		},
		{
			name:     "email 101",
			body:     `{"name":"A","email":"` + long(96) + `@b.co","message":"hi"}`,
			status:   http.StatusBadRequest,
			expected: `{"error":"Input too long"}`,
		},
		{
			name:     "name 51 emoji is 102 units",
			body:     `{"name":"` + strings.Repeat("😀", 51) + `","email":"a@b.co","message":"hi"}`,
			status:   http.StatusBadRequest,
			expected: `{"error":"Input too long"}`,
		},
		{
			name:     "length wins over bad email",
			body:     `{"name":"` + long(101) + `","email":"nope","message":"hi"}`,
			status:   http.StatusBadRequest,
			expected: `{"error":"Input too long"}`,
		},
		{name: "no at sign", body: `{"name":"A","email":"no-at-sign.com","message":"hi"}`, status: http.StatusBadRequest, expected: `{"error":"Invalid email format"}`},
		{name: "no tld", body: `{"name":"A","email":"a@b","message":"hi"}`, status: http.StatusBadRequest, expected: `{"error":"Invalid email format"}`},
		{name: "trailing space", body: `{"name":"A","email":"a@b.c ","message":"hi"}`, status: http.StatusBadRequest, expected: `{"error":"Invalid email format"}`},
		{
			name:     "boundaries pass",
			body:     `{"name":"` + long(100) + `","email":"` + long(95) + `@b.co","message":"hi"}`,
			status:   http.StatusOK,
			expected: `{"success":true,"message":"Message sent successfully"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &stubChannel{name: notify.ChannelEmail}
			router := newRealContactRouter(ch)

			w := serveContact(router, http.MethodPost, tt.body)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.expected, w.Body.String())
			assertCORSHeaders(t, w)
			if tt.status == http.StatusBadRequest {
				assert.Zero(t, ch.calls, "invalid input must not reach any channel")
			}
		})
	}
}

func TestContactHandler_MessageBoundary(t *testing.T) {
	ch := &stubChannel{name: notify.ChannelEmail}
	dispatcher := notify.NewDispatcher(time.Second, ch)
	router := gin.New()
	router.Any("/api/contact", NewContactHandler(services.NewContactService(dispatcher)).HandleContact)

	ok := serveContact(router, http.MethodPost, `{"name":"A","email":"a@b.co","message":"`+strings.Repeat("m", 5000)+`"}`)
	assert.Equal(t, http.StatusOK, ok.Code)

	tooLong := serveContact(router, http.MethodPost, `{"name":"A","email":"a@b.co","message":"`+strings.Repeat("m", 5001)+`"}`)
	assert.Equal(t, http.StatusBadRequest, tooLong.Code)
	assert.JSONEq(t, `{"error":"Input too long"}`, tooLong.Body.String())

	assert.Equal(t, 1, ch.calls)
}

func TestContactHandler_DeliveryOutcomes(t *testing.T) {
	down := errors.New("network unreachable")

	tests := []struct {
		name     string
		channels []notify.Channel
		status   int
		expected string
	}{
		{
			name: "both succeed",
			channels: []notify.Channel{
				&stubChannel{name: notify.ChannelChat},
				&stubChannel{name: notify.ChannelEmail},
			},
			status:   http.StatusOK,
			expected: `{"success":true,"message":"Message sent successfully"}`,
		},
		{
			name: "one fails",
			channels: []notify.Channel{
				&stubChannel{name: notify.ChannelChat, err: down},
				&stubChannel{name: notify.ChannelEmail},
			},
			status:   http.StatusOK,
			expected: `{"success":true,"message":"Message sent successfully"}`,
		},
		{
			name: "both fail",
			channels: []notify.Channel{
				&stubChannel{name: notify.ChannelChat, err: down},
				&stubChannel{name: notify.ChannelEmail, err: down},
			},
			status:   http.StatusInternalServerError,
			expected: `{"error":"Failed to send message"}`,
		},
		{
			name:     "nothing configured",
			channels: nil,
			status:   http.StatusInternalServerError,
			expected: `{"error":"Failed to send message"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveContact(newRealContactRouter(tt.channels...), http.MethodPost, validBody)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.expected, w.Body.String())
			assert.NotContains(t, w.Body.String(), down.Error())
			assertCORSHeaders(t, w)
		})
	}
}

func TestContactHandler_BodyTooLarge(t *testing.T) {
	service := new(MockContactService)
	router := newContactRouter(service)

	body := `{"name":"A","email":"a@b.co","message":"` + strings.Repeat("x", 2048) + `"}`
	w := serveContact(router, http.MethodPost, body)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"error":"Request body too large"}`, w.Body.String())
	assertCORSHeaders(t, w)
	service.AssertNotCalled(t, "SubmitContactForm", mock.Anything, mock.Anything)
}
