package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"luxe-booking/internal/booking"
	"luxe-booking/internal/handler"
	"luxe-booking/internal/mocks"
	"luxe-booking/internal/model"
	"luxe-booking/internal/service"
	apperrors "luxe-booking/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupReservationRouter(svc *mocks.ReservationServiceMock) http.Handler {
	router := newTestRouter()
	handler.NewReservationHandler(svc).RegisterRoutes(router)
	return router
}

func reservationRequest() model.ReservationRequest {
	return model.ReservationRequest{
		EventID: uuid.New(),
		Lines:   []model.ReservationLine{{OfferingID: uuid.New(), Quantity: 2}},
		Contact: model.ContactInfo{Name: "Ada", Email: "ada@example.com", Phone: "555-0100"},
	}
}

func TestSubmitReservation(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := &mocks.ReservationServiceMock{}
		router := setupReservationRouter(svc)
		svc.On("SubmitReservation", mock.Anything, mock.Anything).Return(&model.Reservation{
			Code:        "LX-1A2B3C4D",
			Status:      model.ReservationStatusPending,
			TotalAmount: decimal.NewFromInt(300),
		}, nil).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONHTTPRequest(http.MethodPost, "/api/v1/reservations", reservationRequest()))

		assert.Equal(t, http.StatusAccepted, w.Code)
		var data handler.SubmitReservationResponse
		env := decodeEnvelope(t, w, &data)
		assert.True(t, env.Success)
		assert.Equal(t, "LX-1A2B3C4D", data.ReservationCode)
		assert.Equal(t, "300.00", data.TotalAmount)
		svc.AssertExpectations(t)
	})

	t.Run("Failed - Invalid JSON", func(t *testing.T) {
		svc := &mocks.ReservationServiceMock{}
		router := setupReservationRouter(svc)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONHTTPRequest(http.MethodPost, "/api/v1/reservations", InvalidJSON))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "SubmitReservation", mock.Anything, mock.Anything)
	})

	t.Run("Failed - Validation", func(t *testing.T) {
		svc := &mocks.ReservationServiceMock{}
		router := setupReservationRouter(svc)
		svc.On("SubmitReservation", mock.Anything, mock.Anything).Return(nil, &service.ValidationError{
			Fields: booking.ValidationErrors{"email": "Email is required"},
		}).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONHTTPRequest(http.MethodPost, "/api/v1/reservations", reservationRequest()))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decodeEnvelope(t, w, nil)
		assert.False(t, env.Success)
		assert.Equal(t, "Email is required", env.Fields["email"])
	})

	statusCases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"Sold out", apperrors.ErrInsufficientStock, http.StatusConflict, "Not enough tickets available"},
		{"Sales closed", apperrors.ErrSalesClosed, http.StatusConflict, "Ticket sales are not open"},
		{"Too many", apperrors.ErrExceedsMaxPerOrder, http.StatusBadRequest, "Too many tickets in one order"},
		{"Event missing", apperrors.ErrEventNotFound, http.StatusNotFound, "Event not found"},
		{"Unexpected", apperrors.ErrInternalServerError, http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range statusCases {
		t.Run("Failed - "+tc.name, func(t *testing.T) {
			svc := &mocks.ReservationServiceMock{}
			router := setupReservationRouter(svc)
			svc.On("SubmitReservation", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			w := httptest.NewRecorder()
			router.ServeHTTP(w, createJSONHTTPRequest(http.MethodPost, "/api/v1/reservations", reservationRequest()))

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.message, decodeEnvelope(t, w, nil).Error)
		})
	}
}

func TestSubmitVIPReservation(t *testing.T) {
	svc := &mocks.ReservationServiceMock{}
	router := setupReservationRouter(svc)
	tierID := uuid.New()
	svc.On("SubmitVIPReservation", mock.Anything, mock.MatchedBy(func(req model.VIPReservationRequest) bool {
		return req.TierID == tierID && req.GuestCount == 3
	})).Return(nil, apperrors.ErrTierFull).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, createJSONHTTPRequest(http.MethodPost, "/api/v1/vip-reservations", model.VIPReservationRequest{
		TierID:     tierID,
		GuestCount: 3,
		Contact:    model.ContactInfo{Name: "Ada", Email: "ada@example.com", Phone: "555-0100"},
	}))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "This VIP experience is fully booked", decodeEnvelope(t, w, nil).Error)
	svc.AssertExpectations(t)
}

func TestReservationStatusTransitions(t *testing.T) {
	t.Run("Confirm", func(t *testing.T) {
		svc := &mocks.ReservationServiceMock{}
		router := setupReservationRouter(svc)
		svc.On("ConfirmReservation", mock.Anything, "LX-AAAA0000").
			Return(&model.Reservation{Code: "LX-AAAA0000", Status: model.ReservationStatusConfirmed}, nil).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/reservations/LX-AAAA0000/confirm", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var got model.Reservation
		decodeEnvelope(t, w, &got)
		assert.Equal(t, model.ReservationStatusConfirmed, got.Status)
	})

	t.Run("Cancel twice", func(t *testing.T) {
		svc := &mocks.ReservationServiceMock{}
		router := setupReservationRouter(svc)
		svc.On("CancelReservation", mock.Anything, "LX-AAAA0000").Return(nil, apperrors.ErrInvalidReservationStatus).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/reservations/LX-AAAA0000/cancel", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Get missing", func(t *testing.T) {
		svc := &mocks.ReservationServiceMock{}
		router := setupReservationRouter(svc)
		svc.On("GetReservation", mock.Anything, "LX-NOPE0000").Return(nil, apperrors.ErrReservationNotFound).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reservations/LX-NOPE0000", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListReservations_InvalidEventID(t *testing.T) {
	svc := &mocks.ReservationServiceMock{}
	router := setupReservationRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/events/not-a-uuid/reservations", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ListReservations", mock.Anything, mock.Anything)
}
