package booking

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aboragab2030/barada-booking-server/pkg/types"
)

func setupTestRouter() (*mux.Router, *Service, *MockBookingRepository) {
	service, mockRepo := setupTestService()
	router := mux.NewRouter()
	service.setupRoutes(router)
	return router, service, mockRepo
}

func staffToken(t *testing.T, service *Service) string {
	t.Helper()
	tv := NewTokenValidator(service.config.JWT.SecretKey, service.config.JWT.Issuer)
	token, err := tv.GenerateToken("staff-1", "reception", "staff", time.Hour)
	require.NoError(t, err)
	return token
}

func TestStaffRoutesRequireToken(t *testing.T) {
	router, _, _ := setupTestRouter()

	paths := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/bookings"},
		{"PUT", "/api/v1/bookings/b-1"},
		{"POST", "/api/v1/bookings/b-1/cancel"},
		{"POST", "/api/v1/doctors"},
		{"GET", "/api/v1/selfcheck"},
	}

	for _, p := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(p.method, p.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.path)
	}
}

func TestSlotCatalogHandler(t *testing.T) {
	router, _, _ := setupTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/slots", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Slots []string `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Slots, 48)
	assert.Equal(t, "09:00 ص", body.Slots[0])
}

func TestCreateBookingHandler_Created(t *testing.T) {
	router, _, mockRepo := setupTestRouter()

	mockRepo.On("ListDoctors").Return([]*types.Doctor{testDoctor()}, nil)
	mockRepo.On("ListBookings", mock.AnythingOfType("*types.BookingFilters")).Return([]*types.Booking{}, nil)
	mockRepo.On("CreateBooking", mock.AnythingOfType("*types.Booking")).Return(nil)

	payload, err := json.Marshal(validRequest())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/bookings", bytes.NewReader(payload)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var booking types.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))
	assert.Equal(t, types.StatusConfirmed, booking.Status)
	assert.NotEmpty(t, booking.ID)
}

func TestCreateBookingHandler_Rejection(t *testing.T) {
	router, _, mockRepo := setupTestRouter()

	mockRepo.On("ListDoctors").Return([]*types.Doctor{testDoctor()}, nil)
	mockRepo.On("ListBookings", mock.AnythingOfType("*types.BookingFilters")).Return([]*types.Booking{}, nil)

	req := validRequest()
	req.PatientName = "محمد" // single word, fails the four-part name rule
	payload, err := json.Marshal(req)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/bookings", bytes.NewReader(payload)))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(types.ReasonNameMalformed), body["reason"])
	assert.Equal(t, types.ReasonNameMalformed.Message(), body["message"])

	mockRepo.AssertNotCalled(t, "CreateBooking", mock.Anything)
}

func TestCreateBookingHandler_BadBody(t *testing.T) {
	router, _, _ := setupTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/bookings", bytes.NewReader([]byte("{not json"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBookingHandler_NotFound(t *testing.T) {
	router, service, mockRepo := setupTestRouter()

	mockRepo.On("GetBookingByID", "missing").
		Return(nil, types.NewNotFoundError(types.ErrCodeNotFound, "booking not found"))

	req := httptest.NewRequest("GET", "/api/v1/bookings/missing", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken(t, service))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBookingsHandler_EmptyListIsJSONArray(t *testing.T) {
	router, service, mockRepo := setupTestRouter()

	mockRepo.On("ListBookings", mock.AnythingOfType("*types.BookingFilters")).Return(nil, nil)

	req := httptest.NewRequest("GET", "/api/v1/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken(t, service))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(bytes.TrimSpace(rec.Body.Bytes())))
}

func TestGetBookingsHandler_PassesFilters(t *testing.T) {
	router, service, mockRepo := setupTestRouter()

	mockRepo.On("ListBookings", &types.BookingFilters{
		DoctorID: "doc-1",
		Date:     "2026-03-05",
		Status:   types.StatusConfirmed,
		Limit:    10,
	}).Return([]*types.Booking{}, nil)

	req := httptest.NewRequest("GET", "/api/v1/bookings?doctor_id=doc-1&date=2026-03-05&status=confirmed&limit=10", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken(t, service))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockRepo.AssertExpectations(t)
}

func TestAvailableSlotsHandler(t *testing.T) {
	router, _, mockRepo := setupTestRouter()

	mockRepo.On("GetDoctorByID", "doc-1").Return(testDoctor(), nil)
	mockRepo.On("ListBookings", mock.AnythingOfType("*types.BookingFilters")).Return([]*types.Booking{}, nil)

	t.Run("date is required", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/doctors/doc-1/available-slots", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("working day returns the full catalog", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/doctors/doc-1/available-slots?date=2026-03-05", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			DoctorID string   `json:"doctor_id"`
			Date     string   `json:"date"`
			Slots    []string `json:"slots"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "doc-1", body.DoctorID)
		assert.Len(t, body.Slots, 48)
	})

	t.Run("off day returns an empty list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/doctors/doc-1/available-slots?date=2026-03-07", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Slots []string `json:"slots"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotNil(t, body.Slots)
		assert.Empty(t, body.Slots)
	})
}

func TestSelfCheckHandler(t *testing.T) {
	router, service, _ := setupTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/selfcheck", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken(t, service))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Passed  int                     `json:"passed"`
		Total   int                     `json:"total"`
		Results []types.SelfCheckResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, body.Total, body.Passed)
	assert.NotEmpty(t, body.Results)
}
