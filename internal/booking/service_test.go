package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aboragab2030/barada-booking-server/pkg/config"
	"github.com/aboragab2030/barada-booking-server/pkg/logger"
	"github.com/aboragab2030/barada-booking-server/pkg/monitoring"
	"github.com/aboragab2030/barada-booking-server/pkg/types"
)

// MockBookingRepository is a mock implementation of BookingRepository
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateBooking(b *types.Booking) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockBookingRepository) GetBookingByID(id string) (*types.Booking, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateBooking(b *types.Booking) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockBookingRepository) UpdateBookingStatus(id string, status types.BookingStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockBookingRepository) UpdateBookingPayment(id string, status types.PaymentStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockBookingRepository) MarkReminderSent(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockBookingRepository) DeleteBooking(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockBookingRepository) ListBookings(filters *types.BookingFilters) ([]*types.Booking, error) {
	args := m.Called(filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Booking), args.Error(1)
}

func (m *MockBookingRepository) CreateDoctor(d *types.Doctor) error {
	args := m.Called(d)
	return args.Error(0)
}

func (m *MockBookingRepository) GetDoctorByID(id string) (*types.Doctor, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Doctor), args.Error(1)
}

func (m *MockBookingRepository) UpdateDoctor(d *types.Doctor) error {
	args := m.Called(d)
	return args.Error(0)
}

func (m *MockBookingRepository) DeleteDoctor(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockBookingRepository) ListDoctors() ([]*types.Doctor, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Doctor), args.Error(1)
}

// The Prometheus default registry rejects duplicate collectors, so the whole
// package shares one collector across tests.
var testMetrics = monitoring.NewMetricsCollector("booking-service-test")

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			SecretKey: "test-secret-key-for-unit-tests",
			Issuer:    "barada-booking",
		},
		Clinic: config.ClinicConfig{
			Name:         "مركز برادة",
			WorkingHours: testHours,
			Reminders: config.ReminderConfig{
				SMSBody:      "عزيزي {name}، نذكرك بموعدك مع {doctor} يوم {date} الساعة {time}",
				WhatsAppBody: "عزيزي {name}، نذكرك بموعدك مع {doctor} يوم {date} الساعة {time}",
			},
		},
	}
}

// Test setup helper
func setupTestService() (*Service, *MockBookingRepository) {
	cfg := testConfig()
	log := logger.New("fatal")
	mockRepo := &MockBookingRepository{}

	sender := NewLogSender(log)
	reminders := NewReminderManager(sender, mockRepo, cfg.Clinic.Reminders, log, testMetrics)

	service := &Service{
		config:     cfg,
		logger:     log,
		repository: mockRepo,
		reminders:  reminders,
		metrics:    testMetrics,
		health:     monitoring.NewHealthManager("booking-service", "test"),
		now:        func() time.Time { return testNow },
	}

	return service, mockRepo
}

func TestServiceCreateBooking_Success(t *testing.T) {
	service, mockRepo := setupTestService()

	mockRepo.On("ListDoctors").Return([]*types.Doctor{testDoctor()}, nil)
	mockRepo.On("ListBookings", mock.AnythingOfType("*types.BookingFilters")).Return([]*types.Booking{}, nil)
	mockRepo.On("CreateBooking", mock.AnythingOfType("*types.Booking")).Return(nil)

	booking, reason, err := service.CreateBooking(validRequest(), "staff-1")
	require.NoError(t, err)
	require.Nil(t, reason)
	require.NotNil(t, booking)

	assert.Equal(t, types.StatusConfirmed, booking.Status)
	mockRepo.AssertCalled(t, "CreateBooking", mock.AnythingOfType("*types.Booking"))
}

func TestServiceCreateBooking_Rejected(t *testing.T) {
	service, mockRepo := setupTestService()

	mockRepo.On("ListDoctors").Return([]*types.Doctor{testDoctor()}, nil)
	mockRepo.On("ListBookings", mock.AnythingOfType("*types.BookingFilters")).Return([]*types.Booking{}, nil)

	req := validRequest()
	req.Phone = "123"

	booking, reason, err := service.CreateBooking(req, "staff-1")
	require.NoError(t, err)
	require.NotNil(t, reason)
	assert.Nil(t, booking)
	assert.Equal(t, types.ReasonPhoneMalformed, *reason)

	// A rejected request never reaches storage.
	mockRepo.AssertNotCalled(t, "CreateBooking", mock.Anything)
}

func TestServiceCreateBooking_ConcurrentConflict(t *testing.T) {
	service, mockRepo := setupTestService()

	mockRepo.On("ListDoctors").Return([]*types.Doctor{testDoctor()}, nil)
	mockRepo.On("ListBookings", mock.AnythingOfType("*types.BookingFilters")).Return([]*types.Booking{}, nil)
	mockRepo.On("CreateBooking", mock.AnythingOfType("*types.Booking")).
		Return(types.NewConflictError(types.ErrCodeConflict, "time slot was taken by a concurrent booking"))

	// Validation passed against a stale snapshot but the unique index
	// caught the race; the caller sees an ordinary slot rejection.
	booking, reason, err := service.CreateBooking(validRequest(), "staff-1")
	require.NoError(t, err)
	require.NotNil(t, reason)
	assert.Nil(t, booking)
	assert.Equal(t, types.ReasonSlotUnavailable, *reason)
}

func TestServiceEditBooking_KeepsIdentity(t *testing.T) {
	service, mockRepo := setupTestService()

	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	existing := confirmedBooking("b-edit", "محمد علي حسن إبراهيم", "01012345678", "2026-03-05", "10:00 ص", "كشف")
	existing.CreatedAt = created
	existing.ReminderSent = true
	existing.PaymentStatus = types.PaymentPaid

	mockRepo.On("GetBookingByID", "b-edit").Return(existing, nil)
	mockRepo.On("ListDoctors").Return([]*types.Doctor{testDoctor()}, nil)
	mockRepo.On("ListBookings", mock.AnythingOfType("*types.BookingFilters")).Return([]*types.Booking{existing}, nil)
	mockRepo.On("UpdateBooking", mock.AnythingOfType("*types.Booking")).Return(nil)

	req := validRequest()
	req.Time = "11:00 ص"

	booking, reason, err := service.EditBooking("b-edit", req, "staff-1")
	require.NoError(t, err)
	require.Nil(t, reason)

	assert.Equal(t, "b-edit", booking.ID)
	assert.Equal(t, created, booking.CreatedAt)
	assert.True(t, booking.ReminderSent)
	assert.Equal(t, types.PaymentPaid, booking.PaymentStatus)
	assert.Equal(t, "11:00 ص", booking.Time)
}

func TestServiceCancelAndConfirm(t *testing.T) {
	service, mockRepo := setupTestService()

	mockRepo.On("UpdateBookingStatus", "b-1", types.StatusCancelled).Return(nil)
	mockRepo.On("UpdateBookingStatus", "b-1", types.StatusConfirmed).Return(nil)

	assert.NoError(t, service.CancelBooking("b-1", "staff-1"))
	assert.NoError(t, service.ConfirmBooking("b-1", "staff-1"))

	mockRepo.AssertExpectations(t)
}

func TestServiceMarkBookingPaid(t *testing.T) {
	service, mockRepo := setupTestService()

	mockRepo.On("UpdateBookingPayment", "b-1", types.PaymentPaid).Return(nil)

	assert.NoError(t, service.MarkBookingPaid("b-1", "staff-1"))
	mockRepo.AssertExpectations(t)
}

func TestServiceOfferableSlots(t *testing.T) {
	service, mockRepo := setupTestService()

	doc := testDoctor()
	taken := confirmedBooking("b-1", "سارة محمود عبد الرحمن", "01155555555", "2026-03-05", "10:00 ص", "كشف")

	mockRepo.On("GetDoctorByID", "doc-1").Return(doc, nil)
	mockRepo.On("ListBookings", mock.AnythingOfType("*types.BookingFilters")).Return([]*types.Booking{taken}, nil)

	slots, err := service.OfferableSlots("doc-1", "2026-03-05")
	require.NoError(t, err)
	assert.NotContains(t, slots, "10:00 ص")
	assert.Contains(t, slots, "10:15 ص")
}

func TestServiceOfferableSlots_OffDay(t *testing.T) {
	service, mockRepo := setupTestService()

	mockRepo.On("GetDoctorByID", "doc-1").Return(testDoctor(), nil)
	mockRepo.On("ListBookings", mock.AnythingOfType("*types.BookingFilters")).Return([]*types.Booking{}, nil)

	slots, err := service.OfferableSlots("doc-1", "2026-03-11")
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NotNil(t, slots)
}

func TestServiceCreateDoctor_Defaults(t *testing.T) {
	service, mockRepo := setupTestService()

	mockRepo.On("CreateDoctor", mock.AnythingOfType("*types.Doctor")).Return(nil)

	created, err := service.CreateDoctor(&types.Doctor{Name: "د. منى سعيد"}, "staff-1")
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 4, created.PatientsPerHour)
}

func TestServiceRunSelfCheck(t *testing.T) {
	service, _ := setupTestService()

	results := service.RunSelfCheck()
	require.NotEmpty(t, results)

	for _, res := range results {
		assert.True(t, res.Passed, "%s: %s", res.Name, res.Details)
	}
}
