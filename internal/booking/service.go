package booking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/aboragab2030/barada-booking-server/pkg/config"
	"github.com/aboragab2030/barada-booking-server/pkg/database"
	"github.com/aboragab2030/barada-booking-server/pkg/interfaces"
	"github.com/aboragab2030/barada-booking-server/pkg/logger"
	"github.com/aboragab2030/barada-booking-server/pkg/monitoring"
	"github.com/aboragab2030/barada-booking-server/pkg/types"
)

// Service implements the BookingService interface
type Service struct {
	config     *config.Config
	logger     *logger.Logger
	repository interfaces.BookingRepository
	db         *database.DB
	server     *http.Server
	reminders  *ReminderManager
	metrics    *monitoring.MetricsCollector
	health     *monitoring.HealthManager
	now        func() time.Time
}

// New creates a new booking service
func New(cfg *config.Config, log *logger.Logger) interfaces.BookingService {
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Errorf("Failed to connect to database: %v", err)
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.CreateSchema(ctx); err != nil {
		log.Errorf("Failed to create database schema: %v", err)
		panic(err)
	}

	repository := NewRepository(db, log)
	metrics := monitoring.NewMetricsCollector("booking-service")

	sender := NewLogSender(log)
	reminders := NewReminderManager(sender, repository, cfg.Clinic.Reminders, log, metrics)

	health := monitoring.NewHealthManager("booking-service", "1.0.0")
	health.RegisterChecker("database", monitoring.NewDatabaseHealthChecker(db.DB))

	return &Service{
		config:     cfg,
		logger:     log,
		repository: repository,
		db:         db,
		reminders:  reminders,
		metrics:    metrics,
		health:     health,
		now:        time.Now,
	}
}

// loadSnapshot reads the doctors and confirmed bookings the validation rules
// run against. Bookings in cancelled state never gate anything, so only
// confirmed rows are loaded.
func (s *Service) loadSnapshot() (*Snapshot, error) {
	start := time.Now()

	doctors, err := s.repository.ListDoctors()
	if err != nil {
		return nil, fmt.Errorf("failed to load doctors: %w", err)
	}

	bookings, err := s.repository.ListBookings(&types.BookingFilters{
		Status: types.StatusConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	s.metrics.RecordDBQuery("snapshot", time.Since(start))
	return &Snapshot{Doctors: doctors, Bookings: bookings}, nil
}

// CreateBooking validates a booking request against the current snapshot and
// persists it if accepted. The returned RejectionReason is the business
// outcome for an invalid request; the error return is for storage and
// infrastructure failures only.
func (s *Service) CreateBooking(req *types.BookingRequest, userID string) (*types.Booking, *types.RejectionReason, error) {
	snap, err := s.loadSnapshot()
	if err != nil {
		return nil, nil, err
	}

	b, reason := Validate(req, snap, s.config.Clinic.WorkingHours, s.now(), "")
	if reason != nil {
		s.metrics.RecordBookingRejection(string(*reason))
		s.logger.Rejection(req.DoctorID, req.Date, req.Time, string(*reason))
		return nil, reason, nil
	}

	if err := s.repository.CreateBooking(b); err != nil {
		// The snapshot was stale and another writer confirmed the cell
		// first. The unique index caught it; report it like any other
		// full slot.
		if isConflict(err) {
			r := types.ReasonSlotUnavailable
			s.metrics.RecordBookingRejection(string(r))
			s.logger.Rejection(req.DoctorID, req.Date, req.Time, string(r))
			return nil, &r, nil
		}
		return nil, nil, err
	}

	s.metrics.RecordBookingCreated(b.DoctorID, string(b.BookingType))
	s.logger.Audit(userID, "create", "booking", true, map[string]interface{}{
		"booking_id": b.ID,
		"doctor_id":  b.DoctorID,
		"date":       b.Date,
		"time_slot":  b.Time,
	})

	return b, nil, nil
}

// EditBooking re-validates a booking with changed fields and persists the
// result. The booking being edited is excluded from all conflict rules so it
// never collides with itself.
func (s *Service) EditBooking(bookingID string, req *types.BookingRequest, userID string) (*types.Booking, *types.RejectionReason, error) {
	existing, err := s.repository.GetBookingByID(bookingID)
	if err != nil {
		return nil, nil, err
	}

	snap, err := s.loadSnapshot()
	if err != nil {
		return nil, nil, err
	}

	b, reason := Validate(req, snap, s.config.Clinic.WorkingHours, s.now(), bookingID)
	if reason != nil {
		s.metrics.RecordBookingRejection(string(*reason))
		s.logger.Rejection(req.DoctorID, req.Date, req.Time, string(*reason))
		return nil, reason, nil
	}

	// The edit keeps the booking's identity and history.
	b.ID = existing.ID
	b.CreatedAt = existing.CreatedAt
	b.ReminderSent = existing.ReminderSent
	b.PaymentStatus = existing.PaymentStatus

	if err := s.repository.UpdateBooking(b); err != nil {
		if isConflict(err) {
			r := types.ReasonSlotUnavailable
			s.metrics.RecordBookingRejection(string(r))
			return nil, &r, nil
		}
		return nil, nil, err
	}

	s.logger.Audit(userID, "edit", "booking", true, map[string]interface{}{
		"booking_id": b.ID,
	})

	return b, nil, nil
}

// GetBooking retrieves a booking by ID
func (s *Service) GetBooking(bookingID, userID string) (*types.Booking, error) {
	return s.repository.GetBookingByID(bookingID)
}

// CancelBooking flips a booking to cancelled. The freed cell becomes
// bookable again immediately because cancelled rows fall out of the
// uniqueness index.
func (s *Service) CancelBooking(bookingID, userID string) error {
	if err := s.repository.UpdateBookingStatus(bookingID, types.StatusCancelled); err != nil {
		return err
	}

	s.metrics.RecordStatusChange(string(types.StatusCancelled))
	s.logger.Audit(userID, "cancel", "booking", true, map[string]interface{}{
		"booking_id": bookingID,
	})
	return nil
}

// ConfirmBooking flips a cancelled booking back to confirmed. If the cell
// was taken in the meantime the uniqueness index rejects the flip.
func (s *Service) ConfirmBooking(bookingID, userID string) error {
	if err := s.repository.UpdateBookingStatus(bookingID, types.StatusConfirmed); err != nil {
		return err
	}

	s.metrics.RecordStatusChange(string(types.StatusConfirmed))
	s.logger.Audit(userID, "confirm", "booking", true, map[string]interface{}{
		"booking_id": bookingID,
	})
	return nil
}

// DeleteBooking removes a booking permanently
func (s *Service) DeleteBooking(bookingID, userID string) error {
	if err := s.repository.DeleteBooking(bookingID); err != nil {
		return err
	}

	s.logger.Audit(userID, "delete", "booking", true, map[string]interface{}{
		"booking_id": bookingID,
	})
	return nil
}

// MarkBookingPaid records payment receipt for a booking
func (s *Service) MarkBookingPaid(bookingID, userID string) error {
	if err := s.repository.UpdateBookingPayment(bookingID, types.PaymentPaid); err != nil {
		return err
	}

	s.logger.Audit(userID, "mark_paid", "booking", true, map[string]interface{}{
		"booking_id": bookingID,
	})
	return nil
}

// GetBookings retrieves bookings based on filters
func (s *Service) GetBookings(userID string, filters *types.BookingFilters) ([]*types.Booking, error) {
	return s.repository.ListBookings(filters)
}

// OfferableSlots returns the slots a patient can still pick for a doctor on
// a date, in catalog order. A date the doctor does not work yields an empty
// list, not an error.
func (s *Service) OfferableSlots(doctorID, date string) ([]string, error) {
	doctor, err := s.repository.GetDoctorByID(doctorID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.repository.ListBookings(&types.BookingFilters{
		DoctorID: doctorID,
		Date:     date,
		Status:   types.StatusConfirmed,
	})
	if err != nil {
		return nil, err
	}

	slots := OfferableSlots(doctor, date, bookings, "")
	if slots == nil {
		slots = []string{}
	}
	return slots, nil
}

// CreateDoctor creates a new doctor
func (s *Service) CreateDoctor(doctor *types.Doctor, userID string) (*types.Doctor, error) {
	if doctor.ID == "" {
		doctor.ID = uuid.New().String()
	}
	if doctor.PatientsPerHour <= 0 {
		doctor.PatientsPerHour = 4
	}
	doctor.CreatedAt = s.now()
	doctor.UpdatedAt = s.now()

	if err := s.repository.CreateDoctor(doctor); err != nil {
		return nil, err
	}

	s.logger.Audit(userID, "create", "doctor", true, map[string]interface{}{
		"doctor_id": doctor.ID,
	})
	return doctor, nil
}

// GetDoctor retrieves a doctor by ID
func (s *Service) GetDoctor(doctorID string) (*types.Doctor, error) {
	return s.repository.GetDoctorByID(doctorID)
}

// UpdateDoctor updates a doctor's profile and schedule
func (s *Service) UpdateDoctor(doctorID string, doctor *types.Doctor, userID string) error {
	doctor.ID = doctorID
	if err := s.repository.UpdateDoctor(doctor); err != nil {
		return err
	}

	s.logger.Audit(userID, "update", "doctor", true, map[string]interface{}{
		"doctor_id": doctorID,
	})
	return nil
}

// DeleteDoctor removes a doctor
func (s *Service) DeleteDoctor(doctorID, userID string) error {
	if err := s.repository.DeleteDoctor(doctorID); err != nil {
		return err
	}

	s.logger.Audit(userID, "delete", "doctor", true, map[string]interface{}{
		"doctor_id": doctorID,
	})
	return nil
}

// GetDoctors retrieves all doctors
func (s *Service) GetDoctors() ([]*types.Doctor, error) {
	return s.repository.ListDoctors()
}

// SendBookingReminder sends a reminder for a booking
func (s *Service) SendBookingReminder(bookingID string) error {
	return s.reminders.SendBookingReminder(bookingID)
}

// Start starts the booking service HTTP server and the reminder sweep
func (s *Service) Start(addr string) error {
	router := mux.NewRouter()
	s.setupRoutes(router)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(s.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.config.Server.IdleTimeout) * time.Second,
	}

	interval := time.Duration(s.config.Clinic.Reminders.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = time.Hour
	}
	s.reminders.Start(interval)

	s.logger.Infof("Starting Booking Service on %s", addr)
	return s.server.ListenAndServe()
}

// Stop stops the booking service
func (s *Service) Stop() error {
	s.reminders.Stop()

	if s.server != nil {
		s.logger.Info("Stopping Booking Service")
		return s.server.Close()
	}
	return nil
}

// isConflict reports whether err is a storage-level conflict
func isConflict(err error) bool {
	var ce *types.ClinicError
	return errors.As(err, &ce) && ce.Type == types.ErrorTypeConflict
}
