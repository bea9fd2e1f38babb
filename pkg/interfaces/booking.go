package interfaces

import (
	"github.com/aboragab2030/barada-booking-server/pkg/types"
)

// BookingService defines the interface for booking and doctor management
type BookingService interface {
	// Booking management
	CreateBooking(req *types.BookingRequest, userID string) (*types.Booking, *types.RejectionReason, error)
	EditBooking(bookingID string, req *types.BookingRequest, userID string) (*types.Booking, *types.RejectionReason, error)
	GetBooking(bookingID, userID string) (*types.Booking, error)
	CancelBooking(bookingID, userID string) error
	ConfirmBooking(bookingID, userID string) error
	DeleteBooking(bookingID, userID string) error
	MarkBookingPaid(bookingID, userID string) error
	GetBookings(userID string, filters *types.BookingFilters) ([]*types.Booking, error)

	// Availability
	OfferableSlots(doctorID, date string) ([]string, error)

	// Doctor management
	CreateDoctor(doctor *types.Doctor, userID string) (*types.Doctor, error)
	GetDoctor(doctorID string) (*types.Doctor, error)
	UpdateDoctor(doctorID string, doctor *types.Doctor, userID string) error
	DeleteDoctor(doctorID, userID string) error
	GetDoctors() ([]*types.Doctor, error)

	// Notifications and diagnostics
	SendBookingReminder(bookingID string) error
	RunSelfCheck() []types.SelfCheckResult

	// Service lifecycle
	Start(addr string) error
	Stop() error
}

// BookingRepository defines the interface for booking data persistence. It is
// the storage collaborator of the core: ListDoctors/ListBookings supply the
// snapshots the pure validation functions consume, and the unique constraint
// on confirmed (doctor, date, slot) cells is the real double-booking
// guarantee under concurrent writers.
type BookingRepository interface {
	// Bookings
	CreateBooking(b *types.Booking) error
	GetBookingByID(id string) (*types.Booking, error)
	UpdateBooking(b *types.Booking) error
	UpdateBookingStatus(id string, status types.BookingStatus) error
	UpdateBookingPayment(id string, status types.PaymentStatus) error
	MarkReminderSent(id string) error
	DeleteBooking(id string) error
	ListBookings(filters *types.BookingFilters) ([]*types.Booking, error)

	// Doctors
	CreateDoctor(d *types.Doctor) error
	GetDoctorByID(id string) (*types.Doctor, error)
	UpdateDoctor(d *types.Doctor) error
	DeleteDoctor(id string) error
	ListDoctors() ([]*types.Doctor, error)
}

// ReminderSender defines the boundary for outbound reminder delivery. The
// system only decides to send; delivery transports live behind this
// interface.
type ReminderSender interface {
	SendSMS(to, message string) error
	SendWhatsApp(to, message string) error
	SendEmail(to, subject, body string) error
}
