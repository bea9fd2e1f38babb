package booking

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/aboragab2030/barada-booking-server/pkg/database"
	"github.com/aboragab2030/barada-booking-server/pkg/interfaces"
	"github.com/aboragab2030/barada-booking-server/pkg/logger"
	"github.com/aboragab2030/barada-booking-server/pkg/types"
)

// Repository implements the BookingRepository interface against PostgreSQL.
type Repository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewRepository creates a new booking repository
func NewRepository(db *database.DB, log *logger.Logger) interfaces.BookingRepository {
	return &Repository{
		db:     db,
		logger: log,
	}
}

const uniqueViolation = "23505"

// isSlotConflict reports whether err is the unique-index violation on the
// confirmed (doctor_id, booking_date, time_slot) cell. That index, not the
// validation snapshot, is what stops two concurrent writers from confirming
// the same cell.
func isSlotConflict(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == "bookings_confirmed_slot_idx"
}

// CreateBooking inserts a confirmed booking
func (r *Repository) CreateBooking(b *types.Booking) error {
	query := `
		INSERT INTO bookings (
			id, patient_name, phone, phone2, address, age, governorate, center,
			notes, booking_type, doctor_id, doctor_name, service, booking_date,
			time_slot, status, reminder_sent, contracting_company_id,
			payment_method, payment_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22)`

	_, err := r.db.Exec(query,
		b.ID,
		b.PatientName,
		b.Phone,
		b.Phone2,
		b.Address,
		b.Age,
		b.Governorate,
		b.Center,
		b.Notes,
		b.BookingType,
		b.DoctorID,
		b.DoctorName,
		b.Service,
		b.Date,
		b.Time,
		b.Status,
		b.ReminderSent,
		b.ContractingCompanyID,
		b.PaymentMethod,
		b.PaymentStatus,
		b.CreatedAt,
		b.UpdatedAt,
	)

	if err != nil {
		if isSlotConflict(err) {
			return types.NewConflictError(types.ErrCodeConflict, "time slot was taken by a concurrent booking")
		}
		r.logger.Errorf("Failed to create booking: %v", err)
		return fmt.Errorf("failed to create booking: %w", err)
	}

	r.logger.Infof("Created booking %s for doctor %s at %s %s", b.ID, b.DoctorID, b.Date, b.Time)
	return nil
}

const bookingColumns = `id, patient_name, phone, phone2, address, age, governorate, center,
	   notes, booking_type, doctor_id, doctor_name, service, booking_date,
	   time_slot, status, reminder_sent, contracting_company_id,
	   payment_method, payment_status, created_at, updated_at`

func scanBooking(row interface{ Scan(dest ...interface{}) error }) (*types.Booking, error) {
	b := &types.Booking{}
	err := row.Scan(
		&b.ID,
		&b.PatientName,
		&b.Phone,
		&b.Phone2,
		&b.Address,
		&b.Age,
		&b.Governorate,
		&b.Center,
		&b.Notes,
		&b.BookingType,
		&b.DoctorID,
		&b.DoctorName,
		&b.Service,
		&b.Date,
		&b.Time,
		&b.Status,
		&b.ReminderSent,
		&b.ContractingCompanyID,
		&b.PaymentMethod,
		&b.PaymentStatus,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBookingByID retrieves a booking by ID
func (r *Repository) GetBookingByID(id string) (*types.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("booking not found: %s", id))
		}
		r.logger.Errorf("Failed to get booking %s: %v", id, err)
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return b, nil
}

// UpdateBooking rewrites all patient-editable fields of a booking
func (r *Repository) UpdateBooking(b *types.Booking) error {
	query := `
		UPDATE bookings SET
			patient_name = $1, phone = $2, phone2 = $3, address = $4, age = $5,
			governorate = $6, center = $7, notes = $8, booking_type = $9,
			doctor_id = $10, doctor_name = $11, service = $12,
			booking_date = $13, time_slot = $14, status = $15,
			contracting_company_id = $16, payment_method = $17,
			payment_status = $18, updated_at = $19
		WHERE id = $20`

	result, err := r.db.Exec(query,
		b.PatientName,
		b.Phone,
		b.Phone2,
		b.Address,
		b.Age,
		b.Governorate,
		b.Center,
		b.Notes,
		b.BookingType,
		b.DoctorID,
		b.DoctorName,
		b.Service,
		b.Date,
		b.Time,
		b.Status,
		b.ContractingCompanyID,
		b.PaymentMethod,
		b.PaymentStatus,
		time.Now(),
		b.ID,
	)

	if err != nil {
		if isSlotConflict(err) {
			return types.NewConflictError(types.ErrCodeConflict, "time slot was taken by a concurrent booking")
		}
		r.logger.Errorf("Failed to update booking %s: %v", b.ID, err)
		return fmt.Errorf("failed to update booking: %w", err)
	}

	return requireRowAffected(result, "booking", b.ID)
}

// UpdateBookingStatus flips a booking between confirmed and cancelled
func (r *Repository) UpdateBookingStatus(id string, status types.BookingStatus) error {
	query := `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, status, time.Now(), id)
	if err != nil {
		if isSlotConflict(err) {
			return types.NewConflictError(types.ErrCodeConflict, "time slot was taken by a concurrent booking")
		}
		r.logger.Errorf("Failed to update status of booking %s: %v", id, err)
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	if err := requireRowAffected(result, "booking", id); err != nil {
		return err
	}

	r.logger.Infof("Updated booking %s to status %s", id, status)
	return nil
}

// UpdateBookingPayment updates the payment status of a booking
func (r *Repository) UpdateBookingPayment(id string, status types.PaymentStatus) error {
	query := `UPDATE bookings SET payment_status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, status, time.Now(), id)
	if err != nil {
		r.logger.Errorf("Failed to update payment of booking %s: %v", id, err)
		return fmt.Errorf("failed to update booking payment: %w", err)
	}

	return requireRowAffected(result, "booking", id)
}

// MarkReminderSent records that a reminder went out for a booking
func (r *Repository) MarkReminderSent(id string) error {
	query := `UPDATE bookings SET reminder_sent = true, updated_at = $1 WHERE id = $2`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		r.logger.Errorf("Failed to mark reminder sent for booking %s: %v", id, err)
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}

	return requireRowAffected(result, "booking", id)
}

// DeleteBooking removes a booking permanently. Cancellation is a status
// change; this is the separate hard delete used by staff.
func (r *Repository) DeleteBooking(id string) error {
	query := `DELETE FROM bookings WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		r.logger.Errorf("Failed to delete booking %s: %v", id, err)
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if err := requireRowAffected(result, "booking", id); err != nil {
		return err
	}

	r.logger.Infof("Deleted booking %s", id)
	return nil
}

// ListBookings retrieves bookings based on filters
func (r *Repository) ListBookings(filters *types.BookingFilters) ([]*types.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`

	args := []interface{}{}
	argIndex := 1

	if filters != nil {
		if filters.DoctorID != "" {
			query += fmt.Sprintf(" AND doctor_id = $%d", argIndex)
			args = append(args, filters.DoctorID)
			argIndex++
		}

		if filters.Date != "" {
			query += fmt.Sprintf(" AND booking_date = $%d", argIndex)
			args = append(args, filters.Date)
			argIndex++
		}

		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argIndex)
			args = append(args, string(filters.Status))
			argIndex++
		}

		if filters.Phone != "" {
			query += fmt.Sprintf(" AND (phone = $%d OR phone2 = $%d)", argIndex, argIndex)
			args = append(args, filters.Phone)
			argIndex++
		}
	}

	query += " ORDER BY booking_date ASC, time_slot ASC"

	if filters != nil && filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filters.Limit)
		argIndex++
	}

	if filters != nil && filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filters.Offset)
	}

	start := time.Now()
	rows, err := r.db.Query(query, args...)
	r.logger.DatabaseOperation("select", "bookings", time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*types.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			r.logger.Errorf("Failed to scan booking: %v", err)
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	return bookings, nil
}

// CreateDoctor inserts a new doctor
func (r *Repository) CreateDoctor(d *types.Doctor) error {
	query := `
		INSERT INTO doctors (
			id, name, specialty, image, fee, rating, experience, education,
			top_specialties, max_patients, patients_per_hour, available_dates,
			follow_up_exam_count, follow_up_surgery_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.Exec(query,
		d.ID,
		d.Name,
		d.Specialty,
		d.Image,
		d.Fee,
		d.Rating,
		d.Experience,
		d.Education,
		pq.Array(d.TopSpecialties),
		d.MaxPatients,
		d.PatientsPerHour,
		pq.Array(d.AvailableDates),
		d.FollowUpExamCount,
		d.FollowUpSurgeryCount,
		d.CreatedAt,
		d.UpdatedAt,
	)

	if err != nil {
		r.logger.Errorf("Failed to create doctor: %v", err)
		return fmt.Errorf("failed to create doctor: %w", err)
	}

	r.logger.Infof("Created doctor %s (%s)", d.ID, d.Name)
	return nil
}

const doctorColumns = `id, name, specialty, image, fee, rating, experience, education,
	   top_specialties, max_patients, patients_per_hour, available_dates,
	   follow_up_exam_count, follow_up_surgery_count, created_at, updated_at`

func scanDoctor(row interface{ Scan(dest ...interface{}) error }) (*types.Doctor, error) {
	d := &types.Doctor{}
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Specialty,
		&d.Image,
		&d.Fee,
		&d.Rating,
		&d.Experience,
		&d.Education,
		pq.Array(&d.TopSpecialties),
		&d.MaxPatients,
		&d.PatientsPerHour,
		pq.Array(&d.AvailableDates),
		&d.FollowUpExamCount,
		&d.FollowUpSurgeryCount,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetDoctorByID retrieves a doctor by ID
func (r *Repository) GetDoctorByID(id string) (*types.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1`

	d, err := scanDoctor(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("doctor not found: %s", id))
		}
		r.logger.Errorf("Failed to get doctor %s: %v", id, err)
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	return d, nil
}

// UpdateDoctor rewrites a doctor's profile and schedule
func (r *Repository) UpdateDoctor(d *types.Doctor) error {
	query := `
		UPDATE doctors SET
			name = $1, specialty = $2, image = $3, fee = $4, rating = $5,
			experience = $6, education = $7, top_specialties = $8,
			max_patients = $9, patients_per_hour = $10, available_dates = $11,
			follow_up_exam_count = $12, follow_up_surgery_count = $13,
			updated_at = $14
		WHERE id = $15`

	result, err := r.db.Exec(query,
		d.Name,
		d.Specialty,
		d.Image,
		d.Fee,
		d.Rating,
		d.Experience,
		d.Education,
		pq.Array(d.TopSpecialties),
		d.MaxPatients,
		d.PatientsPerHour,
		pq.Array(d.AvailableDates),
		d.FollowUpExamCount,
		d.FollowUpSurgeryCount,
		time.Now(),
		d.ID,
	)

	if err != nil {
		r.logger.Errorf("Failed to update doctor %s: %v", d.ID, err)
		return fmt.Errorf("failed to update doctor: %w", err)
	}

	return requireRowAffected(result, "doctor", d.ID)
}

// DeleteDoctor removes a doctor
func (r *Repository) DeleteDoctor(id string) error {
	query := `DELETE FROM doctors WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		r.logger.Errorf("Failed to delete doctor %s: %v", id, err)
		return fmt.Errorf("failed to delete doctor: %w", err)
	}

	if err := requireRowAffected(result, "doctor", id); err != nil {
		return err
	}

	r.logger.Infof("Deleted doctor %s", id)
	return nil
}

// ListDoctors retrieves all doctors
func (r *Repository) ListDoctors() ([]*types.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors ORDER BY name ASC`

	start := time.Now()
	rows, err := r.db.Query(query)
	r.logger.DatabaseOperation("select", "doctors", time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	defer rows.Close()

	var doctors []*types.Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			r.logger.Errorf("Failed to scan doctor: %v", err)
			return nil, fmt.Errorf("failed to scan doctor: %w", err)
		}
		doctors = append(doctors, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating doctors: %w", err)
	}

	return doctors, nil
}

func requireRowAffected(result sql.Result, kind, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("%s not found: %s", kind, id))
	}
	return nil
}
