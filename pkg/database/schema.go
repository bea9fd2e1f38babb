package database

import (
	"context"
	"fmt"
)

// CreateSchema creates the database schema for doctors and bookings
func (db *DB) CreateSchema(ctx context.Context) error {
	db.logger.Info("Creating database schema...")

	tables := []string{
		createDoctorsTable,
		createBookingsTable,
	}

	for _, table := range tables {
		if _, err := db.ExecContext(ctx, table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		createBookingsIndexes,
		createConfirmedSlotIndex,
	}

	for _, index := range indexes {
		if _, err := db.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	db.logger.Info("Database schema created successfully")
	return nil
}

// SQL DDL statements for table creation
const (
	createDoctorsTable = `
		CREATE TABLE IF NOT EXISTS doctors (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			specialty VARCHAR(200) NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			fee INTEGER NOT NULL DEFAULT 0,
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			experience INTEGER NOT NULL DEFAULT 0,
			education TEXT NOT NULL DEFAULT '',
			top_specialties TEXT[] NOT NULL DEFAULT '{}',
			max_patients INTEGER NOT NULL DEFAULT 0,
			patients_per_hour INTEGER NOT NULL DEFAULT 4,
			available_dates TEXT[] NOT NULL DEFAULT '{}',
			follow_up_exam_count INTEGER NOT NULL DEFAULT 0,
			follow_up_surgery_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);`

	// doctor_id carries no foreign key: bookings outlive their doctor.
	// Deleting a doctor removes future bookability only, and history stays
	// readable through the denormalized doctor_name column.
	createBookingsTable = `
		CREATE TABLE IF NOT EXISTS bookings (
			id VARCHAR(64) PRIMARY KEY,
			patient_name VARCHAR(200) NOT NULL,
			phone VARCHAR(20) NOT NULL,
			phone2 VARCHAR(20) NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			age INTEGER NOT NULL,
			governorate VARCHAR(100) NOT NULL,
			center VARCHAR(200) NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			booking_type VARCHAR(20) NOT NULL DEFAULT 'cash',
			doctor_id VARCHAR(64) NOT NULL,
			doctor_name VARCHAR(200) NOT NULL,
			service TEXT NOT NULL,
			booking_date VARCHAR(10) NOT NULL,
			time_slot VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'confirmed',
			reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
			contracting_company_id VARCHAR(64) NOT NULL DEFAULT '',
			payment_method VARCHAR(20) NOT NULL DEFAULT '',
			payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);`

	createBookingsIndexes = `
		CREATE INDEX IF NOT EXISTS idx_bookings_doctor_date ON bookings(doctor_id, booking_date);
		CREATE INDEX IF NOT EXISTS idx_bookings_phone ON bookings(phone);
		CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status);`

	// Only one confirmed booking may hold a (doctor, date, slot) cell at
	// a time. Cancelled rows fall out of the index, so a freed cell can
	// be rebooked. This constraint, not the pre-write validation, is the
	// guarantee against concurrent double-booking.
	createConfirmedSlotIndex = `
		CREATE UNIQUE INDEX IF NOT EXISTS bookings_confirmed_slot_idx
		ON bookings (doctor_id, booking_date, time_slot)
		WHERE status = 'confirmed';`
)
