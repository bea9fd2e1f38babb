package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aboragab2030/barada-booking-server/pkg/logger"
)

func TestCreateSchema(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db := &DB{DB: mockDB, logger: logger.New("fatal")}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS doctors").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS bookings").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_bookings_doctor_date").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE UNIQUE INDEX IF NOT EXISTS bookings_confirmed_slot_idx").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.CreateSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingsOutliveTheirDoctor(t *testing.T) {
	// A foreign key on doctor_id would make DELETE FROM doctors fail for any
	// doctor with booking history. Doctor deletion only removes future
	// bookability; history keeps the denormalized doctor_name.
	assert.NotContains(t, createBookingsTable, "REFERENCES")
	assert.Contains(t, createBookingsTable, "doctor_id VARCHAR(64) NOT NULL,")
	assert.Contains(t, createBookingsTable, "doctor_name VARCHAR(200) NOT NULL")
}
