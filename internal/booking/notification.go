package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/aboragab2030/barada-booking-server/pkg/config"
	"github.com/aboragab2030/barada-booking-server/pkg/interfaces"
	"github.com/aboragab2030/barada-booking-server/pkg/logger"
	"github.com/aboragab2030/barada-booking-server/pkg/monitoring"
	"github.com/aboragab2030/barada-booking-server/pkg/types"
)

// LogSender implements reminder delivery by logging. The clinic's SMS and
// WhatsApp providers are wired in deployment-specific builds behind the
// ReminderSender interface; this sender is the default and what tests use.
type LogSender struct {
	logger *logger.Logger
}

// NewLogSender creates a log-only reminder sender
func NewLogSender(log *logger.Logger) interfaces.ReminderSender {
	return &LogSender{
		logger: log,
	}
}

// SendSMS sends an SMS reminder
func (s *LogSender) SendSMS(to, message string) error {
	s.logger.WithFields(map[string]interface{}{
		"channel": "sms",
		"to":      to,
		"message": message,
	}).Info("Reminder dispatched")
	return nil
}

// SendWhatsApp sends a WhatsApp reminder
func (s *LogSender) SendWhatsApp(to, message string) error {
	s.logger.WithFields(map[string]interface{}{
		"channel": "whatsapp",
		"to":      to,
		"message": message,
	}).Info("Reminder dispatched")
	return nil
}

// SendEmail sends an email reminder
func (s *LogSender) SendEmail(to, subject, body string) error {
	s.logger.WithFields(map[string]interface{}{
		"channel": "email",
		"to":      to,
		"subject": subject,
	}).Info("Reminder dispatched")
	return nil
}

// ReminderManager handles booking reminders: rendering the configured
// templates, dispatching through the sender, and the nightly sweep over
// tomorrow's confirmed bookings.
type ReminderManager struct {
	sender     interfaces.ReminderSender
	repository interfaces.BookingRepository
	templates  config.ReminderConfig
	logger     *logger.Logger
	metrics    *monitoring.MetricsCollector
	stop       chan struct{}
}

// NewReminderManager creates a new reminder manager
func NewReminderManager(
	sender interfaces.ReminderSender,
	repo interfaces.BookingRepository,
	templates config.ReminderConfig,
	log *logger.Logger,
	metrics *monitoring.MetricsCollector,
) *ReminderManager {
	return &ReminderManager{
		sender:     sender,
		repository: repo,
		templates:  templates,
		logger:     log,
		metrics:    metrics,
		stop:       make(chan struct{}),
	}
}

// RenderTemplate fills the reminder placeholders from a booking. Supported
// placeholders are {name}, {doctor}, {date} and {time}.
func RenderTemplate(template string, b *types.Booking) string {
	r := strings.NewReplacer(
		"{name}", b.PatientName,
		"{doctor}", b.DoctorName,
		"{date}", b.Date,
		"{time}", b.Time,
	)
	return r.Replace(template)
}

// SendBookingReminder sends a reminder for a single booking and marks it
// reminded. Cancelled bookings are skipped.
func (rm *ReminderManager) SendBookingReminder(bookingID string) error {
	b, err := rm.repository.GetBookingByID(bookingID)
	if err != nil {
		return fmt.Errorf("failed to get booking: %w", err)
	}

	if b.Status != types.StatusConfirmed {
		rm.logger.WithBooking(bookingID).Info("Skipping reminder for non-confirmed booking")
		return nil
	}

	smsBody := RenderTemplate(rm.templates.SMSBody, b)
	if err := rm.sender.SendSMS(b.Phone, smsBody); err != nil {
		rm.metrics.RecordReminderSent("sms", false)
		rm.logger.Errorf("Failed to send SMS reminder for booking %s: %v", bookingID, err)
	} else {
		rm.metrics.RecordReminderSent("sms", true)
	}

	waBody := RenderTemplate(rm.templates.WhatsAppBody, b)
	if err := rm.sender.SendWhatsApp(b.Phone, waBody); err != nil {
		rm.metrics.RecordReminderSent("whatsapp", false)
		rm.logger.Errorf("Failed to send WhatsApp reminder for booking %s: %v", bookingID, err)
	} else {
		rm.metrics.RecordReminderSent("whatsapp", true)
	}

	if err := rm.repository.MarkReminderSent(bookingID); err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}

	rm.logger.WithBooking(bookingID).Info("Reminder sent")
	return nil
}

// SweepReminders sends reminders for all of tomorrow's confirmed bookings
// that have not been reminded yet. A send failure for one booking does not
// stop the sweep.
func (rm *ReminderManager) SweepReminders(now time.Time) error {
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")

	bookings, err := rm.repository.ListBookings(&types.BookingFilters{
		Date:   tomorrow,
		Status: types.StatusConfirmed,
	})
	if err != nil {
		return fmt.Errorf("failed to list bookings for reminders: %w", err)
	}

	sent := 0
	for _, b := range bookings {
		if b.ReminderSent {
			continue
		}
		if err := rm.SendBookingReminder(b.ID); err != nil {
			rm.logger.Errorf("Failed to send reminder for booking %s: %v", b.ID, err)
			continue
		}
		sent++
	}

	rm.logger.Infof("Reminder sweep: %d sent of %d bookings on %s", sent, len(bookings), tomorrow)
	return nil
}

// Start runs the periodic reminder sweep until Stop is called.
func (rm *ReminderManager) Start(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := rm.SweepReminders(time.Now()); err != nil {
					rm.logger.Errorf("Reminder sweep failed: %v", err)
				}
			case <-rm.stop:
				return
			}
		}
	}()
}

// Stop terminates the periodic sweep.
func (rm *ReminderManager) Stop() {
	close(rm.stop)
}
