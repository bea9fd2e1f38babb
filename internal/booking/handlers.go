package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/aboragab2030/barada-booking-server/pkg/types"
)

// setupRoutes configures HTTP routes for the booking service. Patient-facing
// routes are open; management routes require a staff token.
func (s *Service) setupRoutes(router *mux.Router) {
	router.Use(s.metrics.HTTPMiddleware, s.requestLogMiddleware)

	api := router.PathPrefix("/api/v1").Subrouter()

	// Patient-facing routes
	api.HandleFunc("/bookings", s.createBookingHandler).Methods("POST")
	api.HandleFunc("/doctors", s.getDoctorsHandler).Methods("GET")
	api.HandleFunc("/doctors/{id}", s.getDoctorHandler).Methods("GET")
	api.HandleFunc("/doctors/{id}/available-slots", s.getAvailableSlotsHandler).Methods("GET")
	api.HandleFunc("/slots", s.getSlotCatalogHandler).Methods("GET")

	// Staff routes
	staff := api.NewRoute().Subrouter()
	staff.Use(s.staffAuthMiddleware)
	staff.HandleFunc("/bookings", s.getBookingsHandler).Methods("GET")
	staff.HandleFunc("/bookings/{id}", s.getBookingHandler).Methods("GET")
	staff.HandleFunc("/bookings/{id}", s.editBookingHandler).Methods("PUT")
	staff.HandleFunc("/bookings/{id}", s.deleteBookingHandler).Methods("DELETE")
	staff.HandleFunc("/bookings/{id}/cancel", s.cancelBookingHandler).Methods("POST")
	staff.HandleFunc("/bookings/{id}/confirm", s.confirmBookingHandler).Methods("POST")
	staff.HandleFunc("/bookings/{id}/pay", s.markBookingPaidHandler).Methods("POST")
	staff.HandleFunc("/bookings/{id}/reminder", s.sendReminderHandler).Methods("POST")
	staff.HandleFunc("/doctors", s.createDoctorHandler).Methods("POST")
	staff.HandleFunc("/doctors/{id}", s.updateDoctorHandler).Methods("PUT")
	staff.HandleFunc("/doctors/{id}", s.deleteDoctorHandler).Methods("DELETE")
	staff.HandleFunc("/selfcheck", s.selfCheckHandler).Methods("GET")

	// Operational endpoints
	router.HandleFunc("/health", s.health.HTTPHandler()).Methods("GET")
	router.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	s.logger.Info("Booking service routes configured")
}

// createBookingHandler handles booking creation
func (s *Service) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	var req types.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	userID := s.getUserIDFromRequest(r)
	booking, reason, err := s.CreateBooking(&req, userID)
	if err != nil {
		s.writeServiceError(w, "Failed to create booking", err)
		return
	}
	if reason != nil {
		s.writeRejectionResponse(w, *reason)
		return
	}

	s.writeJSONResponse(w, http.StatusCreated, booking)
}

// getBookingHandler handles booking retrieval
func (s *Service) getBookingHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID := vars["id"]

	userID := s.getUserIDFromRequest(r)
	booking, err := s.GetBooking(bookingID, userID)
	if err != nil {
		s.writeServiceError(w, "Failed to get booking", err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, booking)
}

// editBookingHandler handles booking edits with full re-validation
func (s *Service) editBookingHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID := vars["id"]

	var req types.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	userID := s.getUserIDFromRequest(r)
	booking, reason, err := s.EditBooking(bookingID, &req, userID)
	if err != nil {
		s.writeServiceError(w, "Failed to edit booking", err)
		return
	}
	if reason != nil {
		s.writeRejectionResponse(w, *reason)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, booking)
}

// cancelBookingHandler handles booking cancellation
func (s *Service) cancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID := vars["id"]

	userID := s.getUserIDFromRequest(r)
	if err := s.CancelBooking(bookingID, userID); err != nil {
		s.writeServiceError(w, "Failed to cancel booking", err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Booking cancelled successfully"})
}

// confirmBookingHandler handles re-confirming a cancelled booking
func (s *Service) confirmBookingHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID := vars["id"]

	userID := s.getUserIDFromRequest(r)
	if err := s.ConfirmBooking(bookingID, userID); err != nil {
		s.writeServiceError(w, "Failed to confirm booking", err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Booking confirmed successfully"})
}

// deleteBookingHandler handles permanent booking removal
func (s *Service) deleteBookingHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID := vars["id"]

	userID := s.getUserIDFromRequest(r)
	if err := s.DeleteBooking(bookingID, userID); err != nil {
		s.writeServiceError(w, "Failed to delete booking", err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Booking deleted successfully"})
}

// markBookingPaidHandler handles payment receipt recording
func (s *Service) markBookingPaidHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID := vars["id"]

	userID := s.getUserIDFromRequest(r)
	if err := s.MarkBookingPaid(bookingID, userID); err != nil {
		s.writeServiceError(w, "Failed to mark booking paid", err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Booking marked paid successfully"})
}

// getBookingsHandler handles booking listing with filters
func (s *Service) getBookingsHandler(w http.ResponseWriter, r *http.Request) {
	filters := s.parseBookingFilters(r)
	userID := s.getUserIDFromRequest(r)

	bookings, err := s.GetBookings(userID, filters)
	if err != nil {
		s.writeServiceError(w, "Failed to get bookings", err)
		return
	}

	if bookings == nil {
		bookings = []*types.Booking{}
	}
	s.writeJSONResponse(w, http.StatusOK, bookings)
}

// getAvailableSlotsHandler handles offerable slot retrieval for a doctor
func (s *Service) getAvailableSlotsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID := vars["id"]

	date := r.URL.Query().Get("date")
	if date == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "Date parameter is required", nil)
		return
	}

	slots, err := s.OfferableSlots(doctorID, date)
	if err != nil {
		s.writeServiceError(w, "Failed to get available slots", err)
		return
	}

	response := map[string]interface{}{
		"doctor_id": doctorID,
		"date":      date,
		"slots":     slots,
	}

	s.writeJSONResponse(w, http.StatusOK, response)
}

// getSlotCatalogHandler returns the fixed slot catalog
func (s *Service) getSlotCatalogHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"slots": TimeSlots,
	})
}

// createDoctorHandler handles doctor creation
func (s *Service) createDoctorHandler(w http.ResponseWriter, r *http.Request) {
	var doctor types.Doctor
	if err := json.NewDecoder(r.Body).Decode(&doctor); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	userID := s.getUserIDFromRequest(r)
	created, err := s.CreateDoctor(&doctor, userID)
	if err != nil {
		s.writeServiceError(w, "Failed to create doctor", err)
		return
	}

	s.writeJSONResponse(w, http.StatusCreated, created)
}

// getDoctorHandler handles doctor retrieval
func (s *Service) getDoctorHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID := vars["id"]

	doctor, err := s.GetDoctor(doctorID)
	if err != nil {
		s.writeServiceError(w, "Failed to get doctor", err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, doctor)
}

// updateDoctorHandler handles doctor updates
func (s *Service) updateDoctorHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID := vars["id"]

	var doctor types.Doctor
	if err := json.NewDecoder(r.Body).Decode(&doctor); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	userID := s.getUserIDFromRequest(r)
	if err := s.UpdateDoctor(doctorID, &doctor, userID); err != nil {
		s.writeServiceError(w, "Failed to update doctor", err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Doctor updated successfully"})
}

// deleteDoctorHandler handles doctor removal
func (s *Service) deleteDoctorHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID := vars["id"]

	userID := s.getUserIDFromRequest(r)
	if err := s.DeleteDoctor(doctorID, userID); err != nil {
		s.writeServiceError(w, "Failed to delete doctor", err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Doctor deleted successfully"})
}

// getDoctorsHandler handles doctor listing
func (s *Service) getDoctorsHandler(w http.ResponseWriter, r *http.Request) {
	doctors, err := s.GetDoctors()
	if err != nil {
		s.writeServiceError(w, "Failed to get doctors", err)
		return
	}

	if doctors == nil {
		doctors = []*types.Doctor{}
	}
	s.writeJSONResponse(w, http.StatusOK, doctors)
}

// sendReminderHandler handles manual reminder sending
func (s *Service) sendReminderHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID := vars["id"]

	if err := s.SendBookingReminder(bookingID); err != nil {
		s.writeServiceError(w, "Failed to send reminder", err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Reminder sent successfully"})
}

// selfCheckHandler runs the engine self-check suite
func (s *Service) selfCheckHandler(w http.ResponseWriter, r *http.Request) {
	results := s.RunSelfCheck()

	passed := 0
	for _, res := range results {
		if res.Passed {
			passed++
		}
	}

	response := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"passed":    passed,
		"total":     len(results),
		"results":   results,
	}

	status := http.StatusOK
	if passed < len(results) {
		status = http.StatusInternalServerError
	}
	s.writeJSONResponse(w, status, response)
}

// Helper methods

// requestLogMiddleware emits one structured log line per request.
func (s *Service) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.HTTPRequest(r.Method, r.URL.Path, r.RemoteAddr, rec.status, time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// getUserIDFromRequest extracts the staff user ID placed in the request
// context by the auth middleware; anonymous for patient-facing routes.
func (s *Service) getUserIDFromRequest(r *http.Request) string {
	if userID, ok := r.Context().Value(staffUserKey).(string); ok && userID != "" {
		return userID
	}
	return "anonymous"
}

// parseBookingFilters parses query parameters into booking filters
func (s *Service) parseBookingFilters(r *http.Request) *types.BookingFilters {
	filters := &types.BookingFilters{}

	if doctorID := r.URL.Query().Get("doctor_id"); doctorID != "" {
		filters.DoctorID = doctorID
	}

	if date := r.URL.Query().Get("date"); date != "" {
		filters.Date = date
	}

	if status := r.URL.Query().Get("status"); status != "" {
		filters.Status = types.BookingStatus(status)
	}

	if phone := r.URL.Query().Get("phone"); phone != "" {
		filters.Phone = phone
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if parsed, err := strconv.Atoi(limit); err == nil {
			filters.Limit = parsed
		}
	}

	if offset := r.URL.Query().Get("offset"); offset != "" {
		if parsed, err := strconv.Atoi(offset); err == nil {
			filters.Offset = parsed
		}
	}

	return filters
}

// writeJSONResponse writes a JSON response
func (s *Service) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("Failed to encode JSON response: %v", err)
	}
}

// writeRejectionResponse writes a business rejection. Rejections are valid
// outcomes, not server errors; they carry the machine-readable reason and
// the Arabic display message.
func (s *Service) writeRejectionResponse(w http.ResponseWriter, reason types.RejectionReason) {
	s.writeJSONResponse(w, http.StatusUnprocessableEntity, map[string]string{
		"reason":  string(reason),
		"message": reason.Message(),
	})
}

// writeServiceError maps a service error to the right HTTP status
func (s *Service) writeServiceError(w http.ResponseWriter, message string, err error) {
	var ce *types.ClinicError
	if errors.As(err, &ce) {
		switch ce.Type {
		case types.ErrorTypeNotFound:
			s.writeErrorResponse(w, http.StatusNotFound, ce.Message, nil)
			return
		case types.ErrorTypeConflict:
			s.writeErrorResponse(w, http.StatusConflict, ce.Message, nil)
			return
		}
	}

	s.metrics.RecordSystemError("internal", "http")
	s.writeErrorResponse(w, http.StatusInternalServerError, message, err)
}

// writeErrorResponse writes an error response
func (s *Service) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
	s.logger.Errorf("%s: %v", message, err)

	response := map[string]interface{}{
		"error":  message,
		"status": statusCode,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
