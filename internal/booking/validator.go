package booking

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aboragab2030/barada-booking-server/pkg/types"
)

// Service names carry their kind as substrings rather than a typed tag; the
// markers below are the clinic's service-naming convention. A service
// containing عملية but not متابعة is a surgery; one containing neither
// متابعة nor عملية is a plain exam.
const (
	markerFollowUp = "متابعة"
	markerSurgery  = "عملية"
)

var followUpExamMarkers = []string{"متابعة كشف", "متابعة الكشف"}
var followUpSurgeryMarkers = []string{"متابعة عملية", "متابعة العملية"}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// IsFollowUpExam reports whether the service name denotes a follow-up exam.
func IsFollowUpExam(service string) bool {
	return containsAny(service, followUpExamMarkers)
}

// IsFollowUpSurgery reports whether the service name denotes a follow-up
// surgery.
func IsFollowUpSurgery(service string) bool {
	return containsAny(service, followUpSurgeryMarkers)
}

// Patient names must be the full legal (four-part) name: letters, spaces,
// hyphens and apostrophes only.
var nameCharRe = regexp.MustCompile(`^[\p{L}\s\-']+$`)

// Egyptian mobile numbers: leading 01 plus nine further digits.
var phoneRe = regexp.MustCompile(`^01[0-9]{9}$`)

// Snapshot is the immutable world state a validation runs against. Both
// collections come from the storage collaborator at call time; the validator
// never mutates them and never does I/O of its own. Freshness is the caller's
// problem — the storage layer's unique constraint on confirmed
// (doctor, date, slot) cells is the real guard against concurrent
// double-booking, and this validation is the user-facing pre-check.
type Snapshot struct {
	Doctors  []*types.Doctor
	Bookings []*types.Booking
}

// DoctorByID resolves a doctor from the snapshot, or nil.
func (s *Snapshot) DoctorByID(id string) *types.Doctor {
	for _, d := range s.Doctors {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// Validate applies the clinic's acceptance rules to a candidate booking
// request, in order, first failure wins. It returns either a fully populated
// confirmed Booking ready for persistence, or the single RejectionReason for
// the first rule that failed. now anchors the day-granularity date rules;
// excludeBookingID marks the booking being edited so it cannot conflict with
// itself.
//
// Two deliberate oddities are preserved from the clinic's established
// behavior rather than "fixed" here: the duplicate-name rule is system-wide
// and name-only (two distinct patients sharing a full legal name cannot both
// hold confirmed bookings), and it collapses internal whitespace while the
// per-doctor same-day rule does not.
func Validate(req *types.BookingRequest, snap *Snapshot, hours types.WorkingHours, now time.Time, excludeBookingID string) (*types.Booking, *types.RejectionReason) {
	// Rule 1: a doctor must be selected and known.
	if req.DoctorID == "" {
		return nil, reject(types.ReasonDoctorNotSelected)
	}
	doctor := snap.DoctorByID(req.DoctorID)
	if doctor == nil {
		return nil, reject(types.ReasonDoctorNotSelected)
	}

	// Rule 2: an administratively unconfigured doctor cannot be booked.
	if len(doctor.AvailableDates) == 0 {
		return nil, reject(types.ReasonDoctorNoSchedule)
	}

	// Rule 3: full legal name, at least four parts, letters only.
	trimmedName := strings.TrimSpace(req.PatientName)
	if len(strings.Fields(trimmedName)) < 4 {
		return nil, reject(types.ReasonNameMalformed)
	}
	if n := len([]rune(trimmedName)); n < 2 || n > 100 {
		return nil, reject(types.ReasonNameMalformed)
	}
	if !nameCharRe.MatchString(trimmedName) {
		return nil, reject(types.ReasonNameMalformed)
	}

	// Rule 4: Egyptian mobile format, both phones.
	if !phoneRe.MatchString(req.Phone) {
		return nil, reject(types.ReasonPhoneMalformed)
	}
	if p2 := strings.TrimSpace(req.Phone2); p2 != "" && !phoneRe.MatchString(p2) {
		return nil, reject(types.ReasonPhoneMalformed)
	}

	// Rule 5: plausible age.
	if req.Age < 1 || req.Age > 120 {
		return nil, reject(types.ReasonAgeInvalid)
	}

	// Rule 6: region selection plus a locality string.
	if !types.ValidGovernorate(req.Governorate) {
		return nil, reject(types.ReasonRegionMissing)
	}
	center := strings.TrimSpace(req.Center)
	if center == "" {
		return nil, reject(types.ReasonRegionMissing)
	}

	// Rule 7: defensive re-check of the core fields.
	if trimmedName == "" || req.Phone == "" || req.Date == "" || req.Time == "" {
		return nil, reject(types.ReasonFieldsMissing)
	}

	// Rules 8-9: day-granularity date legality. Same-day booking is never
	// allowed; the earliest legal date is tomorrow. A date string that does
	// not parse fails neither comparison and falls through to rule 10, which
	// rejects it because it can never appear in a doctor's available list.
	if reqDate, err := time.Parse("2006-01-02", req.Date); err == nil {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		reqDay := time.Date(reqDate.Year(), reqDate.Month(), reqDate.Day(), 0, 0, 0, 0, time.UTC)
		if reqDay.Before(today) {
			return nil, reject(types.ReasonDateInPast)
		}
		if reqDay.Equal(today) {
			return nil, reject(types.ReasonDateIsToday)
		}
	}

	// Rule 10: the date must be one of the doctor's configured working days.
	if !doctor.AvailableOn(req.Date) {
		return nil, reject(types.ReasonDateNotAvailable)
	}

	// Rule 11: slot inside working hours, Friday window on Fridays.
	hoursText := hours.Weekdays
	if IsFriday(req.Date) {
		hoursText = hours.Friday
	}
	if window, err := ParseWorkingHours(hoursText); err == nil {
		if minutes, err := SlotToMinutes(req.Time); err == nil && !window.Contains(minutes) {
			return nil, reject(types.ReasonOutsideWorkingHours)
		}
	}

	// Rule 12: system-wide duplicate-name guard over confirmed bookings.
	collapsed := CollapseName(trimmedName)
	for _, b := range snap.Bookings {
		if b.Status != types.StatusConfirmed {
			continue
		}
		if excludeBookingID != "" && b.ID == excludeBookingID {
			continue
		}
		if CollapseName(b.PatientName) == collapsed {
			return nil, reject(types.ReasonDuplicatePatientName)
		}
	}

	// Rule 13: follow-up entitlement.
	if reason := checkFollowUp(req, doctor, snap.Bookings, trimmedName, excludeBookingID); reason != nil {
		return nil, reason
	}

	// Rule 14: no second confirmed booking for the same name with the same
	// doctor on the same day.
	normalized := NormalizeName(trimmedName)
	for _, b := range snap.Bookings {
		if b.Status != types.StatusConfirmed || b.DoctorID != doctor.ID || b.Date != req.Date {
			continue
		}
		if excludeBookingID != "" && b.ID == excludeBookingID {
			continue
		}
		if NormalizeName(b.PatientName) == normalized {
			return nil, reject(types.ReasonSameDayDuplicate)
		}
	}

	// Rule 15: the chosen slot must still be offerable.
	if !SlotOfferable(doctor, req.Date, req.Time, snap.Bookings, excludeBookingID) {
		return nil, reject(types.ReasonSlotUnavailable)
	}

	return buildBooking(req, doctor, trimmedName, center, now), nil
}

// checkFollowUp enforces the follow-up entitlement rule: a follow-up exam or
// surgery needs a prior confirmed non-follow-up visit of the matching kind
// with the same doctor, and the count of prior follow-ups of that kind must
// stay under the doctor's configured allowance. The patient is matched by
// name or phone. The booking being edited still counts as a prior visit —
// editing a patient's only exam into a follow-up of that exam is allowed —
// but it never counts against its own follow-up allowance.
func checkFollowUp(req *types.BookingRequest, doctor *types.Doctor, bookings []*types.Booking, trimmedName, excludeBookingID string) *types.RejectionReason {
	isExam := IsFollowUpExam(req.Service)
	isSurgery := IsFollowUpSurgery(req.Service)
	if !isExam && !isSurgery {
		return nil
	}

	normalized := NormalizeName(trimmedName)
	var prior []*types.Booking
	for _, b := range bookings {
		if b.Status != types.StatusConfirmed || b.DoctorID != doctor.ID {
			continue
		}
		if NormalizeName(b.PatientName) != normalized && b.Phone != req.Phone {
			continue
		}
		prior = append(prior, b)
	}

	isSelf := func(b *types.Booking) bool {
		return excludeBookingID != "" && b.ID == excludeBookingID
	}

	if isExam {
		hasExam := false
		followUps := 0
		for _, b := range prior {
			if !strings.Contains(b.Service, markerFollowUp) && !strings.Contains(b.Service, markerSurgery) {
				hasExam = true
			}
			if IsFollowUpExam(b.Service) && !isSelf(b) {
				followUps++
			}
		}
		if !hasExam {
			return reject(types.ReasonFollowUpNoPrior)
		}
		if followUps >= doctor.FollowUpExamCount {
			return reject(types.ReasonFollowUpLimit)
		}
	}

	if isSurgery {
		hasSurgery := false
		followUps := 0
		for _, b := range prior {
			if strings.Contains(b.Service, markerSurgery) && !strings.Contains(b.Service, markerFollowUp) {
				hasSurgery = true
			}
			if IsFollowUpSurgery(b.Service) && !isSelf(b) {
				followUps++
			}
		}
		if !hasSurgery {
			return reject(types.ReasonFollowUpNoPrior)
		}
		if followUps >= doctor.FollowUpSurgeryCount {
			return reject(types.ReasonFollowUpLimit)
		}
	}

	return nil
}

// buildBooking constructs the confirmed booking for an accepted request.
// Contract bookings carry no payment method — their billing goes through the
// contracting company's documents flow; cash-path bookings start pending
// until staff confirm receipt. Payment selection is never a validity gate.
func buildBooking(req *types.BookingRequest, doctor *types.Doctor, trimmedName, center string, now time.Time) *types.Booking {
	bookingType := req.BookingType
	if bookingType == "" {
		bookingType = types.BookingTypeCash
	}

	b := &types.Booking{
		ID:            uuid.New().String(),
		PatientName:   trimmedName,
		Phone:         req.Phone,
		Phone2:        strings.TrimSpace(req.Phone2),
		Address:       req.Governorate + " - " + center,
		Age:           req.Age,
		Governorate:   req.Governorate,
		Center:        center,
		Notes:         strings.TrimSpace(req.Notes),
		BookingType:   bookingType,
		DoctorID:      doctor.ID,
		DoctorName:    doctor.Name,
		Service:       req.Service,
		Date:          req.Date,
		Time:          req.Time,
		Status:        types.StatusConfirmed,
		PaymentStatus: types.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if bookingType == types.BookingTypeContract {
		b.ContractingCompanyID = req.ContractingCompanyID
	} else {
		b.PaymentMethod = req.PaymentMethod
	}

	return b
}

func reject(r types.RejectionReason) *types.RejectionReason {
	return &r
}
