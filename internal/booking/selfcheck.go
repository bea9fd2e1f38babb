package booking

import (
	"fmt"
	"time"

	"github.com/aboragab2030/barada-booking-server/pkg/types"
)

// RunSelfCheck exercises the slot engine and validation rules against
// synthetic data and reports each scenario's outcome. It touches no storage,
// so staff can run it on a live system to verify the engine after a deploy
// or a config change.
func (s *Service) RunSelfCheck() []types.SelfCheckResult {
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC) // a Monday
	tomorrow := "2026-01-06"
	friday := "2026-01-09"

	doctor := &types.Doctor{
		ID:                   "selfcheck-doctor",
		Name:                 "دكتور التحقق",
		PatientsPerHour:      2,
		AvailableDates:       []string{tomorrow, friday},
		FollowUpExamCount:    1,
		FollowUpSurgeryCount: 1,
	}

	hours := s.config.Clinic.WorkingHours
	if hours.Weekdays == "" {
		hours = types.WorkingHours{
			Weekdays: "9:00 صباحاً - 9:00 مساءً",
			Friday:   "4:00 مساءً - 9:00 مساءً",
		}
	}

	baseRequest := func() *types.BookingRequest {
		return &types.BookingRequest{
			PatientName: "اختبار احمد محمد علي",
			Phone:       "01000000000",
			Age:         30,
			Governorate: "القاهرة",
			Center:      "وسط البلد",
			DoctorID:    doctor.ID,
			Service:     "كشف",
			Date:        tomorrow,
			Time:        "10:00 ص",
		}
	}

	emptySnap := func() *Snapshot {
		return &Snapshot{Doctors: []*types.Doctor{doctor}}
	}

	var results []types.SelfCheckResult

	record := func(name string, passed bool, details string) {
		results = append(results, types.SelfCheckResult{
			Name:    name,
			Passed:  passed,
			Details: details,
		})
	}

	expectReason := func(name string, req *types.BookingRequest, snap *Snapshot, want types.RejectionReason) {
		_, reason := Validate(req, snap, hours, now, "")
		switch {
		case reason == nil:
			record(name, false, "request was accepted")
		case *reason != want:
			record(name, false, fmt.Sprintf("got %s, want %s", *reason, want))
		default:
			record(name, true, "")
		}
	}

	// Slot catalog shape.
	record("slot catalog size", len(TimeSlots) == 48,
		fmt.Sprintf("catalog has %d slots", len(TimeSlots)))
	record("slot catalog bounds",
		len(TimeSlots) > 0 && TimeSlots[0] == "09:00 ص" && TimeSlots[len(TimeSlots)-1] == "08:45 م", "")

	// Baseline acceptance.
	if b, reason := Validate(baseRequest(), emptySnap(), hours, now, ""); reason != nil {
		record("baseline acceptance", false, fmt.Sprintf("rejected with %s", *reason))
	} else {
		record("baseline acceptance", b != nil && b.Status == types.StatusConfirmed, "")
	}

	// Date gating.
	past := baseRequest()
	past.Date = "2026-01-04"
	expectReason("past date rejected", past, emptySnap(), types.ReasonDateInPast)

	sameDay := baseRequest()
	sameDay.Date = "2026-01-05"
	doctorToday := *doctor
	doctorToday.AvailableDates = append([]string{"2026-01-05"}, doctor.AvailableDates...)
	expectReason("same-day rejected", sameDay, &Snapshot{Doctors: []*types.Doctor{&doctorToday}}, types.ReasonDateIsToday)

	// Friday working hours.
	fridayMorning := baseRequest()
	fridayMorning.Date = friday
	expectReason("friday morning rejected", fridayMorning, emptySnap(), types.ReasonOutsideWorkingHours)

	// Slot collision and hour capacity.
	taken := &types.Booking{
		ID: "sc-1", PatientName: "مريض اول كامل الاسم", Phone: "01011111111",
		DoctorID: doctor.ID, Date: tomorrow, Time: "10:00 ص",
		Status: types.StatusConfirmed,
	}
	expectReason("taken slot rejected", baseRequest(), &Snapshot{
		Doctors:  []*types.Doctor{doctor},
		Bookings: []*types.Booking{taken},
	}, types.ReasonSlotUnavailable)

	second := &types.Booking{
		ID: "sc-2", PatientName: "مريض ثاني كامل الاسم", Phone: "01022222222",
		DoctorID: doctor.ID, Date: tomorrow, Time: "10:15 ص",
		Status: types.StatusConfirmed,
	}
	bucketReq := baseRequest()
	bucketReq.Time = "10:30 ص"
	expectReason("full hour bucket rejected", bucketReq, &Snapshot{
		Doctors:  []*types.Doctor{doctor},
		Bookings: []*types.Booking{taken, second},
	}, types.ReasonSlotUnavailable)

	// Follow-up gating.
	followUp := baseRequest()
	followUp.Service = "متابعة كشف"
	expectReason("follow-up without prior rejected", followUp, emptySnap(), types.ReasonFollowUpNoPrior)

	// Duplicate name guard.
	dup := &types.Booking{
		ID: "sc-3", PatientName: "اختبار احمد محمد علي", Phone: "01033333333",
		DoctorID: doctor.ID, Date: friday, Time: "05:00 م",
		Status: types.StatusConfirmed,
	}
	expectReason("duplicate name rejected", baseRequest(), &Snapshot{
		Doctors:  []*types.Doctor{doctor},
		Bookings: []*types.Booking{dup},
	}, types.ReasonDuplicatePatientName)

	// Offerable slots honor the doctor's calendar.
	offDay := OfferableSlots(doctor, "2026-01-07", nil, "")
	record("off-day yields no slots", len(offDay) == 0, "")

	return results
}
