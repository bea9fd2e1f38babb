package booking

import (
	"fmt"
	"strings"

	"github.com/aboragab2030/barada-booking-server/pkg/types"
)

// TimeSlots is the fixed catalog of bookable time-of-day values, shared by
// every doctor. 15-minute granularity from 09:00 ص through 08:45 م, each slot
// tagged with its Arabic day-period marker. A doctor's offered subset is
// always derived by filtering this catalog; doctors never define their own
// slot sets.
var TimeSlots = generateTimeSlots()

func generateTimeSlots() []string {
	var slots []string
	for h := 9; h < 12; h++ {
		for m := 0; m < 60; m += 15 {
			slots = append(slots, fmt.Sprintf("%02d:%02d %s", h, m, periodAM))
		}
	}
	for m := 0; m < 60; m += 15 {
		slots = append(slots, fmt.Sprintf("12:%02d %s", m, periodPM))
	}
	for h := 1; h < 9; h++ {
		for m := 0; m < 60; m += 15 {
			slots = append(slots, fmt.Sprintf("%02d:%02d %s", h, m, periodPM))
		}
	}
	return slots
}

// InCatalog reports whether slot is one of the catalog values.
func InCatalog(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// hourBucket returns the hour digits and day-period marker of a slot, e.g.
// ("09", "ص") for "09:15 ص". Slots sharing a bucket share one
// patients-per-hour capacity pool regardless of their 15-minute offsets.
func hourBucket(slot string) (hour, period string) {
	hour = strings.SplitN(slot, ":", 2)[0]
	if i := strings.IndexByte(slot, ' '); i >= 0 {
		period = slot[i+1:]
	}
	return hour, period
}

// OfferableSlots computes the ordered sub-sequence of the slot catalog still
// offerable for the doctor on the given date, against the supplied bookings
// snapshot. excludeBookingID, when non-empty, ignores that booking so an edit
// does not conflict with itself.
//
// A slot is withheld when another confirmed booking holds the exact
// (doctor, date, slot) cell, or when confirmed bookings in the slot's hour
// bucket have already reached the doctor's patients-per-hour throughput.
//
// The function is pure: it holds no state, caches nothing, and reflects
// exactly the snapshot passed in. A date outside the doctor's available
// list yields no offerable slots.
func OfferableSlots(doctor *types.Doctor, date string, bookings []*types.Booking, excludeBookingID string) []string {
	if doctor == nil {
		return nil
	}
	if !doctor.AvailableOn(date) {
		return nil
	}

	// Count confirmed bookings per hour bucket and record taken cells in one
	// pass over the snapshot.
	taken := make(map[string]bool)
	perBucket := make(map[string]int)
	for _, b := range bookings {
		if b.DoctorID != doctor.ID || b.Date != date || b.Status != types.StatusConfirmed {
			continue
		}
		if excludeBookingID != "" && b.ID == excludeBookingID {
			continue
		}
		taken[b.Time] = true
		h, p := hourBucket(b.Time)
		perBucket[h+" "+p]++
	}

	var offerable []string
	for _, slot := range TimeSlots {
		if taken[slot] {
			continue
		}
		h, p := hourBucket(slot)
		if perBucket[h+" "+p] >= doctor.PatientsPerHour {
			continue
		}
		offerable = append(offerable, slot)
	}
	return offerable
}

// SlotOfferable reports whether one specific slot would be offered for the
// doctor on the date. Equivalent to membership in OfferableSlots but without
// building the full list.
func SlotOfferable(doctor *types.Doctor, date, slot string, bookings []*types.Booking, excludeBookingID string) bool {
	for _, s := range OfferableSlots(doctor, date, bookings, excludeBookingID) {
		if s == slot {
			return true
		}
	}
	return false
}
