package types

import "time"

// Doctor represents a clinic doctor and the attributes that govern booking.
type Doctor struct {
	ID                   string    `json:"id" db:"id"`
	Name                 string    `json:"name" db:"name"`
	Specialty            string    `json:"specialty" db:"specialty"`
	Image                string    `json:"image" db:"image"`
	Fee                  int       `json:"fee" db:"fee"`
	Rating               float64   `json:"rating" db:"rating"`
	Experience           int       `json:"experience" db:"experience"`
	Education            string    `json:"education" db:"education"`
	TopSpecialties       []string  `json:"top_specialties" db:"top_specialties"`
	MaxPatients          int       `json:"max_patients" db:"max_patients"`
	PatientsPerHour      int       `json:"patients_per_hour" db:"patients_per_hour"`
	AvailableDates       []string  `json:"available_dates" db:"available_dates"`
	FollowUpExamCount    int       `json:"follow_up_exam_count" db:"follow_up_exam_count"`
	FollowUpSurgeryCount int       `json:"follow_up_surgery_count" db:"follow_up_surgery_count"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// AvailableOn reports whether the doctor accepts bookings on the given date.
// AvailableDates is the sole source of bookable dates; weekday is irrelevant.
func (d *Doctor) AvailableOn(date string) bool {
	for _, av := range d.AvailableDates {
		if av == date {
			return true
		}
	}
	return false
}

// BookingStatus represents booking lifecycle values. Confirmed and cancelled
// toggle both ways; neither is terminal. Deletion is a separate hard remove.
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// BookingType distinguishes direct-pay patients from insurance patients.
type BookingType string

const (
	BookingTypeCash     BookingType = "cash"
	BookingTypeContract BookingType = "contract"
)

// PaymentMethod represents how a cash-path patient chose to pay.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentInstapay PaymentMethod = "instapay"
	PaymentWallet   PaymentMethod = "wallet"
)

// PaymentStatus represents payment collection state.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Booking represents a persisted appointment. A confirmed booking occupies
// exactly one (doctor, date, slot) cell; cancelled bookings occupy nothing.
type Booking struct {
	ID                   string        `json:"id" db:"id"`
	PatientName          string        `json:"patient_name" db:"patient_name"`
	Phone                string        `json:"phone" db:"phone"`
	Phone2               string        `json:"phone2,omitempty" db:"phone2"`
	Address              string        `json:"address" db:"address"`
	Age                  int           `json:"age" db:"age"`
	Governorate          string        `json:"governorate" db:"governorate"`
	Center               string        `json:"center" db:"center"`
	Notes                string        `json:"notes,omitempty" db:"notes"`
	BookingType          BookingType   `json:"booking_type" db:"booking_type"`
	DoctorID             string        `json:"doctor_id" db:"doctor_id"`
	DoctorName           string        `json:"doctor_name" db:"doctor_name"`
	Service              string        `json:"service" db:"service"`
	Date                 string        `json:"date" db:"booking_date"`
	Time                 string        `json:"time" db:"time_slot"`
	Status               BookingStatus `json:"status" db:"status"`
	ReminderSent         bool          `json:"reminder_sent" db:"reminder_sent"`
	ContractingCompanyID string        `json:"contracting_company_id,omitempty" db:"contracting_company_id"`
	PaymentMethod        PaymentMethod `json:"payment_method,omitempty" db:"payment_method"`
	PaymentStatus        PaymentStatus `json:"payment_status,omitempty" db:"payment_status"`
	CreatedAt            time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at" db:"updated_at"`
}

// BookingRequest bundles a candidate booking as gathered from the patient or
// staff form, before validation.
type BookingRequest struct {
	PatientName          string        `json:"patient_name"`
	Phone                string        `json:"phone"`
	Phone2               string        `json:"phone2,omitempty"`
	Age                  int           `json:"age"`
	Governorate          string        `json:"governorate"`
	Center               string        `json:"center"`
	Notes                string        `json:"notes,omitempty"`
	BookingType          BookingType   `json:"booking_type,omitempty"`
	DoctorID             string        `json:"doctor_id"`
	Service              string        `json:"service"`
	Date                 string        `json:"date"`
	Time                 string        `json:"time"`
	ContractingCompanyID string        `json:"contracting_company_id,omitempty"`
	PaymentMethod        PaymentMethod `json:"payment_method,omitempty"`
}

// BookingFilters represents filters for booking queries.
type BookingFilters struct {
	DoctorID string        `json:"doctor_id,omitempty"`
	Date     string        `json:"date,omitempty"`
	Status   BookingStatus `json:"status,omitempty"`
	Phone    string        `json:"phone,omitempty"`
	Limit    int           `json:"limit,omitempty"`
	Offset   int           `json:"offset,omitempty"`
}

// WorkingHours holds the clinic's two text-described windows. Each parses to
// minutes-since-midnight; Friday gets its own window, every other day uses
// Weekdays. The windows constrain time-of-day only, never which dates a
// doctor works.
type WorkingHours struct {
	Weekdays string `json:"weekdays" mapstructure:"weekdays"`
	Friday   string `json:"friday" mapstructure:"friday"`
}

// Governorates is the fixed region catalog a booking's governorate must come
// from.
var Governorates = []string{
	"القاهرة", "الجيزة", "الإسكندرية", "الدقهلية", "البحر الأحمر", "البحيرة",
	"الفيوم", "الغربية", "الإسماعيلية", "المنوفية", "المنيا", "القليوبية",
	"الوادي الجديد", "السويس", "أسوان", "أسيوط", "بني سويف", "بورسعيد",
	"دمياط", "الشرقية", "جنوب سيناء", "كفر الشيخ", "مطروح", "الأقصر",
	"قنا", "شمال سيناء", "سوهاج",
}

// SelfCheckResult is one diagnostic outcome from the booking-rule self
// check. Results are logged for staff only and never shown to patients.
type SelfCheckResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Details string `json:"details"`
}

// ValidGovernorate reports whether g is one of the known governorates.
func ValidGovernorate(g string) bool {
	for _, gov := range Governorates {
		if gov == g {
			return true
		}
	}
	return false
}
