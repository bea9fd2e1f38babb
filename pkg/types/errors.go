package types

import "fmt"

// RejectionReason identifies exactly which acceptance rule a booking request
// failed. Reasons are user-facing and recoverable; the caller renders the
// mapped display text and the patient corrects the form and resubmits.
// Reasons are values, not errors — storage or transport failures travel as
// ClinicError instead and must never be conflated with a rejection.
type RejectionReason string

const (
	ReasonDoctorNotSelected    RejectionReason = "doctor_not_selected"
	ReasonDoctorNoSchedule     RejectionReason = "doctor_no_schedule"
	ReasonNameMalformed        RejectionReason = "name_malformed"
	ReasonPhoneMalformed       RejectionReason = "phone_malformed"
	ReasonAgeInvalid           RejectionReason = "age_invalid"
	ReasonRegionMissing        RejectionReason = "region_missing"
	ReasonFieldsMissing        RejectionReason = "fields_missing"
	ReasonDateInPast           RejectionReason = "date_in_past"
	ReasonDateIsToday          RejectionReason = "date_is_today"
	ReasonDateNotAvailable     RejectionReason = "date_not_available"
	ReasonOutsideWorkingHours  RejectionReason = "outside_working_hours"
	ReasonDuplicatePatientName RejectionReason = "duplicate_patient_name"
	ReasonFollowUpNoPrior      RejectionReason = "follow_up_no_prior_visit"
	ReasonFollowUpLimit        RejectionReason = "follow_up_limit_reached"
	ReasonSameDayDuplicate     RejectionReason = "same_day_duplicate"
	ReasonSlotUnavailable      RejectionReason = "slot_unavailable"
)

// rejectionMessages maps each reason to the display text shown to patients.
// The clinic operates in Arabic; rendering these in another language is a
// caller concern.
var rejectionMessages = map[RejectionReason]string{
	ReasonDoctorNotSelected:    "عذراً، يجب اختيار الطبيب أولاً.",
	ReasonDoctorNoSchedule:     "عذراً، لا يمكن الحجز مع هذا الطبيب حالياً لأنه لا توجد له أيام عمل محددة في النظام.",
	ReasonNameMalformed:        "عذراً، يجب إدخال الاسم الرباعي كاملاً (4 كلمات على الأقل) بحروف فقط.",
	ReasonPhoneMalformed:       "عذراً، يجب أن يكون رقم الهاتف 11 رقماً ويبدأ بـ 01 (مثال: 01012345678).",
	ReasonAgeInvalid:           "عذراً، يجب إدخال السن (رقم بين 1 و 120).",
	ReasonRegionMissing:        "عذراً، يجب اختيار المحافظة وإدخال المركز / المدينة.",
	ReasonFieldsMissing:        "يرجى ملء جميع الحقول المطلوبة واختيار موعد متاح.",
	ReasonDateInPast:           "عذراً، لا يمكن الحجز في تاريخ منتهي أو ماضٍ. يرجى اختيار تاريخ صالح.",
	ReasonDateIsToday:          "عذراً، لا يمكن الحجز في نفس يوم اليوم. يرجى اختيار تاريخ بدءاً من الغد.",
	ReasonDateNotAvailable:     "عذراً، الطبيب غير متاح في هذا اليوم. يرجى اختيار يوم من أيام عمل الطبيب المتاحة فقط.",
	ReasonOutsideWorkingHours:  "عذراً، الوقت المختار خارج ساعات العمل. يرجى اختيار وقت آخر ضمن ساعات العمل.",
	ReasonDuplicatePatientName: "عذراً، يوجد حجز مسجل مسبقاً بنفس هذا الاسم. لا يمكن تكرار الاسم لتجنب الازدواجية.",
	ReasonFollowUpNoPrior:      "عذراً، لا يمكن حجز المتابعة لأن المريض لم يسبق له إجراء كشف أو عملية لدى هذا الطبيب.",
	ReasonFollowUpLimit:        "عذراً، تم الوصول إلى الحد الأقصى للمتابعات المسموح بها لهذا المريض مع هذا الطبيب.",
	ReasonSameDayDuplicate:     "عذراً، يوجد حجز مسبق بهذا الاسم لدى الطبيب في نفس اليوم.",
	ReasonSlotUnavailable:      "عذراً، هذا الموعد لم يعد متاحاً. يرجى اختيار موعد آخر.",
}

// Message returns the user-facing display text for the reason.
func (r RejectionReason) Message() string {
	if msg, ok := rejectionMessages[r]; ok {
		return msg
	}
	return string(r)
}

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeExternal   ErrorType = "external"
)

// ClinicError represents a structured error in the booking system
type ClinicError struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *ClinicError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *ClinicError) Unwrap() error {
	return e.Cause
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(code, message string) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(code, message string) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeConflict,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(code, message string, cause error) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error codes
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeStorageError  = "STORAGE_ERROR"
)
