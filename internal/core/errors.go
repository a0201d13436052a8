package core

import "errors"

// Scheduling and ringing failures.
//
// ErrPermissionDenied is the only failure a caller is expected to recover
// from (by granting exact-wake permission and retrying). ErrFocusDenied and
// ErrAudioInit are logged by the ringing session and never abort an alarm.
// ErrDeliverySuppressed marks a deliberate no-op, not a fault.
var (
	ErrPermissionDenied   = errors.New("exact alarm scheduling is not permitted")
	ErrResolution         = errors.New("no qualifying trigger instant")
	ErrAudioInit          = errors.New("no alert sound could be initialized")
	ErrFocusDenied        = errors.New("audio focus not granted")
	ErrDeliverySuppressed = errors.New("delivery suppressed")
)

// IsValidationError reports whether err came from input validation
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidAlarmID,
		ErrInvalidHour,
		ErrInvalidMinute,
		ErrInvalidWeekday,
		ErrInvalidDelay,
		ErrInvalidDuration,
		ErrMissingSchedule,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
