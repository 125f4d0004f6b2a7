package errcode

import "github.com/midpay/midpay/errors"

type ErrCode int64

const (
	SUCCESS            ErrCode = 0
	SESSION_EXPIRED    ErrCode = 41001
	SERVICE_CEILING    ErrCode = 41002
	ILLEGAL_DATAFORMAT ErrCode = 41003
	INVALID_METHOD     ErrCode = 42001
	INVALID_PARAMS     ErrCode = 42002
	INVALID_TOKEN      ErrCode = 42003
	INTERNAL_ERROR     ErrCode = 45001
)

var ErrMessage = map[ErrCode]string{
	SUCCESS:            "SUCCESS",
	SESSION_EXPIRED:    "SESSION EXPIRED",
	SERVICE_CEILING:    "SERVICE CEILING",
	ILLEGAL_DATAFORMAT: "ILLEGAL DATAFORMAT",
	INVALID_METHOD:     "INVALID METHOD",
	INVALID_PARAMS:     "INVALID PARAMS",
	INVALID_TOKEN:      "VERIFY TOKEN ERROR",
	INTERNAL_ERROR:     "INTERNAL ERROR",

	ErrCode(errors.ErrInvalidTransaction): "INVALID TRANSACTION",
	ErrCode(errors.ErrInvalidState):       "INVALID STATE TRANSITION",
	ErrCode(errors.ErrInsufficientFunds):  "INSUFFICIENT FUNDS",
	ErrCode(errors.ErrAlreadyReleased):    "ALREADY RELEASED",
	ErrCode(errors.ErrIntegrityViolation): "INTEGRITY VIOLATION",
	ErrCode(errors.ErrSignatureInvalid):   "SIGNATURE INVALID",
	ErrCode(errors.ErrInvalidDispute):     "INVALID DISPUTE",
	ErrCode(errors.ErrDisputeNotOpen):     "DISPUTE NOT OPEN",
	ErrCode(errors.ErrInvalidResolution):  "INVALID RESOLUTION",
	ErrCode(errors.ErrInvalidParty):       "INVALID PARTY",
	ErrCode(errors.ErrUnknownUser):        "UNKNOWN USER",
	ErrCode(errors.ErrDuplicateUser):      "DUPLICATE USER",
	ErrCode(errors.ErrNothingStaged):      "NOTHING STAGED",
	ErrCode(errors.ErrMiningExhausted):    "MINING EXHAUSTED",
}

// Message looks up the canonical message for a code, falling back to the
// internal error message for codes without one.
func Message(code ErrCode) string {
	if msg, ok := ErrMessage[code]; ok {
		return msg
	}
	return ErrMessage[INTERNAL_ERROR]
}

// FromError maps a domain error onto its API error code. Errors without a
// known code become INTERNAL_ERROR.
func FromError(err error) ErrCode {
	code := errors.ErrerCode(err)
	if _, ok := ErrMessage[ErrCode(code)]; ok && code != 0 {
		return ErrCode(code)
	}
	return INTERNAL_ERROR
}
