package errors

import (
	"fmt"
)

type ErrCoder interface {
	GetErrCode() ErrCode
}

type ErrCode int32

const (
	ErrNoCode  ErrCode = -2
	ErrUnknown ErrCode = -1
	ErrNoError ErrCode = 0

	ErrInvalidTransaction ErrCode = 46001
	ErrInvalidState       ErrCode = 46002
	ErrInsufficientFunds  ErrCode = 46003
	ErrAlreadyReleased    ErrCode = 46004
	ErrIntegrityViolation ErrCode = 46005
	ErrSignatureInvalid   ErrCode = 46006
	ErrInvalidDispute     ErrCode = 46007
	ErrDisputeNotOpen     ErrCode = 46008
	ErrInvalidResolution  ErrCode = 46009
	ErrInvalidParty       ErrCode = 46010
	ErrUnknownUser        ErrCode = 46011
	ErrDuplicateUser      ErrCode = 46012
	ErrNothingStaged      ErrCode = 46013
	ErrMiningExhausted    ErrCode = 46014
)

var ErrCode2Str = map[ErrCode]string{
	ErrNoCode:  "No error code",
	ErrUnknown: "Unknown error",
	ErrNoError: "Not an error",

	ErrInvalidTransaction: "Invalid transaction ID",
	ErrInvalidState:       "Transition not legal from current state",
	ErrInsufficientFunds:  "Insufficient funds",
	ErrAlreadyReleased:    "Funds already released",
	ErrIntegrityViolation: "Ledger integrity check failed",
	ErrSignatureInvalid:   "Record signature verification failed",
	ErrInvalidDispute:     "Invalid dispute ID",
	ErrDisputeNotOpen:     "Dispute is not open",
	ErrInvalidResolution:  "Resolution must be either refund or release",
	ErrInvalidParty:       "One or more invalid parties",
	ErrUnknownUser:        "User does not exist",
	ErrDuplicateUser:      "User already exists",
	ErrNothingStaged:      "No records staged for sealing",
	ErrMiningExhausted:    "Proof-of-work attempt limit reached",
}

func (err ErrCode) Error() string {
	if s, ok := ErrCode2Str[err]; ok {
		return s
	}

	return fmt.Sprintf("Unknown error? Error code = %d", err)
}

func ErrerCode(err error) ErrCode {
	if err, ok := err.(ErrCoder); ok {
		return err.GetErrCode()
	}
	return ErrUnknown
}
