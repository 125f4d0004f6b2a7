package errors

import (
	"errors"
)

type DetailError interface {
	error
	ErrCoder
	GetRoot() error
}

func NewErr(errmsg string) error {
	return errors.New(errmsg)
}

// NewDetailErr wraps err with an error code and an optional message prefix.
// If err already carries a code, the original code and root are preserved.
func NewDetailErr(err error, errcode ErrCode, errmsg string) DetailError {
	if err == nil {
		return nil
	}

	e, ok := err.(ledgerError)
	if !ok {
		e.root = err
		e.errmsg = err.Error()
		e.code = errcode
	}
	if errmsg != "" {
		e.errmsg = errmsg + ": " + e.errmsg
	}

	return e
}

// NewCodeErr builds a DetailError straight from a code, using the code's
// message as the root error.
func NewCodeErr(errcode ErrCode) DetailError {
	return ledgerError{
		root:   errcode,
		errmsg: errcode.Error(),
		code:   errcode,
	}
}

func RootErr(err error) error {
	if err, ok := err.(DetailError); ok {
		return err.GetRoot()
	}
	return err
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrCode) bool {
	return ErrerCode(err) == code
}
