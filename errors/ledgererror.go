package errors

type ledgerError struct {
	errmsg string
	root   error
	code   ErrCode
}

func (e ledgerError) Error() string {
	return e.errmsg
}

func (e ledgerError) GetErrCode() ErrCode {
	return e.code
}

func (e ledgerError) GetRoot() error {
	return e.root
}
