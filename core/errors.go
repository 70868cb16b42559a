package core

// FieldError reports what is wrong with one request field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is returned for requests rejected before reaching storage.
// The HTTP layer renders Fields as a {field: message} object.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err *ValidationError) Error() string {
	if err.Err == nil {
		return "invalid request"
	}
	return err.Err.Error()
}
