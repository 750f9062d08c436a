package validator

// Validator validates a struct and returns a ValidationError on rule failures.
type Validator interface {
	Validate(data any) error
}
