package order

// InvalidRequestError is returned for a malformed checkout request:
// empty cart or missing required delivery fields.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return e.Reason
}
