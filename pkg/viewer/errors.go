package viewer

import "errors"

// ProviderError is a structured failure from the data provider, carrying the
// backend's message when one was returned.
type ProviderError struct {
	StatusCode int
	Message    string
	Body       struct {
		Message string `json:"message"`
	}
}

func (e *ProviderError) Error() string {
	if e.Body.Message != "" {
		return e.Body.Message
	}
	if e.Message != "" {
		return e.Message
	}
	return "provider error"
}

// ErrorMessage extracts a user-facing message from an error, applied
// uniformly to every provider failure: the backend body message wins, then
// the error's own message, then a fixed fallback.
func ErrorMessage(err error) string {
	if err == nil {
		return "Unknown error"
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		if pe.Body.Message != "" {
			return pe.Body.Message
		}
		if pe.Message != "" {
			return pe.Message
		}
		return "Unknown error"
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unknown error"
}
