package llm

import "fmt"

// ClientError is the base error type for all llm errors.
type ClientError struct {
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ProviderError represents an error returned by a model provider.
type ProviderError struct {
	ClientError
	Provider   string
	StatusCode int
	Retryable  bool
	RetryAfter *float64
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("[%s] %s (status=%d, retryable=%v)", e.Provider, e.Message, e.StatusCode, e.Retryable)
}

// Provider-side error kinds.

// AuthenticationError indicates a rejected or missing API key.
type AuthenticationError struct{ ProviderError }

// InvalidRequestError indicates a malformed or unsupported request.
type InvalidRequestError struct{ ProviderError }

// RateLimitError indicates the provider throttled the request.
type RateLimitError struct{ ProviderError }

// ServerError indicates a transient provider-side failure.
type ServerError struct{ ProviderError }

// ContextLengthError indicates the prompt exceeded the model's context
// window. Retrying cannot reduce token volume, so it is never retried.
type ContextLengthError struct{ ProviderError }

// OutputLengthError indicates the completion was cut off at the model's
// output cap. Like ContextLengthError it is fatal for the call.
type OutputLengthError struct{ ProviderError }

// Client-side error kinds.

// ParseError indicates model output that does not conform to the requested
// schema. It is retryable: a fresh sample may well parse.
type ParseError struct{ ClientError }

// NewParseError wraps a cause as a ParseError.
func NewParseError(message string, cause error) *ParseError {
	return &ParseError{ClientError: ClientError{Message: message, Cause: cause}}
}

// RequestTimeoutError indicates the transport timed out.
type RequestTimeoutError struct{ ClientError }

// AbortError indicates the calling context was cancelled.
type AbortError struct{ ClientError }

// ConfigurationError indicates the client itself is misconfigured.
type ConfigurationError struct{ ClientError }

// IsRetryable reports whether the error is safe to retry. Parse failures and
// transient transport/provider conditions are retryable; token-limit and
// configuration failures are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch e := err.(type) {
	case *ContextLengthError:
		return false
	case *OutputLengthError:
		return false
	case *AuthenticationError:
		return false
	case *InvalidRequestError:
		return false
	case *ConfigurationError:
		return false
	case *AbortError:
		return false
	case *ParseError:
		return true
	case *RateLimitError:
		return true
	case *ServerError:
		return true
	case *RequestTimeoutError:
		return true
	case *ProviderError:
		return e.Retryable
	default:
		// Unknown errors default to retryable.
		return true
	}
}
