package llm

import (
	"errors"
	"testing"
)

func TestIsRetryableClassification(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"context length", &ContextLengthError{ProviderError: ProviderError{
			ClientError: ClientError{Message: "too long"}}}, false},
		{"output length", &OutputLengthError{ProviderError: ProviderError{
			ClientError: ClientError{Message: "output limit"}}}, false},
		{"authentication", &AuthenticationError{ProviderError: ProviderError{
			ClientError: ClientError{Message: "bad key"}, StatusCode: 401}}, false},
		{"invalid request", &InvalidRequestError{ProviderError: ProviderError{
			ClientError: ClientError{Message: "bad request"}, StatusCode: 400}}, false},
		{"configuration", &ConfigurationError{ClientError: ClientError{Message: "no provider"}}, false},
		{"abort", &AbortError{ClientError: ClientError{Message: "cancelled"}}, false},
		{"parse", NewParseError("not json", nil), true},
		{"rate limit", &RateLimitError{ProviderError: ProviderError{
			ClientError: ClientError{Message: "429"}, StatusCode: 429, Retryable: true}}, true},
		{"server", &ServerError{ProviderError: ProviderError{
			ClientError: ClientError{Message: "500"}, StatusCode: 500, Retryable: true}}, true},
		{"request timeout", &RequestTimeoutError{ClientError: ClientError{Message: "timeout"}}, true},
		{"provider retryable", &ProviderError{
			ClientError: ClientError{Message: "transient"}, Retryable: true}, true},
		{"provider not retryable", &ProviderError{
			ClientError: ClientError{Message: "permanent"}, Retryable: false}, false},
		{"unknown", errors.New("mystery"), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.retryable {
				t.Errorf("IsRetryable(%T) = %v, want %v", tc.err, got, tc.retryable)
			}
		})
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &ServerError{ProviderError: ProviderError{
		ClientError: ClientError{Message: "server exploded", Cause: cause},
	}}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestParseErrorMessage(t *testing.T) {
	err := NewParseError("missing field", nil)
	if err.Error() == "" {
		t.Fatal("expected non-empty message")
	}
	var pe *ParseError
	if !errors.As(error(err), &pe) {
		t.Error("expected errors.As to match *ParseError")
	}
}
