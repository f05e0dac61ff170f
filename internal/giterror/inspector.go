package giterror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v82/github"

	gateerrors "github.com/sirseerhq/sirseer-gate/internal/errors"
)

// Inspector provides methods for analyzing GitHub API errors.
type Inspector interface {
	// IsAuthError returns true if the error represents an authentication or authorization failure.
	IsAuthError(err error) bool

	// IsNotFoundError returns true if the error represents a resource not found error.
	IsNotFoundError(err error) bool

	// IsRateLimitError returns true if the error represents a primary or secondary rate limit.
	IsRateLimitError(err error) bool

	// IsNetworkError returns true if the error represents a network connectivity error.
	IsNetworkError(err error) bool

	// IsMalformedError returns true if the response body could not be decoded.
	IsMalformedError(err error) bool
}

// GitHubErrorInspector implements Inspector. It looks at the typed errors
// returned by go-github and the net package first and falls back to the error
// text, which is all the GraphQL client gives us.
type GitHubErrorInspector struct{}

// NewInspector creates a new GitHubErrorInspector.
func NewInspector() Inspector {
	return &GitHubErrorInspector{}
}

// IsAuthError checks if the error is an authentication or authorization error.
func (i *GitHubErrorInspector) IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if i.IsRateLimitError(err) || isTransportError(err) {
		return false
	}
	if code, ok := statusCode(err); ok {
		return code == http.StatusUnauthorized || code == http.StatusForbidden
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "403") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "forbidden") ||
		strings.Contains(errStr, "bad credentials") ||
		strings.Contains(errStr, "authentication")
}

// IsNotFoundError checks if the error is a not found error.
func (i *GitHubErrorInspector) IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if isTransportError(err) {
		return false
	}
	if code, ok := statusCode(err); ok {
		return code == http.StatusNotFound
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "404") ||
		strings.Contains(errStr, "not found") ||
		strings.Contains(errStr, "could not resolve to a")
}

// IsRateLimitError checks if the error is a rate limit error.
func (i *GitHubErrorInspector) IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}
	if code, ok := statusCode(err); ok && code == http.StatusTooManyRequests {
		return true
	}
	if isTransportError(err) {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429")
}

// IsNetworkError checks if the error is a network connectivity error.
func (i *GitHubErrorInspector) IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "dial tcp") ||
		strings.Contains(errStr, "tls handshake") ||
		strings.Contains(errStr, "network is unreachable")
}

// IsMalformedError checks if the error came from decoding a response body.
func (i *GitHubErrorInspector) IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gateerrors.ErrMalformedPage) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr)
}

// Wrap marks err as a fetch failure and attaches the sentinel for its cause,
// if one applies. Errors that already carry errors.ErrFetch are returned as is.
func Wrap(inspector Inspector, err error) error {
	if err == nil || errors.Is(err, gateerrors.ErrFetch) {
		return err
	}

	var cause error
	switch {
	case inspector.IsMalformedError(err):
		cause = gateerrors.ErrMalformedPage
	case inspector.IsRateLimitError(err):
		cause = gateerrors.ErrRateLimit
	case inspector.IsAuthError(err):
		cause = gateerrors.ErrInvalidToken
	case inspector.IsNotFoundError(err):
		cause = gateerrors.ErrNotFound
	case inspector.IsNetworkError(err):
		cause = gateerrors.ErrNetworkFailure
	}

	if cause == nil || errors.Is(err, cause) {
		return fmt.Errorf("%w: %w", gateerrors.ErrFetch, err)
	}
	return fmt.Errorf("%w: %w: %w", gateerrors.ErrFetch, cause, err)
}

// isTransportError reports whether err happened below HTTP. Such errors
// carry host:port text that must not be read as a status code.
func isTransportError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}

// statusCode extracts the HTTP status from a go-github error response.
func statusCode(err error) (int, bool) {
	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode, true
	}
	return 0, false
}
