package githubapi

import (
	"errors"
	"fmt"
	"time"
)

const (
	tokenRequiredMessageConstant           = "authentication token required"
	authenticationErrorTemplateConstant    = "authentication failed (status %d)"
	notFoundErrorTemplateConstant          = "%s not found"
	rateLimitErrorTemplateConstant         = "rate limited, retry after %s"
	unexpectedStatusErrorTemplateConstant  = "unexpected API response %d: %s"
	pageLimitExceededErrorTemplateConstant = "pagination exceeded %d pages"
	transportErrorCreationTemplateConstant = "unable to create HTTP transport: %w"
)

// ErrTokenRequired indicates a client was requested without a token.
var ErrTokenRequired = errors.New(tokenRequiredMessageConstant)

// AuthenticationError reports a 401 or 403 response from the remote API.
type AuthenticationError struct {
	StatusCode int
}

// Error describes the authentication failure.
func (authenticationError AuthenticationError) Error() string {
	return fmt.Sprintf(authenticationErrorTemplateConstant, authenticationError.StatusCode)
}

// NotFoundError reports a 404 response. The remote API conflates missing and
// inaccessible private resources, so both surface as this one kind.
type NotFoundError struct {
	Resource string
}

// Error describes the missing resource.
func (notFoundError NotFoundError) Error() string {
	return fmt.Sprintf(notFoundErrorTemplateConstant, notFoundError.Resource)
}

// RateLimitError reports primary or secondary rate limiting. The client never
// retries on its own; callers decide whether waiting is acceptable.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Error describes the rate limit condition.
func (rateLimitError RateLimitError) Error() string {
	return fmt.Sprintf(rateLimitErrorTemplateConstant, rateLimitError.RetryAfter)
}

// UnexpectedStatusError reports any other non-2xx response.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
}

// Error describes the unexpected response.
func (statusError UnexpectedStatusError) Error() string {
	return fmt.Sprintf(unexpectedStatusErrorTemplateConstant, statusError.StatusCode, statusError.Body)
}

// PageLimitError reports a pagination walk that exceeded the safety cap.
type PageLimitError struct {
	PageLimit int
}

// Error describes the cap breach.
func (pageLimitError PageLimitError) Error() string {
	return fmt.Sprintf(pageLimitExceededErrorTemplateConstant, pageLimitError.PageLimit)
}
