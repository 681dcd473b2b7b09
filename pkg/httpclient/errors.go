package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/Akshaybondre123/First-Startup/pkg/errors"
)

// APIError is a non-2xx response decoded from the standard envelope. It
// unwraps to the matching pkg/errors sentinel, so callers can test it with
// errors.Is(err, apperrors.ErrNotFound) and the like.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return apperrors.ErrNotFound
	case e.Status == http.StatusBadRequest:
		return apperrors.ErrInvalidInput
	case e.Status == http.StatusConflict && e.Code == "ALREADY_EXISTS":
		return apperrors.ErrAlreadyExists
	case e.Status == http.StatusConflict:
		return apperrors.ErrConflict
	case e.Status == http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return apperrors.ErrForbidden
	case e.Status == http.StatusTooManyRequests:
		return apperrors.ErrRateLimited
	case e.Status == http.StatusServiceUnavailable:
		return apperrors.ErrServiceUnavail
	case e.Status >= 500:
		return apperrors.ErrInternal
	}
	return nil
}

type envelope struct {
	Message string `json:"message"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

// ParseResponseError consumes and closes resp.Body and returns an *APIError.
// Bodies that are not the standard envelope keep their raw text as message.
func ParseResponseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("read body: %v", err)}
	}

	apiErr := &APIError{Status: resp.StatusCode, Message: string(body)}
	var env envelope
	if json.Unmarshal(body, &env) == nil {
		switch {
		case env.Error != nil:
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Fields = env.Error.Fields
		case env.Message != "":
			apiErr.Message = env.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// IsClientError reports whether status is 4xx.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
