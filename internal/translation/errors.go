package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"codeberg.org/snonux/polyglot/internal/apperrors"
)

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, err)
	}

	return classifyTransport(err)
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, err)
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyStatus(apiErrPtr.Code, err)
	}

	return classifyTransport(err)
}

func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Transient(fmt.Errorf("request timed out: %w", err))
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return apperrors.Validation(fmt.Errorf("malformed response: %w", err))
	}

	return apperrors.Transient(err)
}

func classifyStatus(status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return apperrors.RateLimit(err)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.Auth(err)
	case status == http.StatusRequestTimeout || status >= 500:
		return apperrors.Transient(err)
	case status >= 400:
		return apperrors.BadRequest(err)
	default:
		return apperrors.Transient(err)
	}
}
