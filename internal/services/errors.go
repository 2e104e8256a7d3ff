package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/pkg/errors"
)

type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

type AuthError struct{ Message string }

func (e *AuthError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

// UpstreamError is a failed provider call. Message is the provider's own text.
type UpstreamError struct {
	Provider string
	Status   int
	Message  string
}

func (e *UpstreamError) Error() string { return e.Message }

// FramingError is an upstream stream event that could not be decoded.
type FramingError struct {
	Provider string
	Err      error
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("malformed %s stream event: %v", e.Provider, e.Err)
}

func (e *FramingError) Unwrap() error { return e.Err }

// classifyOpenAIError turns an openai-go error into an UpstreamError or a
// FramingError. Already classified errors pass through.
func classifyOpenAIError(provider string, err error) error {
	if err == nil {
		return nil
	}

	var upstream *UpstreamError
	var framing *FramingError
	if errors.As(err, &upstream) || errors.As(err, &framing) {
		return err
	}

	if isDecodeError(err) {
		return &FramingError{Provider: provider, Err: err}
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		return &UpstreamError{Provider: provider, Status: apiErr.StatusCode, Message: msg}
	}

	return &UpstreamError{Provider: provider, Message: err.Error()}
}

// anthropicStatus matches the HTTP failure text produced by the langchaingo
// Anthropic client: "API returned unexpected status code: 401: invalid x-api-key".
var anthropicStatus = regexp.MustCompile(`(?s)API returned unexpected status code: (\d+)(?:: (.*))?$`)

const anthropicWrapPrefix = "anthropic: failed to create message: "

// classifyAnthropicError reduces a langchaingo Anthropic error to the
// provider's own message and status. Undecodable stream events become a
// FramingError.
func classifyAnthropicError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if isDecodeError(err) {
		return &FramingError{Provider: provider, Err: err}
	}

	msg := strings.TrimPrefix(err.Error(), anthropicWrapPrefix)
	status := 0
	if m := anthropicStatus.FindStringSubmatch(msg); m != nil {
		status, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			msg = m[2]
		}
	}
	return &UpstreamError{Provider: provider, Status: status, Message: msg}
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
