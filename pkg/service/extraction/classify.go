package extraction

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/sashabaranov/go-openai"
	"github.com/secmon-lab/tasklens/pkg/utils/retry"
	"google.golang.org/genai"
)

// statusCodePattern only accepts a code introduced by a status word, so numbers that
// merely appear in a message ("request 503") are not read as HTTP statuses
var statusCodePattern = regexp.MustCompile(`\b(?:status(?:\s+code)?|code|http|error)\s*[:=]?\s*([45]\d\d)\b`)

var permanentMarkers = []string{
	"unauthorized",
	"unauthenticated",
	"permission denied",
	"permission_denied",
	"forbidden",
	"invalid api key",
	"invalid_api_key",
	"api key not valid",
	"invalid argument",
	"invalid_argument",
	"invalid_request",
	"bad request",
	"authentication_error",
	"not_found_error",
}

var transientMarkers = []string{
	"rate limit",
	"rate_limit",
	"resource exhausted",
	"resource_exhausted",
	"overloaded",
	"unavailable",
	"internal error",
	"timeout",
	"timed out",
	"connection reset",
	"connection refused",
	"eof",
}

// providerStatus reads the HTTP status carried by a typed provider SDK error
func providerStatus(err error) (int, bool) {
	var claudeErr *anthropic.Error
	if errors.As(err, &claudeErr) && claudeErr.StatusCode > 0 {
		return claudeErr.StatusCode, true
	}
	var openaiErr *openai.APIError
	if errors.As(err, &openaiErr) && openaiErr.HTTPStatusCode > 0 {
		return openaiErr.HTTPStatusCode, true
	}
	var openaiReqErr *openai.RequestError
	if errors.As(err, &openaiReqErr) && openaiReqErr.HTTPStatusCode > 0 {
		return openaiReqErr.HTTPStatusCode, true
	}
	var geminiErr *genai.APIError
	if errors.As(err, &geminiErr) && geminiErr.Code > 0 {
		return geminiErr.Code, true
	}
	return 0, false
}

func classifyStatus(code int) (retry.Class, bool) {
	switch {
	case code == 429 || code >= 500:
		return retry.Transient, true
	case code >= 400:
		return retry.Permanent, true
	}
	return retry.Transient, false
}

// Classify decides whether an LLM error is worth retrying. Typed provider statuses
// win, then a status code named in the message, then keywords: 429 and 5xx are
// transient, other 4xx are permanent. Unknown errors are treated as transient so
// that network hiccups are retried.
func Classify(err error) retry.Class {
	if err == nil {
		return retry.Transient
	}
	if errors.Is(err, context.Canceled) {
		return retry.Permanent
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return retry.Transient
	}

	if code, ok := providerStatus(err); ok {
		if class, ok := classifyStatus(code); ok {
			return class
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return retry.Transient
	}

	msg := strings.ToLower(err.Error())
	if m := statusCodePattern.FindStringSubmatch(msg); m != nil {
		code, _ := strconv.Atoi(m[1])
		if class, ok := classifyStatus(code); ok {
			return class
		}
	}

	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return retry.Permanent
		}
	}
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return retry.Transient
		}
	}
	return retry.Transient
}
