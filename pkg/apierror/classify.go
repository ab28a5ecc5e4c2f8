package apierror

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Class is the coarse kind of a failure.
type Class string

const (
	ClassCanceled  Class = "canceled"
	ClassAuth      Class = "auth"
	ClassForbidden Class = "forbidden"
	ClassNetwork   Class = "network"
	ClassOther     Class = "other"
)

var cancelTokens = []string{"canceled", "cancelled", "aborted"}

// Classify decides which class v belongs to. Cancellation wins over every other class.
func Classify(v any) Class {
	if IsCanceled(v) {
		return ClassCanceled
	}
	err, ok := v.(error)
	if !ok {
		return ClassOther
	}
	switch StatusCode(err) {
	case http.StatusUnauthorized:
		return ClassAuth
	case http.StatusForbidden:
		return ClassForbidden
	}
	if IsNetwork(err) {
		return ClassNetwork
	}
	return ClassOther
}

// IsCanceled reports whether v represents an expected cancellation. Any single
// signal is enough: a cancellation error in the chain, a cancellation-named
// error type, a request whose context was done at failure time, or a message
// mentioning cancellation. A request that failed on the client's own timeout
// while the caller's context was still live is not a cancellation.
func IsCanceled(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return mentionsCancel(val)
	case error:
		var re *RequestError
		if errors.As(val, &re) {
			if re.ContextDone {
				return true
			}
			if isTimeout(re.Err) {
				return false
			}
		}
		if errors.Is(val, context.Canceled) || errors.Is(val, ErrCanceled) {
			return true
		}
		if errors.Is(val, context.DeadlineExceeded) {
			return re == nil
		}
		if hasCancelTypeName(val) {
			return true
		}
		return mentionsCancel(cancelText(val))
	}
	return false
}

// cancelText is the part of err that may name a cancellation. Request method
// and URL are left out so an id or path segment cannot match.
func cancelText(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Payload.Message + " " + he.Payload.Error
	}
	var re *RequestError
	if errors.As(err, &re) {
		if re.Err == nil {
			return ""
		}
		return re.Err.Error()
	}
	return err.Error()
}

// isTimeout reports a deadline or timeout raised by the transport itself.
func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsAuth reports a 401 response.
func IsAuth(err error) bool { return StatusCode(err) == http.StatusUnauthorized }

// IsForbidden reports a 403 response.
func IsForbidden(err error) bool { return StatusCode(err) == http.StatusForbidden }

// IsNotFound reports a 404 response.
func IsNotFound(err error) bool { return StatusCode(err) == http.StatusNotFound }

// IsValidation reports a client-side validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNetwork reports a transport failure that was not a cancellation.
func IsNetwork(err error) bool {
	var re *RequestError
	if !errors.As(err, &re) {
		return false
	}
	return !IsCanceled(err)
}

func mentionsCancel(msg string) bool {
	msg = strings.ToLower(msg)
	for _, tok := range cancelTokens {
		if strings.Contains(msg, tok) {
			return true
		}
	}
	return false
}

// hasCancelTypeName walks the chain looking for error types named like
// CanceledError or AbortError, which some transports and SDKs use.
func hasCancelTypeName(err error) bool {
	for err != nil {
		name := fmt.Sprintf("%T", err)
		if strings.Contains(name, "Canceled") || strings.Contains(name, "Cancelled") || strings.Contains(name, "Abort") {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
