package aws

import (
	"context"
	"errors"

	"github.com/aws/smithy-go"

	"github.com/rioslabs/reaper/providers"
)

// EC2 API error codes, grouped by how the reaper must react to them.
var (
	throttleCodes = map[string]bool{
		"Throttling":               true,
		"ThrottlingException":      true,
		"RequestLimitExceeded":     true,
		"RequestThrottled":         true,
		"TooManyRequestsException": true,
	}
	transientCodes = map[string]bool{
		"RequestTimeout":          true,
		"RequestTimeoutException": true,
		"ServiceUnavailable":      true,
		"Unavailable":             true,
		"InternalError":           true,
		"InternalFailure":         true,
	}
	authCodes = map[string]bool{
		"UnauthorizedOperation": true,
		"AuthFailure":           true,
		"AccessDenied":          true,
		"AccessDeniedException": true,
		"OptInRequired":         true,
	}
	notFoundCodes = map[string]bool{
		"InvalidInstanceID.NotFound": true,
	}
	invalidCodes = map[string]bool{
		"InvalidInstanceID.Malformed": true,
		"InvalidParameterValue":       true,
		"MissingParameter":            true,
		"ValidationError":             true,
	}
)

// classify wraps an EC2 error into a providers.Error with the kind the
// retry and abort policy keys on.
func classify(op, instanceID string, err error) error {
	if err == nil {
		return nil
	}

	kind := providers.KindUnknown

	var apiErr smithy.APIError
	switch {
	case errors.As(err, &apiErr):
		kind = kindForCode(apiErr.ErrorCode())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		kind = providers.KindUnknown
	default:
		// Connection resets and DNS blips surface as plain errors.
		kind = providers.KindTransient
	}

	return &providers.Error{Kind: kind, Op: op, InstanceID: instanceID, Err: err}
}

func kindForCode(code string) providers.ErrorKind {
	switch {
	case throttleCodes[code]:
		return providers.KindThrottled
	case transientCodes[code]:
		return providers.KindTransient
	case authCodes[code]:
		return providers.KindAuthDenied
	case notFoundCodes[code]:
		return providers.KindNotFound
	case invalidCodes[code]:
		return providers.KindInvalidRequest
	default:
		return providers.KindUnknown
	}
}
