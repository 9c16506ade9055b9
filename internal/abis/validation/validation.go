package validation

import (
	"regexp"
	"strings"

	"mockabis/internal/abis/models"
)

var versionPattern = regexp.MustCompile(`^\d+\.\d$`)

// Validate checks the correlation fields of a request for the given operation.
// Rules run in order and the first failure wins; nil means the request is valid.
func Validate(h models.RequestHeader, op models.MessageType) *models.FailureReason {
	if h.ID != "" && !strings.EqualFold(h.ID, string(op)) {
		return reason(models.ReasonInvalidID)
	}
	if h.RequestID == "" {
		return reason(models.ReasonMissingRequestID)
	}
	if h.RequestTime.IsZero() {
		return reason(models.ReasonMissingRequestTime)
	}
	if h.ReferenceID == "" {
		return reason(models.ReasonMissingReferenceID)
	}
	if h.Version != "" && !ValidVersion(h.Version) {
		return reason(models.ReasonInvalidVersion)
	}
	return nil
}

// ValidVersion reports whether v looks like <digits>.<digit>.
func ValidVersion(v string) bool {
	return versionPattern.MatchString(v)
}

func reason(r models.FailureReason) *models.FailureReason {
	return &r
}
