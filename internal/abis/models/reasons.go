package models

import (
	"fmt"
	"strconv"
	"strings"
)

// FailureReason is the stable code carried in the failureReason field of a
// failed response. The numbering follows the ABIS failure reasons for the
// protocol errors and the mock SDK response statuses for biometric errors.
type FailureReason int

const (
	ReasonInternalErrorUnknown          FailureReason = 1
	ReasonMissingReferenceID            FailureReason = 6
	ReasonMissingRequestID              FailureReason = 7
	ReasonUnableToFetchBiometricDetails FailureReason = 8
	ReasonMissingRequestTime            FailureReason = 10
	ReasonInvalidVersion                FailureReason = 14
	ReasonInvalidID                     FailureReason = 15
	ReasonInvalidInput                  FailureReason = 401
	ReasonMissingInput                  FailureReason = 402
	ReasonQualityCheckFailed            FailureReason = 403
	ReasonBiometricNotFoundInCBEFF      FailureReason = 404
	ReasonMatchingOfBiometricDataFailed FailureReason = 405
	ReasonPoorDataQuality               FailureReason = 406
	ReasonUnknownError                  FailureReason = 500
)

var reasonNames = map[FailureReason]string{
	ReasonInternalErrorUnknown:          "INTERNAL_ERROR_UNKNOWN",
	ReasonMissingReferenceID:            "MISSING_REFERENCEID",
	ReasonMissingRequestID:              "MISSING_REQUESTID",
	ReasonUnableToFetchBiometricDetails: "UNABLE_TO_FETCH_BIOMETRIC_DETAILS",
	ReasonMissingRequestTime:            "MISSING_REQUESTTIME",
	ReasonInvalidVersion:                "INVALID_VERSION",
	ReasonInvalidID:                     "INVALID_ID",
	ReasonInvalidInput:                  "INVALID_INPUT",
	ReasonMissingInput:                  "MISSING_INPUT",
	ReasonQualityCheckFailed:            "QUALITY_CHECK_FAILED",
	ReasonBiometricNotFoundInCBEFF:      "BIOMETRIC_NOT_FOUND_IN_CBEFF",
	ReasonMatchingOfBiometricDataFailed: "MATCHING_OF_BIOMETRIC_DATA_FAILED",
	ReasonPoorDataQuality:               "POOR_DATA_QUALITY",
	ReasonUnknownError:                  "UNKNOWN_ERROR",
}

// Reasons returns every known reason, ordered by code.
func Reasons() []FailureReason {
	return []FailureReason{
		ReasonInternalErrorUnknown,
		ReasonMissingReferenceID,
		ReasonMissingRequestID,
		ReasonUnableToFetchBiometricDetails,
		ReasonMissingRequestTime,
		ReasonInvalidVersion,
		ReasonInvalidID,
		ReasonInvalidInput,
		ReasonMissingInput,
		ReasonQualityCheckFailed,
		ReasonBiometricNotFoundInCBEFF,
		ReasonMatchingOfBiometricDataFailed,
		ReasonPoorDataQuality,
		ReasonUnknownError,
	}
}

func (r FailureReason) IsValid() bool {
	_, ok := reasonNames[r]
	return ok
}

func (r FailureReason) Name() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return reasonNames[ReasonInternalErrorUnknown]
}

func (r FailureReason) Code() string {
	return strconv.Itoa(int(r))
}

func (r FailureReason) String() string {
	return r.Name()
}

// ReasonOrDefault substitutes INTERNAL_ERROR_UNKNOWN for codes outside the vocabulary.
func ReasonOrDefault(r FailureReason) FailureReason {
	if r.IsValid() {
		return r
	}
	return ReasonInternalErrorUnknown
}

// ParseReason accepts either the numeric code or the name.
func ParseReason(s string) (FailureReason, error) {
	s = strings.TrimSpace(s)
	if code, err := strconv.Atoi(s); err == nil {
		r := FailureReason(code)
		if !r.IsValid() {
			return 0, fmt.Errorf("unknown failure reason code %d", code)
		}
		return r, nil
	}
	for r, name := range reasonNames {
		if strings.EqualFold(name, s) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown failure reason %q", s)
}

func (r FailureReason) MarshalText() ([]byte, error) {
	return []byte(r.Code()), nil
}

func (r *FailureReason) UnmarshalText(b []byte) error {
	parsed, err := ParseReason(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
