package response

import (
	"strconv"

	"mockabis/internal/abis/models"
)

// Canned analytics attached to every candidate.
var defaultAnalytics = models.Analytics{
	Confidence:    "90",
	InternalScore: "90",
}

// Build maps an outcome to the response sent on both channels. Correlation
// fields are copied from the request header; id is echoed as received.
// Failures outside the vocabulary become INTERNAL_ERROR_UNKNOWN.
func Build(h models.RequestHeader, outcome models.Outcome) models.Response {
	resp := models.Response{
		ID:           h.ID,
		RequestID:    h.RequestID,
		ResponseTime: h.RequestTime,
	}

	if outcome.Failed() {
		reason := models.ReasonOrDefault(*outcome.Failure)
		resp.ReturnValue = models.ReturnFailure
		resp.FailureReason = &reason
		return resp
	}

	resp.ReturnValue = models.ReturnSuccess
	if outcome.Identify {
		candidates := make([]models.Candidate, 0, len(outcome.Candidates))
		for _, id := range outcome.Candidates {
			candidates = append(candidates, models.Candidate{ReferenceID: id, Analytics: defaultAnalytics})
		}
		resp.CandidateList = &models.CandidateList{
			Count:      strconv.Itoa(len(candidates)),
			Candidates: candidates,
		}
	}
	return resp
}

// InternalError is the response for an unexpected failure while processing.
func InternalError(h models.RequestHeader) models.Response {
	return Build(h, models.Failure(models.ReasonInternalErrorUnknown, 0))
}
