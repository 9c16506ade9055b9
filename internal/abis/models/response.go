package models

import "time"

// Response is returned synchronously and delivered on the outbound channel.
// ReturnValue "1" is success; "2" is failure and always carries FailureReason.
type Response struct {
	ID            string         `json:"id"`
	RequestID     string         `json:"requestId"`
	ResponseTime  *RequestTime   `json:"responsetime"`
	ReturnValue   string         `json:"returnValue"`
	FailureReason *FailureReason `json:"failureReason,omitempty"`
	CandidateList *CandidateList `json:"candidateList,omitempty"`
}

type CandidateList struct {
	Count      string      `json:"count"`
	Candidates []Candidate `json:"candidates"`
}

type Candidate struct {
	ReferenceID string    `json:"referenceId"`
	Analytics   Analytics `json:"analytics"`
}

// Analytics are canned values; the mock does no real scoring.
type Analytics struct {
	Confidence    string `json:"confidence"`
	InternalScore string `json:"internalScore"`
}

// Outcome is the result of processing a request: either success, possibly
// with candidates, or a failure reason. Delay is how long the deferred
// delivery should wait.
type Outcome struct {
	Failure    *FailureReason
	Candidates []string
	Delay      time.Duration
	// Identify marks an outcome whose success response carries a candidate list.
	Identify bool
}

func Success(delay time.Duration) Outcome {
	return Outcome{Delay: delay}
}

func Failure(reason FailureReason, delay time.Duration) Outcome {
	return Outcome{Failure: &reason, Delay: delay}
}

func (o Outcome) Failed() bool {
	return o.Failure != nil
}

// Delivery is a response queued for the outbound channel.
type Delivery struct {
	Response    Response      `json:"response"`
	MessageType MessageType   `json:"messageType"`
	Delay       time.Duration `json:"-"`
}
