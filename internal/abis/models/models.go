package models

import (
	"strconv"
	"strings"
	"time"
)

// MessageType tags a delivery with the operation that produced it. The values
// double as the expected request id literals.
type MessageType string

const (
	MessageInsert   MessageType = "mosip.abis.insert"
	MessageDelete   MessageType = "mosip.abis.delete"
	MessageIdentify MessageType = "mosip.abis.identify"
)

func (m MessageType) IsValid() bool {
	switch m {
	case MessageInsert, MessageDelete, MessageIdentify:
		return true
	}
	return false
}

// ParseMessageType maps a request id literal to its operation, ignoring case.
func ParseMessageType(id string) (MessageType, bool) {
	m := MessageType(strings.ToLower(strings.TrimSpace(id)))
	return m, m.IsValid()
}

// Return values carried in returnValue.
const (
	ReturnSuccess = "1"
	ReturnFailure = "2"
)

// RequestHeader holds the correlation fields shared by every operation.
type RequestHeader struct {
	ID          string       `json:"id"`
	Version     string       `json:"version,omitempty"`
	RequestID   string       `json:"requestId"`
	RequestTime *RequestTime `json:"requesttime"`
	ReferenceID string       `json:"referenceId"`
}

func (h RequestHeader) Header() RequestHeader { return h }

// Request is implemented by every inbound operation.
type Request interface {
	Header() RequestHeader
}

type InsertRequest struct {
	RequestHeader
	ReferenceURL string `json:"referenceURL,omitempty"`
}

type DeleteRequest struct {
	RequestHeader
}

type IdentifyRequest struct {
	RequestHeader
	ReferenceURL string   `json:"referenceUrl,omitempty"`
	Gallery      *Gallery `json:"gallery,omitempty"`
	Flags        *Flags   `json:"flags,omitempty"`
}

type Gallery struct {
	ReferenceIDs []GalleryEntry `json:"referenceIds"`
}

type GalleryEntry struct {
	ReferenceID string `json:"referenceId"`
}

// IDs returns the gallery reference ids in request order, duplicates included.
func (g *Gallery) IDs() []string {
	if g == nil {
		return nil
	}
	ids := make([]string, 0, len(g.ReferenceIDs))
	for _, e := range g.ReferenceIDs {
		ids = append(ids, e.ReferenceID)
	}
	return ids
}

// Flags arrive as strings on the wire.
type Flags struct {
	MaxResults string `json:"maxResults,omitempty"`
	TargetFPIR string `json:"targetFPIR,omitempty"`
	Flag1      string `json:"flag1,omitempty"`
	Flag2      string `json:"flag2,omitempty"`
}

// Limit returns maxResults as a positive int, or 0 when absent or invalid.
func (f *Flags) Limit() int {
	if f == nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(f.MaxResults))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// BiometricSegment is one BDB extracted from a CBEFF document.
type BiometricSegment struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`
	Hash    string `json:"hash"`
}

// EnrollmentRecord is what the enrollment store keeps per reference id.
type EnrollmentRecord struct {
	ReferenceID  string             `json:"referenceId"`
	RequestID    string             `json:"requestId"`
	ReferenceURL string             `json:"referenceUrl,omitempty"`
	Biometrics   []BiometricSegment `json:"biometrics,omitempty"`
	InsertedAt   time.Time          `json:"insertedAt"`
}

// Hashes returns the distinct biometric hashes of the record.
func (r *EnrollmentRecord) Hashes() []string {
	seen := make(map[string]struct{}, len(r.Biometrics))
	out := make([]string, 0, len(r.Biometrics))
	for _, b := range r.Biometrics {
		if _, ok := seen[b.Hash]; ok || b.Hash == "" {
			continue
		}
		seen[b.Hash] = struct{}{}
		out = append(out, b.Hash)
	}
	return out
}

// SharesBiometric reports whether the two records have any hash in common.
func (r *EnrollmentRecord) SharesBiometric(other *EnrollmentRecord) bool {
	if other == nil {
		return false
	}
	mine := make(map[string]struct{}, len(r.Biometrics))
	for _, h := range r.Hashes() {
		mine[h] = struct{}{}
	}
	for _, h := range other.Hashes() {
		if _, ok := mine[h]; ok {
			return true
		}
	}
	return false
}
