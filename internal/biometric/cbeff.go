package biometric

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strings"

	"mockabis/internal/abis/models"
)

type birDocument struct {
	XMLName xml.Name    `xml:"BIR"`
	Records []birRecord `xml:"BIR"`
}

type birRecord struct {
	Info struct {
		Type    []string `xml:"Type"`
		Subtype []string `xml:"Subtype"`
	} `xml:"BDBInfo"`
	BDB string `xml:"BDB"`
}

// ParseCBEFF extracts one segment per BDB, identified by the SHA-256 of its
// payload. Identical payloads therefore hash identically across subjects,
// which is what the duplicate check keys on.
func ParseCBEFF(doc []byte) ([]models.BiometricSegment, error) {
	var root birDocument
	if err := xml.NewDecoder(bytes.NewReader(doc)).Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	segments := make([]models.BiometricSegment, 0, len(root.Records))
	for _, rec := range root.Records {
		bdb := strings.TrimSpace(rec.BDB)
		if bdb == "" {
			continue
		}
		sum := sha256.Sum256([]byte(bdb))
		segments = append(segments, models.BiometricSegment{
			Type:    strings.Join(rec.Info.Type, " "),
			Subtype: strings.Join(rec.Info.Subtype, " "),
			Hash:    hex.EncodeToString(sum[:]),
		})
	}
	if len(segments) == 0 {
		return nil, ErrNoBiometrics
	}
	return segments, nil
}
