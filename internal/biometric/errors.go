package biometric

import "errors"

var (
	// ErrFetch covers transport failures, non-200 answers and an open breaker.
	ErrFetch = errors.New("unable to fetch biometric details")
	// ErrNoBiometrics means the document parsed but held no BDB segments.
	ErrNoBiometrics = errors.New("biometric not found in CBEFF")
	// ErrMalformed means the document is not a readable CBEFF.
	ErrMalformed = errors.New("malformed CBEFF document")
)
