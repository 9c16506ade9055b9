package biometric

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockabis/internal/platform/config"
)

const sampleCBEFF = `<?xml version="1.0" encoding="UTF-8"?>
<BIR xmlns="http://standards.iso.org/iso-iec/19785/-3/ed-2/">
  <BIRInfo><Integrity>false</Integrity></BIRInfo>
  <BIR>
    <BDBInfo><Type>Finger</Type><Subtype>Left</Subtype><Subtype>IndexFinger</Subtype></BDBInfo>
    <BDB>ZmluZ2VyLWRhdGE=</BDB>
  </BIR>
  <BIR>
    <BDBInfo><Type>Iris</Type><Subtype>Right</Subtype></BDBInfo>
    <BDB>aXJpcy1kYXRh</BDB>
  </BIR>
</BIR>`

func testConfig() config.BiometricConfig {
	return config.BiometricConfig{
		Timeout:          time.Second,
		Retries:          0,
		BreakerMaxFails:  2,
		BreakerOpenFor:   time.Minute,
		BreakerHalfOpens: 1,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseCBEFF(t *testing.T) {
	segments, err := ParseCBEFF([]byte(sampleCBEFF))
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "Finger", segments[0].Type)
	assert.Equal(t, "Left IndexFinger", segments[0].Subtype)
	assert.Len(t, segments[0].Hash, 64)
	assert.NotEqual(t, segments[0].Hash, segments[1].Hash)

	again, err := ParseCBEFF([]byte(sampleCBEFF))
	require.NoError(t, err)
	assert.Equal(t, segments[0].Hash, again[0].Hash, "hash is deterministic")
}

func TestParseCBEFFErrors(t *testing.T) {
	_, err := ParseCBEFF([]byte(`<BIR><BIR><BDBInfo><Type>Face</Type></BDBInfo></BIR></BIR>`))
	assert.ErrorIs(t, err, ErrNoBiometrics)

	_, err = ParseCBEFF([]byte(`not xml`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFetchSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cbeff":
			w.Header().Set("Content-Type", "application/xml")
			_, _ = io.WriteString(w, sampleCBEFF)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(testConfig(), discardLogger(), WithHTTPClient(srv.Client()))

	t.Run("returns hashed segments", func(t *testing.T) {
		segments, err := client.FetchSegments(context.Background(), srv.URL+"/cbeff")
		require.NoError(t, err)
		assert.Len(t, segments, 2)
	})

	t.Run("not found maps to fetch error", func(t *testing.T) {
		_, err := client.FetchSegments(context.Background(), srv.URL+"/missing")
		assert.ErrorIs(t, err, ErrFetch)
	})
}

func TestFetchSegmentsOpensBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(testConfig(), discardLogger(), WithHTTPClient(srv.Client()))
	for i := 0; i < 4; i++ {
		_, err := client.FetchSegments(context.Background(), srv.URL)
		assert.ErrorIs(t, err, ErrFetch)
	}
	assert.Equal(t, int32(2), hits.Load(), "breaker stops calls after two consecutive failures")
}
