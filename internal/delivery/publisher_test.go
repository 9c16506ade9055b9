package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"mockabis/internal/abis/models"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, rs...)
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func TestKafkaPublisher(t *testing.T) {
	reason := models.ReasonBiometricNotFoundInCBEFF
	d := models.Delivery{
		Response: models.Response{
			ID:            "mosip.abis.identify",
			RequestID:     "r7",
			ReturnValue:   models.ReturnFailure,
			FailureReason: &reason,
		},
		MessageType: models.MessageIdentify,
	}

	t.Run("produces keyed record with headers", func(t *testing.T) {
		p := &fakeProducer{}
		require.NoError(t, NewKafkaPublisher(p, "abis-outbound").Publish(context.Background(), d))

		require.Len(t, p.records, 1)
		rec := p.records[0]
		assert.Equal(t, "abis-outbound", rec.Topic)
		assert.Equal(t, []byte("r7"), rec.Key)
		assert.Contains(t, rec.Headers, kgo.RecordHeader{Key: HeaderMessageType, Value: []byte("mosip.abis.identify")})
		assert.Contains(t, rec.Headers, kgo.RecordHeader{Key: HeaderReturnValue, Value: []byte("2")})

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Value, &body))
		assert.Equal(t, "404", body["failureReason"])
	})

	t.Run("wraps broker errors", func(t *testing.T) {
		p := &fakeProducer{err: errors.New("not leader")}
		err := NewKafkaPublisher(p, "abis-outbound").Publish(context.Background(), d)
		assert.ErrorContains(t, err, "not leader")
		assert.NotErrorIs(t, err, ErrEncoding)
	})
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := NewLogPublisher(logger).Publish(context.Background(), models.Delivery{
		Response:    models.Response{RequestID: "r1", ReturnValue: models.ReturnSuccess},
		MessageType: models.MessageDelete,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"message_type":"mosip.abis.delete"`)
	assert.Contains(t, buf.String(), `"request_id":"r1"`)
}
