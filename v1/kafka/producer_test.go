package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	written [][]kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestSendWritesOneBatch(t *testing.T) {
	writer := &fakeWriter{}
	p := newProducer("orders", writer, nil)

	err := p.Send(context.Background(), []Message{
		{Key: []byte("ROUTER"), Value: []byte("v0"), Headers: map[string]string{"origin": "roundtrip", "correlationId": "c0"}},
		{Key: nil, Value: []byte("v1")},
	})
	require.NoError(t, err)
	require.Len(t, writer.written, 1)

	batch := writer.written[0]
	require.Len(t, batch, 2)
	assert.Equal(t, []byte("ROUTER"), batch[0].Key)
	assert.Equal(t, []kafka.Header{
		{Key: "correlationId", Value: []byte("c0")},
		{Key: "origin", Value: []byte("roundtrip")},
	}, batch[0].Headers)
	assert.Nil(t, batch[1].Key)
	assert.Nil(t, batch[1].Headers)

	require.NoError(t, p.Close())
	assert.True(t, writer.closed)
}

func TestSendEmptyBatchIsNoop(t *testing.T) {
	writer := &fakeWriter{}
	require.NoError(t, newProducer("orders", writer, nil).Send(context.Background(), nil))
	assert.Empty(t, writer.written)
}

func TestSendFailure(t *testing.T) {
	writer := &fakeWriter{err: kafka.WriteErrors{kafka.NotLeaderForPartition}}
	err := newProducer("orders", writer, nil).Send(context.Background(), []Message{{Value: []byte("v")}})

	require.Error(t, err)
	assert.True(t, IsSendError(err))
	var writeErrs kafka.WriteErrors
	assert.True(t, errors.As(err, &writeErrs))
}
