package queue

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeTask(t *testing.T) {
	tripID := uuid.New()

	data, err := EncodeTask(Task{TripID: tripID, Attempt: 1})
	require.NoError(t, err)

	task, err := DecodeTask(data)
	require.NoError(t, err)
	assert.Equal(t, tripID, task.TripID)
	assert.Equal(t, 1, task.Attempt)
}

func TestDecodeTask_Malformed(t *testing.T) {
	_, err := DecodeTask([]byte("not json"))
	assert.Error(t, err)
}

func TestDecodeTask_MissingTripID(t *testing.T) {
	_, err := DecodeTask([]byte(`{"attempt": 0}`))
	assert.Error(t, err)
}

func TestShouldRetry(t *testing.T) {
	assert.True(t, ShouldRetry(Task{Attempt: 0}))
	assert.False(t, ShouldRetry(Task{Attempt: 1}))
	assert.False(t, ShouldRetry(Task{Attempt: 5}))
}
