package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sessioncore/server/modules/transcription/domain/entities"
)

func TestCoalesceSegments_MergesShortSameLabelSegments(t *testing.T) {
	segments := []entities.SpeakerSegment{
		{StartS: 0, EndS: 3, Label: "Speaker 1", DurationS: 3},
		{StartS: 3, EndS: 6, Label: "Speaker 1", DurationS: 3},
	}
	out := coalesceSegments(segments)
	assert.Len(t, out, 1)
	assert.Equal(t, 0.0, out[0].StartS)
	assert.Equal(t, 6.0, out[0].EndS)
}

func TestCoalesceSegments_TrailingShortSegmentMergesIntoPredecessor(t *testing.T) {
	segments := []entities.SpeakerSegment{
		{StartS: 0, EndS: 8, Label: "Speaker 1", DurationS: 8},
		{StartS: 8, EndS: 9, Label: "Speaker 2", DurationS: 1},
	}
	out := coalesceSegments(segments)
	assert.Len(t, out, 1)
	assert.Equal(t, "Speaker 1", out[0].Label)
	assert.Equal(t, 9.0, out[0].EndS)
}

func TestCoalesceSegments_ShortDifferentLabelMergesForwardIntoSuccessor(t *testing.T) {
	segments := []entities.SpeakerSegment{
		{StartS: 0, EndS: 8, Label: "Speaker 1", DurationS: 8},
		{StartS: 8, EndS: 8.5, Label: "Speaker 2", DurationS: 0.5},
		{StartS: 8.5, EndS: 15, Label: "Speaker 3", DurationS: 6.5},
	}
	out := coalesceSegments(segments)
	require := assert.New(t)
	require.Len(out, 2)
	require.Equal("Speaker 1", out[0].Label)
	require.Equal("Speaker 3", out[1].Label)
	require.Equal(8.0, out[1].StartS)
}

func TestCoalesceSegments_DropsSubOneSecondSegment(t *testing.T) {
	segments := []entities.SpeakerSegment{
		{StartS: 0, EndS: 0.5, Label: "Speaker 1", DurationS: 0.5},
	}
	out := coalesceSegments(segments)
	assert.Empty(t, out)
}

func TestCoalesceSegments_Empty(t *testing.T) {
	assert.Nil(t, coalesceSegments(nil))
}

func TestIsPunctuationOnly(t *testing.T) {
	assert.True(t, isPunctuationOnly("... !!"))
	assert.False(t, isPunctuationOnly("hello."))
}

func TestRMS_SilenceBelowThreshold(t *testing.T) {
	silence := make([]int16, 1000)
	assert.Less(t, rms(silence), silenceRMSThreshold)
}

func TestRMS_LoudAboveThreshold(t *testing.T) {
	loud := make([]int16, 1000)
	for i := range loud {
		if i%2 == 0 {
			loud[i] = 20000
		} else {
			loud[i] = -20000
		}
	}
	assert.Greater(t, rms(loud), silenceRMSThreshold)
}

func TestDecodeWAV_RoundTripsEncodeWAVBytes(t *testing.T) {
	samples := []int16{100, -100, 200, -200, 300}
	wav := encodeWAVBytes(samples, 16000)

	decoded, rate, err := decodeWAV(wav)
	assert.NoError(t, err)
	assert.Equal(t, 16000, rate)
	assert.Equal(t, samples, decoded)
}

func TestDecodeWAV_RejectsShortPayload(t *testing.T) {
	_, _, err := decodeWAV([]byte("short"))
	assert.Error(t, err)
}

func TestSliceSamples_ClampsToBounds(t *testing.T) {
	samples := make([]int16, 1600) // 0.1s @ 16kHz
	out := sliceSamples(samples, 16000, -1, 10)
	assert.Len(t, out, 1600)
}

func TestSliceSamples_EmptyWhenStartAfterEnd(t *testing.T) {
	samples := make([]int16, 1600)
	assert.Nil(t, sliceSamples(samples, 16000, 5, 1))
}
