package providers

import (
	"bytes"
	"encoding/binary"
	"context"
	"fmt"

	"github.com/braheezy/shine-mp3/pkg/mp3"

	"sessioncore/server/modules/transcription/domain/services"
	"sessioncore/server/seedwork/domain"
)

const (
	pcmSampleRateHz  = 16000
	pcmChannels      = 1
	pcmBitsPerSample = 16
	mp3BlockSize     = 1152 * pcmChannels
)

// InProcessAudioCodec implements AudioCodec entirely in-process: MP3 encoding
// via shine-mp3 (pure Go, no ffmpeg dependency) and WAV framing by hand with
// encoding/binary, operating on byte buffers rather than files since the
// finalization pipeline never touches disk.
type InProcessAudioCodec struct{}

// NewInProcessAudioCodec constructs an InProcessAudioCodec.
func NewInProcessAudioCodec() *InProcessAudioCodec {
	return &InProcessAudioCodec{}
}

// EncodeMP3 transcodes mono 16-bit PCM WAV bytes to MP3 at 128kbps.
func (c *InProcessAudioCodec) EncodeMP3(ctx context.Context, wavBytes []byte) ([]byte, error) {
	samples, err := pcmSamplesFromWAV(wavBytes)
	if err != nil {
		return nil, domain.NewDomainError("CODEC_FAILURE", domain.ErrCodecFailure, "invalid wav input", err)
	}

	for len(samples)%mp3BlockSize != 0 {
		samples = append(samples, 0)
	}

	// Encode at the WAV's own sample rate (header bytes 24-27) so the MP3
	// plays back at the speed the PCM was captured at.
	sampleRateHz := int(binary.LittleEndian.Uint32(wavBytes[24:28]))

	var out bytes.Buffer
	encoder := mp3.NewEncoder(sampleRateHz, pcmChannels)
	encoder.Write(&out, samples)
	return out.Bytes(), nil
}

// ToWAV accepts only the "wav" source format: the bytes are checked for a
// RIFF/WAVE header and returned unchanged, with no resampling or
// downmixing to mono 16kHz. Any other container is rejected as a codec
// failure, since transcoding from
// compressed containers requires an external tool this codebase does not
// carry.
func (c *InProcessAudioCodec) ToWAV(ctx context.Context, data []byte, sourceFormat string) ([]byte, error) {
	if sourceFormat == "wav" {
		if _, err := pcmSamplesFromWAV(data); err != nil {
			return nil, domain.NewDomainError("CODEC_FAILURE", domain.ErrCodecFailure, "invalid wav input", err)
		}
		return data, nil
	}
	return nil, domain.NewDomainError("CODEC_FAILURE", domain.ErrCodecFailure,
		fmt.Sprintf("unsupported source format %q", sourceFormat), nil)
}

var _ services.AudioCodec = (*InProcessAudioCodec)(nil)

const wavHeaderSize = 44

func pcmSamplesFromWAV(wavBytes []byte) ([]int16, error) {
	if len(wavBytes) < wavHeaderSize {
		return nil, fmt.Errorf("wav payload too short: %d bytes", len(wavBytes))
	}
	if string(wavBytes[0:4]) != "RIFF" || string(wavBytes[8:12]) != "WAVE" {
		return nil, fmt.Errorf("missing RIFF/WAVE header")
	}
	data := wavBytes[wavHeaderSize:]
	count := len(data) / 2
	samples := make([]int16, count)
	for i := 0; i < count; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
	}
	return samples, nil
}
