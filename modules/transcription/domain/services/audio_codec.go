package services

import "context"

// AudioCodec is the external audio-codec tool collaborator used by
// Finalization (4.D step 3.c) and Retranscription (4.E step 1). Its failure
// mode is always a *codec_failure* domain error, never a panic.
type AudioCodec interface {
	// EncodeMP3 transcodes a mono 16-bit PCM WAV byte stream to MP3 at
	// 128kbps.
	EncodeMP3(ctx context.Context, wavBytes []byte) ([]byte, error)

	// ToWAV converts an arbitrary-container audio byte stream into mono,
	// 16kHz, 16-bit WAV bytes, used by retranscription when the downloaded
	// container is not already WAV.
	ToWAV(ctx context.Context, data []byte, sourceFormat string) ([]byte, error)
}
