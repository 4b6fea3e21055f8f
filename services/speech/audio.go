package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

const (
	MaxDurationSeconds = 60
	MaxFileSize        = 5 * 1024 * 1024
	AllowedExtension   = ".wav"

	targetSampleRate = 16000
)

var (
	ErrAudioTooLong = fmt.Errorf("audio longer than %d seconds", MaxDurationSeconds)
	ErrInvalidAudio = errors.New("invalid WAV audio")
)

type waveHeader struct {
	RiffTag       [4]byte
	FileSize      uint32
	WaveTag       [4]byte
	FmtTag        [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataTag       [4]byte
	DataSize      uint32
}

// parseWaveHeader reads the canonical 44 byte RIFF/WAVE header.
func parseWaveHeader(data []byte) (*waveHeader, error) {
	if len(data) < 44 {
		return nil, fmt.Errorf("%w: header too short", ErrInvalidAudio)
	}
	var h waveHeader
	if err := binary.Read(bytes.NewReader(data[:44]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}
	if string(h.RiffTag[:]) != "RIFF" || string(h.WaveTag[:]) != "WAVE" {
		return nil, fmt.Errorf("%w: not a RIFF/WAVE file", ErrInvalidAudio)
	}
	return &h, nil
}

func (h *waveHeader) duration() float64 {
	if h.ByteRate == 0 {
		return 0
	}
	return float64(h.DataSize) / float64(h.ByteRate)
}

// linear16Mono reports whether the audio can go to the recognizer as is.
func (h *waveHeader) linear16Mono() bool {
	return h.AudioFormat == 1 && h.NumChannels == 1 && h.BitsPerSample == 16 && h.SampleRate == targetSampleRate
}

// normalizeWAV returns 16 kHz mono LINEAR16 audio, converting with ffmpeg
// when the upload is in another layout.
func normalizeWAV(data []byte) ([]byte, error) {
	h, err := parseWaveHeader(data)
	if err != nil {
		return nil, err
	}
	if h.duration() > MaxDurationSeconds {
		return nil, ErrAudioTooLong
	}
	if h.linear16Mono() {
		return data, nil
	}

	in, err := os.CreateTemp("", "audio-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(in.Name())
	defer in.Close()
	if _, err := in.Write(data); err != nil {
		return nil, fmt.Errorf("failed to save audio file: %w", err)
	}

	out, err := os.CreateTemp("", "converted-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create output temp file: %w", err)
	}
	defer os.Remove(out.Name())
	out.Close()

	if err := convertAudio(in.Name(), out.Name()); err != nil {
		return nil, err
	}
	return os.ReadFile(out.Name())
}

func convertAudio(inputPath, outputPath string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in system PATH: %v", err)
	}

	cmd := exec.Command("ffmpeg",
		"-y",
		"-i", inputPath,
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		outputPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %s", stderr.String())
	}
	return nil
}
