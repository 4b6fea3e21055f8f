package speech

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"
)

// Transcriber turns an uploaded utterance into text.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte, lang string) (string, error)
}

type recognizer interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
}

var languageCodes = map[string]string{
	"en": "en-IN",
	"ml": "ml-IN",
	"hi": "hi-IN",
	"ta": "ta-IN",
}

// LanguageCode maps a session language to a recognizer locale.
func LanguageCode(lang string) string {
	if code, ok := languageCodes[strings.ToLower(lang)]; ok {
		return code
	}
	if strings.Contains(lang, "-") {
		return lang
	}
	return "en-IN"
}

// GoogleTranscriber uses Cloud Speech-to-Text synchronous recognition.
type GoogleTranscriber struct {
	client recognizer
	closer func() error
}

func NewGoogleTranscriber(ctx context.Context, credentialsFile string) (*GoogleTranscriber, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize speech client: %w", err)
	}
	return &GoogleTranscriber{client: client, closer: client.Close}, nil
}

func (t *GoogleTranscriber) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer()
}

func (t *GoogleTranscriber) Transcribe(ctx context.Context, wav []byte, lang string) (string, error) {
	audio, err := normalizeWAV(wav)
	if err != nil {
		return "", err
	}

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   targetSampleRate,
			LanguageCode:      LanguageCode(lang),
			AudioChannelCount: 1,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}
	resp, err := t.client.Recognize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("speech recognition failed: %w", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, strings.TrimSpace(result.Alternatives[0].Transcript))
		}
	}
	return strings.Join(parts, " "), nil
}
