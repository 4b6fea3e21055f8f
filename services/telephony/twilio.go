package telephony

import (
	"errors"
	"net/http"
	"strings"

	"github.com/twilio/twilio-go/client"
)

var ErrInvalidSignature = errors.New("invalid twilio signature")

// CallStatus is the subset of a Twilio status callback the service acts on.
type CallStatus struct {
	CallSID    string
	CallStatus string
	From       string
	To         string
	Duration   string
}

// Ended reports whether the call has reached a final state.
func (s CallStatus) Ended() bool {
	switch s.CallStatus {
	case "completed", "busy", "failed", "no-answer", "canceled":
		return true
	}
	return false
}

type TwilioVerifier struct {
	validator client.RequestValidator
	enabled   bool
}

// NewTwilioVerifier returns a verifier; an empty auth token disables checking.
func NewTwilioVerifier(authToken string) *TwilioVerifier {
	return &TwilioVerifier{
		validator: client.NewRequestValidator(authToken),
		enabled:   authToken != "",
	}
}

func (v *TwilioVerifier) Enabled() bool { return v.enabled }

// Parse validates the X-Twilio-Signature header against the form body and
// returns the call status fields.
func (v *TwilioVerifier) Parse(r *http.Request) (CallStatus, error) {
	if err := r.ParseForm(); err != nil {
		return CallStatus{}, err
	}
	if v.enabled {
		params := make(map[string]string, len(r.PostForm))
		for k, vals := range r.PostForm {
			if len(vals) > 0 {
				params[k] = vals[0]
			}
		}
		sig := r.Header.Get("X-Twilio-Signature")
		if sig == "" || !v.validator.Validate(RequestURL(r), params, sig) {
			return CallStatus{}, ErrInvalidSignature
		}
	}
	return CallStatus{
		CallSID:    r.PostForm.Get("CallSid"),
		CallStatus: strings.ToLower(r.PostForm.Get("CallStatus")),
		From:       r.PostForm.Get("From"),
		To:         r.PostForm.Get("To"),
		Duration:   r.PostForm.Get("CallDuration"),
	}, nil
}

// RequestURL rebuilds the public URL Twilio signed, honouring proxy headers.
func RequestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	host := r.Host
	if h := r.Header.Get("X-Forwarded-Host"); h != "" {
		host = h
	}
	return scheme + "://" + host + r.URL.RequestURI()
}
