// Package continuation encodes the call-scoped state a phone call carries
// from one webhook turn to the next. The voice platform only echoes back the
// URLs it was handed, so the call id, the dialog state and the call start
// travel inside those URLs as a token.
package continuation

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrMalformedToken is returned for tokens that cannot be decoded.
	ErrMalformedToken = errors.New("malformed continuation token")

	// ErrInvalidSignature is returned when a signed token fails verification.
	ErrInvalidSignature = errors.New("invalid continuation token signature")
)

var encoding = base64.RawURLEncoding

// Token is the state round-tripped between turns.
type Token struct {
	CallID    string
	State     string
	StartedAt time.Time
}

type payload struct {
	CallID    string `json:"c"`
	State     string `json:"s,omitempty"`
	StartedAt int64  `json:"t,omitempty"`
}

// Codec encodes and decodes tokens. With a secret, tokens carry an
// HMAC-SHA256 signature and tampered tokens are rejected; without one they
// are opaque only.
type Codec struct {
	secret []byte
}

// NewCodec creates a Codec. An empty secret disables signing.
func NewCodec(secret string) *Codec {
	c := &Codec{}
	if secret != "" {
		c.secret = []byte(secret)
	}
	return c
}

// Signed reports whether the codec signs its tokens.
func (c *Codec) Signed() bool {
	return len(c.secret) > 0
}

// Encode returns the URL-safe form of t.
func (c *Codec) Encode(t Token) (string, error) {
	p := payload{CallID: t.CallID, State: t.State}
	if !t.StartedAt.IsZero() {
		p.StartedAt = t.StartedAt.UnixMilli()
	}

	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal continuation: %w", err)
	}

	body := encoding.EncodeToString(data)
	if !c.Signed() {
		return body, nil
	}
	return body + "." + encoding.EncodeToString(c.sign(body)), nil
}

// Decode parses raw and verifies its signature when the codec is signed.
func (c *Codec) Decode(raw string) (Token, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Token{}, ErrMalformedToken
	}

	body, sig, hasSig := strings.Cut(raw, ".")
	if c.Signed() {
		if !hasSig {
			return Token{}, ErrInvalidSignature
		}
		got, err := encoding.DecodeString(sig)
		if err != nil || !hmac.Equal(got, c.sign(body)) {
			return Token{}, ErrInvalidSignature
		}
	}

	data, err := encoding.DecodeString(body)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	var p payload
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if p.CallID == "" {
		return Token{}, fmt.Errorf("%w: missing call id", ErrMalformedToken)
	}

	t := Token{CallID: p.CallID, State: p.State}
	if p.StartedAt > 0 {
		t.StartedAt = time.UnixMilli(p.StartedAt).UTC()
	}
	return t, nil
}

func (c *Codec) sign(body string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(body))
	return mac.Sum(nil)
}
