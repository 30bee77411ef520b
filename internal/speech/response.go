package speech

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Response is the decoded reply of the speech provider. It is exactly one of
// URLResponse or InlineAudioResponse.
type Response interface {
	isResponse()
}

// URLResponse points at remotely hosted audio that must be downloaded.
type URLResponse struct {
	URL string
}

// InlineAudioResponse carries the audio bytes in the reply itself.
type InlineAudioResponse struct {
	Audio []byte
}

func (URLResponse) isResponse()         {}
func (InlineAudioResponse) isResponse() {}

// UnrecognizedResponseError reports a provider reply matching none of the
// known shapes.
type UnrecognizedResponseError struct {
	Snippet string
}

func (e *UnrecognizedResponseError) Error() string {
	return fmt.Sprintf("unrecognized speech provider response: %s", e.Snippet)
}

type generateReply struct {
	AudioFile    *string `json:"audioFile"`
	EncodedAudio *string `json:"encodedAudio"`
}

// DecodeResponse classifies a provider reply body. Accepted shapes are an
// object with an audioFile URL, a bare JSON string URL, and an object with
// base64 encodedAudio. A non-empty audioFile wins when both fields are set.
func DecodeResponse(body []byte) (Response, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, &UnrecognizedResponseError{Snippet: "<empty>"}
	}

	switch trimmed[0] {
	case '"':
		var url string
		if err := json.Unmarshal(trimmed, &url); err != nil {
			return nil, &UnrecognizedResponseError{Snippet: snippet(trimmed)}
		}
		if url = strings.TrimSpace(url); url == "" {
			return nil, &UnrecognizedResponseError{Snippet: snippet(trimmed)}
		}
		return URLResponse{URL: url}, nil
	case '{':
		var reply generateReply
		if err := json.Unmarshal(trimmed, &reply); err != nil {
			return nil, &UnrecognizedResponseError{Snippet: snippet(trimmed)}
		}
		if reply.AudioFile != nil && strings.TrimSpace(*reply.AudioFile) != "" {
			return URLResponse{URL: strings.TrimSpace(*reply.AudioFile)}, nil
		}
		if reply.EncodedAudio != nil && strings.TrimSpace(*reply.EncodedAudio) != "" {
			audio, err := base64.StdEncoding.DecodeString(strings.TrimSpace(*reply.EncodedAudio))
			if err != nil {
				return nil, fmt.Errorf("decode encodedAudio: %w", err)
			}
			return InlineAudioResponse{Audio: audio}, nil
		}
	}
	return nil, &UnrecognizedResponseError{Snippet: snippet(trimmed)}
}

func snippet(body []byte) string {
	const limit = 200
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
