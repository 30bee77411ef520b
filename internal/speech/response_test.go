package speech

import (
	"errors"
	"testing"
)

func TestDecodeResponseShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want Response
	}{
		{"object url", `{"audioFile":"https://cdn.example/a.mp3","audioLengthInSeconds":9}`, URLResponse{URL: "https://cdn.example/a.mp3"}},
		{"bare string", ` "https://cdn.example/b.mp3" `, URLResponse{URL: "https://cdn.example/b.mp3"}},
		{"url wins over inline", `{"audioFile":"https://cdn.example/c.mp3","encodedAudio":"aGk="}`, URLResponse{URL: "https://cdn.example/c.mp3"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeResponse([]byte(tc.body))
			if err != nil {
				t.Fatalf("DecodeResponse: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestDecodeResponseInline(t *testing.T) {
	got, err := DecodeResponse([]byte(`{"audioFile":"","encodedAudio":"aGVsbG8="}`))
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	inline, ok := got.(InlineAudioResponse)
	if !ok {
		t.Fatalf("expected inline response, got %T", got)
	}
	if string(inline.Audio) != "hello" {
		t.Fatalf("audio = %q", inline.Audio)
	}
}

func TestDecodeResponseUnrecognized(t *testing.T) {
	for _, body := range []string{``, `{}`, `{"status":"ok"}`, `[1,2]`, `42`, `""`, `{"encodedAudio":""}`} {
		_, err := DecodeResponse([]byte(body))
		var unrecognized *UnrecognizedResponseError
		if !errors.As(err, &unrecognized) {
			t.Fatalf("body %q: expected UnrecognizedResponseError, got %v", body, err)
		}
	}
}

func TestDecodeResponseBadBase64(t *testing.T) {
	if _, err := DecodeResponse([]byte(`{"encodedAudio":"***"}`)); err == nil {
		t.Fatal("expected base64 error")
	}
}
