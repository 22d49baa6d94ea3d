package tts

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, tokenStatus, synthStatus int) (*Client, *[]string) {
	t.Helper()
	var bodies []string

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "test-key" {
			t.Errorf("subscription key header = %q", got)
		}
		w.WriteHeader(tokenStatus)
		w.Write([]byte("test-token"))
	}))
	t.Cleanup(tokenSrv.Close)

	synthSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/ssml+xml" {
			t.Errorf("Content-Type = %q", got)
		}
		if got := r.Header.Get("X-Microsoft-OutputFormat"); got != "audio-16khz-128kbitrate-mono-mp3" {
			t.Errorf("output format = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
		w.WriteHeader(synthStatus)
		w.Write([]byte("ID3 fake mp3"))
	}))
	t.Cleanup(synthSrv.Close)

	c, err := New(Config{
		Key:               "test-key",
		TokenEndpoint:     tokenSrv.URL,
		SynthesisEndpoint: synthSrv.URL,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, &bodies
}

func TestSynthesize(t *testing.T) {
	c, bodies := newTestClient(t, http.StatusOK, http.StatusOK)

	audio, err := c.Synthesize(context.Background(), "Dangerous surf conditions.", "en-US-AriaNeural", "newscast", "slow")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(audio) != "ID3 fake mp3" {
		t.Errorf("audio = %q", audio)
	}

	if len(*bodies) != 1 {
		t.Fatalf("synthesis requests = %d", len(*bodies))
	}
	ssml := (*bodies)[0]
	for _, want := range []string{
		`<voice name="en-US-AriaNeural">`,
		`<prosody rate="slow">`,
		`style="newscast"`,
		"Dangerous surf conditions.",
	} {
		if !strings.Contains(ssml, want) {
			t.Errorf("ssml missing %q:\n%s", want, ssml)
		}
	}
}

func TestSynthesize_EscapesText(t *testing.T) {
	c, bodies := newTestClient(t, http.StatusOK, http.StatusOK)

	if _, err := c.Synthesize(context.Background(), "waves > 6 feet & rising", "en-US-AriaNeural", "", ""); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	ssml := (*bodies)[0]
	if !strings.Contains(ssml, "waves &gt; 6 feet &amp; rising") {
		t.Errorf("text not escaped:\n%s", ssml)
	}
	// Defaults fill missing style and rate.
	if !strings.Contains(ssml, `style="friendly"`) || !strings.Contains(ssml, `rate="medium"`) {
		t.Errorf("defaults not applied:\n%s", ssml)
	}
}

func TestSynthesize_AuthError(t *testing.T) {
	c, _ := newTestClient(t, http.StatusUnauthorized, http.StatusOK)
	_, err := c.Synthesize(context.Background(), "x", "v", "", "")
	if !errors.Is(err, ErrAuth) {
		t.Errorf("err = %v, want ErrAuth", err)
	}
}

func TestSynthesize_QuotaError(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, http.StatusTooManyRequests)
	_, err := c.Synthesize(context.Background(), "x", "v", "", "")
	if !errors.Is(err, ErrQuota) {
		t.Errorf("err = %v, want ErrQuota", err)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{Region: "eastus"}); err == nil {
		t.Error("missing key should fail")
	}
	if _, err := New(Config{Key: "k"}); err == nil {
		t.Error("missing region and endpoints should fail")
	}
	if _, err := New(Config{Key: "k", Region: "eastus"}); err != nil {
		t.Errorf("valid config failed: %v", err)
	}
}
