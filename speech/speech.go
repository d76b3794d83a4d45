// Package speech is the optional voice front-end: a websocket client for a
// vosk-server instance that turns raw audio into utterance text. Dial failure
// or any mid-stream error degrades the caller to text input; nothing in this
// package is required for a working session.
package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Config locates and parameterizes the recognition server.
type Config struct {
	// ServerURL is the vosk-server websocket endpoint, e.g. ws://localhost:2700.
	ServerURL string

	// SampleRate of the audio stream in Hz. Default: 16000.
	SampleRate int

	// HandshakeTimeout bounds the dial. Default: 10s.
	HandshakeTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	return c
}

// Recognizer holds one live connection to the recognition server. Not safe
// for concurrent use; one utterance is recognized at a time.
type Recognizer struct {
	conn       *websocket.Conn
	sampleRate int
}

// audio is streamed in chunks of this many bytes.
const chunkSize = 4000

// result is the server's per-message payload: partial hypotheses while audio
// streams, a final text after EOF.
type result struct {
	Text    string `json:"text"`
	Partial string `json:"partial"`
}

// Dial connects to the recognition server and sends the stream configuration.
// An unreachable server returns an error; the caller falls back to text input.
func Dial(ctx context.Context, cfg Config) (*Recognizer, error) {
	cfg = cfg.withDefaults()

	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, cfg.ServerURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial recognition server: %w", err)
	}

	configFrame := fmt.Sprintf(`{"config": {"sample_rate": %d}}`, cfg.SampleRate)
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, []byte(configFrame)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send stream config: %w", err)
	}

	log.Printf("[SPEECH] Connected to recognition server at %s", cfg.ServerURL)
	return &Recognizer{conn: conn, sampleRate: cfg.SampleRate}, nil
}

// Recognize streams one utterance of raw PCM audio and returns the
// recognized text. Segment texts the server finalizes mid-stream are joined
// with the post-EOF final result.
func (r *Recognizer) Recognize(ctx context.Context, audio io.Reader) (string, error) {
	// Cancellation unblocks the read loop by closing the connection.
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = r.conn.Close()
		case <-stop:
		}
	}()
	defer close(stop)

	var segments []string
	buf := make([]byte, chunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			_ = r.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if werr := r.conn.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
				return "", fmt.Errorf("send audio chunk: %w", werr)
			}
			if text, rerr := r.readResult(); rerr != nil {
				return "", rerr
			} else if text != "" {
				segments = append(segments, text)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read audio stream: %w", err)
		}
	}

	_ = r.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := r.conn.WriteMessage(websocket.TextMessage, []byte(`{"eof": 1}`)); err != nil {
		return "", fmt.Errorf("finalize stream: %w", err)
	}
	if text, err := r.readResult(); err != nil {
		return "", err
	} else if text != "" {
		segments = append(segments, text)
	}

	return strings.TrimSpace(strings.Join(segments, " ")), nil
}

// readResult reads one server message and returns its finalized text, or ""
// for a partial hypothesis.
func (r *Recognizer) readResult() (string, error) {
	_ = r.conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	_, msg, err := r.conn.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("read recognition result: %w", err)
	}

	var res result
	if err := json.Unmarshal(msg, &res); err != nil {
		return "", fmt.Errorf("decode recognition result: %w", err)
	}
	return strings.TrimSpace(res.Text), nil
}

// Close shuts the connection down cleanly.
func (r *Recognizer) Close() error {
	_ = r.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
		time.Now().Add(2*time.Second))
	return r.conn.Close()
}
