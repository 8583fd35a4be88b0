// Package capture produces encoded still images from either a camera frame
// source or a user-supplied file. A Session owns at most one camera at a
// time and guarantees the camera is released on every exit path.
package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strings"
	"sync"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/rs/zerolog/log"
)

const (
	// MaxImageBytes is the maximum size of an encoded image (10MB).
	MaxImageBytes = 10 * 1024 * 1024

	jpegQuality = 95
)

// EncodedImage is an in-memory encoded image ready for classification.
type EncodedImage struct {
	Data     []byte
	MIMEType string
}

// Base64 returns the image data as standard base64.
func (e *EncodedImage) Base64() string {
	return base64.StdEncoding.EncodeToString(e.Data)
}

// DataURI returns the image as a data URI, the wire format the classify
// endpoint accepts.
func (e *EncodedImage) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", e.MIMEType, e.Base64())
}

// State is the capture session state.
type State int

const (
	// StateIdle means no camera is held. File selection stays in Idle.
	StateIdle State = iota
	// StateCameraActive means the session holds a live frame source.
	StateCameraActive
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCameraActive:
		return "camera-active"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Constraints describe the requested camera stream.
type Constraints struct {
	// Width and Height are ideal dimensions, not hard requirements.
	Width      int
	Height     int
	FacingMode string
}

// DefaultConstraints is the preferred camera configuration.
func DefaultConstraints() Constraints {
	return Constraints{Width: 1280, Height: 720, FacingMode: "environment"}
}

// MinimalConstraints is the fallback used when the device rejects the
// default constraints.
func MinimalConstraints() Constraints {
	return Constraints{}
}

// FrameSource is a camera-like device that yields video frames. Open must
// not leave a partially acquired device behind on failure.
type FrameSource interface {
	Open(ctx context.Context, c Constraints) error
	// ReadFrame returns the current frame. It fails if no frame is
	// ready yet.
	ReadFrame(ctx context.Context) (image.Image, error)
	Close() error
}

// Session drives photo capture. It moves between Idle and CameraActive;
// file selection bypasses camera states entirely.
type Session struct {
	mu     sync.Mutex
	state  State
	source FrameSource
	image  *EncodedImage
}

// NewSession creates a capture session backed by the given frame source.
// The source may be nil if only file selection is used.
func NewSession(source FrameSource) *Session {
	return &Session{state: StateIdle, source: source}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Image returns the most recently captured or selected image, if any.
func (s *Session) Image() *EncodedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// StartCamera acquires the frame source. On a constraints failure it
// retries once with minimal constraints. Any failure leaves the session in
// Idle with the source closed.
func (s *Session) StartCamera(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCameraActive {
		return fmt.Errorf("camera already active")
	}
	if s.source == nil {
		return &OpenError{Kind: OpenDeviceNotFound, Err: fmt.Errorf("no frame source configured")}
	}

	err := s.source.Open(ctx, DefaultConstraints())
	if err != nil {
		openErr := classifyOpenError(err)
		if openErr.Kind == OpenConstraintsUnsupported {
			log.Warn().Err(err).Msg("camera constraints unsupported, retrying with minimal constraints")
			s.source.Close()
			err = s.source.Open(ctx, MinimalConstraints())
			if err == nil {
				s.state = StateCameraActive
				return nil
			}
			openErr = classifyOpenError(err)
		}
		s.source.Close()
		log.Error().Err(err).Stringer("kind", openErr.Kind).Msg("failed to open camera")
		return openErr
	}

	s.state = StateCameraActive
	return nil
}

// CapturePhoto snapshots the current frame as a JPEG, releases the camera,
// and returns the encoded image. A missing or empty frame fails without
// changing state so the caller can try again.
func (s *Session) CapturePhoto(ctx context.Context) (*EncodedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCameraActive {
		return nil, fmt.Errorf("camera is not active")
	}

	frame, err := s.source.ReadFrame(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	bounds := frame.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("camera frame has no dimensions yet")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	if buf.Len() > MaxImageBytes {
		return nil, fmt.Errorf("captured image too large: %d bytes exceeds limit of %d bytes", buf.Len(), MaxImageBytes)
	}

	s.source.Close()
	s.state = StateIdle

	img := &EncodedImage{Data: buf.Bytes(), MIMEType: "image/jpeg"}
	s.image = img
	log.Debug().Int("bytes", len(img.Data)).Msg("photo captured")
	return img, nil
}

// SelectFile accepts a user-chosen file. Only image payloads are accepted;
// anything else is silently ignored and SelectFile returns (nil, nil).
// Oversized images are rejected with an error. File selection never touches
// camera state.
func (s *Session) SelectFile(data []byte) (*EncodedImage, error) {
	if int64(len(data)) > MaxImageBytes {
		return nil, fmt.Errorf("image too large: %d bytes exceeds limit of %d bytes", len(data), MaxImageBytes)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		log.Debug().Str("mimeType", mimeType).Msg("ignoring non-image file")
		return nil, nil
	}
	// Sniffing can be fooled by a forged header; require a decodable image.
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		log.Debug().Err(err).Msg("ignoring undecodable image file")
		return nil, nil
	}

	img := &EncodedImage{Data: data, MIMEType: mimeType}

	s.mu.Lock()
	s.image = img
	s.mu.Unlock()

	return img, nil
}

// Reset discards any held image and returns the session to Idle, releasing
// the camera if it is active.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.image = nil
	s.releaseLocked()
}

// Close releases the camera if held. It is idempotent and safe to defer on
// every path that starts a camera.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseLocked()
	return nil
}

func (s *Session) releaseLocked() {
	if s.state == StateCameraActive && s.source != nil {
		if err := s.source.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close frame source")
		}
	}
	s.state = StateIdle
}
