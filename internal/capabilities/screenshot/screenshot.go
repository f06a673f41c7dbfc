// Package screenshot implements the system.screenshot capability: capture
// every attached screen independently, encode each as JPEG, and upload the
// results to the configured file server.
//
// Multi-screen semantics (a single screen's capture failure is skipped,
// not fatal; only an all-screens failure fails the call) are grounded on
// systemscreenshot.cpp's Qt QScreen::grabWindow loop, modeled here behind
// the ScreenCapturer interface so the capture backend stays swappable and
// testable without a real display.
package screenshot

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openclaw/openclaw-node/internal/capabilities"
)

const jpegQuality = 90

// Screen is one captured, encoded screen.
type Screen struct {
	Index int
	Name  string
	Image image.Image
}

// ScreenCapturer captures every attached screen. Implementations should
// skip (not fail) an individual screen that cannot be captured; Capture
// returns only the screens that succeeded.
type ScreenCapturer interface {
	Capture(ctx context.Context) ([]Screen, error)
}

// Uploaded describes one screenshot that was captured and uploaded.
type Uploaded struct {
	Format      string `json:"format"`
	MimeType    string `json:"mimeType"`
	URL         string `json:"url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ScreenIndex int    `json:"screenIndex"`
	ScreenName  string `json:"screenName,omitempty"`
}

// Uploader performs the HTTP PUT upload contract against a file server.
type Uploader struct {
	BaseURI string
	Token   string
	Client  *http.Client
}

// CaptureAndUpload runs C9.4 (capture) composed with C9.5 (upload) and
// returns the array of successfully uploaded screenshots.
func CaptureAndUpload(ctx context.Context, capturer ScreenCapturer, uploader Uploader) (interface{}, *capabilities.Error) {
	screens, err := capturer.Capture(ctx)
	if err != nil || len(screens) == 0 {
		return nil, capabilities.NewError("SCREENSHOT_CAPTURE_FAILED", captureFailureMessage(err))
	}

	client := uploader.Client
	if client == nil {
		client = http.DefaultClient
	}

	var uploaded []Uploaded
	for _, screen := range screens {
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, screen.Image, &jpeg.Options{Quality: jpegQuality}); err != nil {
			continue
		}
		name := fileName()
		accessURL, err := uploader.put(ctx, client, name, buf.Bytes())
		if err != nil {
			continue
		}
		bounds := screen.Image.Bounds()
		uploaded = append(uploaded, Uploaded{
			Format:      "jpg",
			MimeType:    "image/jpeg",
			URL:         accessURL,
			Width:       bounds.Dx(),
			Height:      bounds.Dy(),
			ScreenIndex: screen.Index,
			ScreenName:  screen.Name,
		})
	}

	if len(uploaded) == 0 {
		return nil, capabilities.NewError("SCREENSHOT_UPLOAD_FAILED", "no screenshot was successfully uploaded")
	}
	return uploaded, nil
}

func captureFailureMessage(err error) string {
	if err != nil {
		return "screenshot capture failed: " + err.Error()
	}
	return "screenshot capture failed: no screens available"
}

func fileName() string {
	return fmt.Sprintf("screenshot-%s-%s.jpg", time.Now().Format("20060102_150405.000"), uuid.NewString())
}

func (u Uploader) put(ctx context.Context, client *http.Client, name string, data []byte) (string, error) {
	base := strings.TrimRight(u.BaseURI, "/")
	uploadURL := base + "/upload/" + url.PathEscape(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("X-Token", u.Token)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("upload returned status %d", resp.StatusCode)
	}

	return base + "/files/" + url.PathEscape(name), nil
}
