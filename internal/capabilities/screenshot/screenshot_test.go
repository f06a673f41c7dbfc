package screenshot

import (
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeCapturer struct {
	screens []Screen
	err     error
}

func (f fakeCapturer) Capture(ctx context.Context) ([]Screen, error) {
	return f.screens, f.err
}

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	return img
}

func TestCaptureAndUploadReturnsOneEntryPerScreen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Token") != "secret-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	capturer := fakeCapturer{screens: []Screen{
		{Index: 0, Name: "primary", Image: solidImage(4, 4)},
		{Index: 1, Name: "secondary", Image: solidImage(8, 2)},
	}}
	uploader := Uploader{BaseURI: server.URL, Token: "secret-token"}

	res, cErr := CaptureAndUpload(context.Background(), capturer, uploader)
	if cErr != nil {
		t.Fatalf("unexpected error: %v", cErr)
	}
	uploaded := res.([]Uploaded)
	if len(uploaded) != 2 {
		t.Fatalf("expected 2 uploaded screenshots, got %d", len(uploaded))
	}
	if uploaded[0].Width != 4 || uploaded[0].Height != 4 {
		t.Fatalf("unexpected dimensions: %+v", uploaded[0])
	}
	if uploaded[1].ScreenName != "secondary" {
		t.Fatalf("unexpected screen name: %+v", uploaded[1])
	}
}

func TestCaptureAndUploadFailsWhenCaptureErrors(t *testing.T) {
	capturer := fakeCapturer{err: context.DeadlineExceeded}
	uploader := Uploader{BaseURI: "http://unused", Token: "t"}
	_, cErr := CaptureAndUpload(context.Background(), capturer, uploader)
	if cErr == nil || cErr.Code != "SCREENSHOT_CAPTURE_FAILED" {
		t.Fatalf("expected SCREENSHOT_CAPTURE_FAILED, got %v", cErr)
	}
}

func TestCaptureAndUploadFailsWhenNoScreensAvailable(t *testing.T) {
	capturer := fakeCapturer{}
	uploader := Uploader{BaseURI: "http://unused", Token: "t"}
	_, cErr := CaptureAndUpload(context.Background(), capturer, uploader)
	if cErr == nil || cErr.Code != "SCREENSHOT_CAPTURE_FAILED" {
		t.Fatalf("expected SCREENSHOT_CAPTURE_FAILED for zero screens, got %v", cErr)
	}
}

func TestCaptureAndUploadFailsWhenUploadRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	capturer := fakeCapturer{screens: []Screen{{Index: 0, Name: "only", Image: solidImage(2, 2)}}}
	uploader := Uploader{BaseURI: server.URL, Token: "wrong"}

	_, cErr := CaptureAndUpload(context.Background(), capturer, uploader)
	if cErr == nil || cErr.Code != "SCREENSHOT_UPLOAD_FAILED" {
		t.Fatalf("expected SCREENSHOT_UPLOAD_FAILED, got %v", cErr)
	}
}
