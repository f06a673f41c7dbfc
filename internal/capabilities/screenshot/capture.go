package screenshot

import (
	"context"
	"fmt"

	"github.com/kbinani/screenshot"
)

// DefaultCapturer captures every attached display via the kbinani/screenshot
// backend (no ecosystem library in the reference corpus covers screen
// capture; this is the standard Go library for the concern).
type DefaultCapturer struct{}

func (DefaultCapturer) Capture(ctx context.Context) ([]Screen, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, fmt.Errorf("no active displays detected")
	}

	var screens []Screen
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			return screens, ctx.Err()
		}
		bounds := screenshot.GetDisplayBounds(i)
		img, err := screenshot.CaptureRect(bounds)
		if err != nil || img == nil {
			continue // skip this screen, continue with the rest
		}
		screens = append(screens, Screen{
			Index: i,
			Name:  fmt.Sprintf("display-%d", i),
			Image: img,
		})
	}
	if len(screens) == 0 {
		return nil, fmt.Errorf("all screens failed to capture")
	}
	return screens, nil
}
