package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/hajimehoshi/go-mp3"

	"github.com/ewilliams-labs/guessfm/internal/core/domain"
)

// previews are ~30s clips; anything much larger is not a preview
const maxPreviewBytes = 8 << 20

// go-mp3 always decodes to 16-bit little-endian stereo
const mp3BytesPerFrame = 4

var previewClient = &http.Client{Timeout: 15 * time.Second}

// probePreview fetches a preview and reports whether a client could play it.
// Transport and status failures are recorded in the hint, not returned.
func probePreview(ctx context.Context, url string) domain.PreviewHint {
	hint := domain.PreviewHint{URL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		hint.Error = err.Error()
		return hint
	}

	// #nosec G107 -- URL is a preview URL from the catalog provider response
	resp, err := previewClient.Do(req)
	if err != nil {
		hint.Error = fmt.Sprintf("preview fetch failed: %v", err)
		return hint
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		hint.Error = fmt.Sprintf("preview fetch status %d", resp.StatusCode)
		return hint
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		hint.Error = "missing content type"
		return hint
	}
	hint.ContentType = mediaType

	body := io.LimitReader(resp.Body, maxPreviewBytes)
	switch {
	case mediaType == "audio/mpeg" || mediaType == "audio/mp3":
		seconds, err := measureMP3(body)
		if err != nil {
			hint.Error = err.Error()
			return hint
		}
		hint.Playable = true
		hint.Seconds = seconds
	case strings.HasPrefix(mediaType, "audio/"):
		// AAC/M4A previews: trust the server
		hint.Playable = true
	default:
		hint.Error = fmt.Sprintf("unsupported content type %s", mediaType)
	}
	return hint
}

func measureMP3(r io.Reader) (float64, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return 0, fmt.Errorf("preview decode failed: %w", err)
	}

	buf := make([]byte, 4096)
	var total int64
	for {
		n, err := decoder.Read(buf)
		total += int64(n)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, fmt.Errorf("preview read failed: %w", err)
		}
	}

	if total == 0 || decoder.SampleRate() == 0 {
		return 0, errors.New("preview contains no samples")
	}
	return float64(total) / float64(mp3BytesPerFrame*decoder.SampleRate()), nil
}

// ProbePreviewFunc allows tests to override the probe implementation.
var ProbePreviewFunc = probePreview
