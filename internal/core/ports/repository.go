package ports

import (
	"context"
	"errors"

	"github.com/ewilliams-labs/guessfm/internal/core/domain"
)

// ErrHintNotFound is returned when no preview has been probed for a URL yet.
var ErrHintNotFound = errors.New("preview hint not found")

// PreviewHintRepository stores preview probe results keyed by preview URL.
type PreviewHintRepository interface {
	GetPreviewHint(ctx context.Context, url string) (domain.PreviewHint, error)
	SavePreviewHint(ctx context.Context, hint domain.PreviewHint) error
}
