package driven

import "context"

// ImageDescriber turns an image into a textual description that can be
// indexed and retrieved like any other text.
// This is an optional service - when nil, image extraction is disabled.
type ImageDescriber interface {
	// Describe returns a detailed description of the image.
	Describe(ctx context.Context, image []byte, mimeType string) (string, error)
}
