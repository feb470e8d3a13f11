package driven

import "context"

// TextExtractor converts one file format to plain text.
// Extractors never touch the network.
type TextExtractor interface {
	// Extensions returns the lower-cased extensions handled, with leading dot.
	Extensions() []string

	// Extract returns the document text. Any error means the file is corrupt.
	Extract(ctx context.Context, data []byte) (string, error)
}

// ExtractorRegistry selects an extractor by file extension.
type ExtractorRegistry interface {
	// For returns the extractor for ext, or false if none is registered.
	For(ext string) (TextExtractor, bool)
}
