package classify

import "context"

// Usage contains token usage and cost information for one model call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

// Classification bundles a classification result with usage information.
type Classification struct {
	Result *Result
	Usage  Usage
}

// Classifier can classify a waste item image.
type Classifier interface {
	// Classify takes encoded image data and returns a classification.
	// A reply the model produced but that cannot be parsed is not an
	// error: implementations return the fallback result instead. An
	// error means the model invocation itself failed.
	Classify(ctx context.Context, imageData []byte, mimeType string) (*Classification, error)
}
