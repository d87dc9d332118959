package domain

import "fmt"

// Extraction is the successful output of content extraction: indexable text
// plus structured metadata. Extraction is deterministic: identical bytes and
// MIME type always yield an identical Extraction.
type Extraction struct {
	// Text is the extracted plain text.
	Text string

	// Metadata is the structured metadata derived from the content.
	Metadata DocumentMetadata
}

// ExtractionFailureReason classifies a partial extraction failure.
type ExtractionFailureReason string

const (
	// FailureSizeLimit means the content exceeded the configured byte cap.
	FailureSizeLimit ExtractionFailureReason = "size_limit"

	// FailureTimeout means extraction exceeded its wall-clock budget.
	FailureTimeout ExtractionFailureReason = "timeout"

	// FailureUnsupportedType means no extractor handles the MIME type.
	FailureUnsupportedType ExtractionFailureReason = "unsupported_type"

	// FailureCorrupt means the content could not be parsed as its declared
	// type.
	FailureCorrupt ExtractionFailureReason = "corrupt"
)

// ExtractionError reports that extraction could not produce text. It is the
// extractor boundary's only failure mode; nothing is raised past it.
// Metadata is populated where derivable (e.g. the file name) even when text
// is absent.
type ExtractionError struct {
	// Reason classifies the failure.
	Reason ExtractionFailureReason

	// Metadata holds whatever metadata could still be derived.
	Metadata DocumentMetadata

	// Cause is the underlying parse error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed (%s): %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("extraction failed (%s)", e.Reason)
}

// Unwrap exposes the underlying cause.
func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
