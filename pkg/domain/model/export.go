package model

// Native document content types that have no raw byte representation
const (
	ContentTypeDocument     = "application/vnd.google-apps.document"
	ContentTypeSpreadsheet  = "application/vnd.google-apps.spreadsheet"
	ContentTypePresentation = "application/vnd.google-apps.presentation"
)

var exportFormats = map[string]string{
	ContentTypeDocument:     "text/plain",
	ContentTypeSpreadsheet:  "text/csv",
	ContentTypePresentation: "application/pdf",
}

// ExportFormat returns the export format for a native document content type.
// The second return value is false for content that is downloaded as-is.
func ExportFormat(contentType string) (string, bool) {
	format, ok := exportFormats[contentType]
	return format, ok
}
