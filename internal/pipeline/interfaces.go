package pipeline

//go:generate mockgen -source=interfaces.go -destination=mocks/extractor.go -package=mock_pipeline

// TextExtractor is the boundary to the PDF-extraction collaborator. It
// returns the statement as raw text lines; the pipeline never opens the
// document itself.
type TextExtractor interface {
	ExtractLines(filePath, password string) ([]string, error)
}
