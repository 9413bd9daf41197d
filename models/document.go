package models

import "time"

// Document is one row of the extracted_files table.
type Document struct {
	ID          int64
	FilePath    string
	Extension   string
	Content     string
	ProcessedAt time.Time
}

// SearchResult is a ranked match with its highlighted context.
type SearchResult struct {
	FilePath string
	Rank     float64
	Headline string
}

// TableName and the column names below are the only identifiers ever
// written into SQL text; nothing from user input is.
const (
	TableName = "extracted_files"

	ColumnPath       = "file_path"
	ColumnExtension  = "file_extension"
	ColumnContent    = "content"
	ColumnIndexedAt  = "processed_at"
	ColumnTSVEnglish = "content_tsv_en"
	ColumnTSVRussian = "content_tsv_ru"
	ColumnTSVSimple  = "content_tsv_simple"
)

// SupportedExtensions lists the file extensions that are indexed and
// searched, sorted.
var SupportedExtensions = []string{".md", ".pdf", ".txt"}
