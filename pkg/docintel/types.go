package docintel

import "github.com/JhonatanRC03/chat-rag/pkg/utils/text"

// Analysis models supported by the service.
const (
	ModelPrebuiltDocument = "prebuilt-document"
	ModelPrebuiltLayout   = "prebuilt-layout"
	ModelPrebuiltRead     = "prebuilt-read"
)

// Operation states reported while polling.
const (
	statusNotStarted = "notStarted"
	statusRunning    = "running"
	statusSucceeded  = "succeeded"
	statusFailed     = "failed"
)

// Span locates a fragment inside the full document content.
type Span struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// Line is a single text line on a page.
type Line struct {
	Content string    `json:"content"`
	Polygon []float64 `json:"polygon,omitempty"`
	Spans   []Span    `json:"spans,omitempty"`
}

// Page holds per-page layout information.
type Page struct {
	PageNumber int     `json:"pageNumber"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Unit       string  `json:"unit"`
	Angle      float64 `json:"angle"`
	Lines      []Line  `json:"lines,omitempty"`
}

// TableCell is one cell of an extracted table.
type TableCell struct {
	Content     string `json:"content"`
	RowIndex    int    `json:"rowIndex"`
	ColumnIndex int    `json:"columnIndex"`
	RowSpan     int    `json:"rowSpan,omitempty"`
	ColumnSpan  int    `json:"columnSpan,omitempty"`
	Kind        string `json:"kind,omitempty"`
}

// Table is an extracted table.
type Table struct {
	RowCount    int         `json:"rowCount"`
	ColumnCount int         `json:"columnCount"`
	Cells       []TableCell `json:"cells"`
}

// kvContent is the key or value side of an extracted pair.
type kvContent struct {
	Content string `json:"content"`
}

// KeyValuePair is an extracted key-value pair.
type KeyValuePair struct {
	Key        *kvContent `json:"key,omitempty"`
	Value      *kvContent `json:"value,omitempty"`
	Confidence float64    `json:"confidence"`
}

// KeyContent returns the key text, or "" when absent.
func (kv *KeyValuePair) KeyContent() string {
	if kv.Key == nil {
		return ""
	}
	return kv.Key.Content
}

// ValueContent returns the value text, or "" when absent.
func (kv *KeyValuePair) ValueContent() string {
	if kv.Value == nil {
		return ""
	}
	return kv.Value.Content
}

// Style describes text styling, currently only handwriting detection.
type Style struct {
	IsHandwritten bool    `json:"isHandwritten"`
	Confidence    float64 `json:"confidence"`
	Spans         []Span  `json:"spans,omitempty"`
}

// Language is a detected document language.
type Language struct {
	Locale     string  `json:"locale"`
	Confidence float64 `json:"confidence"`
	Spans      []Span  `json:"spans,omitempty"`
}

// AnalyzeResult is the full output of a document analysis.
type AnalyzeResult struct {
	Content       string         `json:"content"`
	Pages         []Page         `json:"pages,omitempty"`
	Tables        []Table        `json:"tables,omitempty"`
	KeyValuePairs []KeyValuePair `json:"keyValuePairs,omitempty"`
	Styles        []Style        `json:"styles,omitempty"`
	Languages     []Language     `json:"languages,omitempty"`
}

// operationStatus is the body returned while polling an analyze operation.
type operationStatus struct {
	Status        string         `json:"status"`
	AnalyzeResult *AnalyzeResult `json:"analyzeResult,omitempty"`
	Error         *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// StructuredData is a condensed view of an analysis, sized for indexing and
// summaries.
type StructuredData struct {
	TextContent    string         `json:"text_content"`
	TotalPages     int            `json:"total_pages"`
	TablesCount    int            `json:"tables_count"`
	KeyValueCount  int            `json:"key_value_pairs_count"`
	MainText       string         `json:"main_text"`
	KeyData        []KeyValuePair `json:"key_data,omitempty"`
	Languages      []Language     `json:"detected_languages,omitempty"`
	HasTables      bool           `json:"has_tables"`
	HasHandwriting bool           `json:"has_handwriting"`
}

const mainTextLimit = 1000

// Structured derives the condensed StructuredData view from a full result.
func (r *AnalyzeResult) Structured() *StructuredData {
	mainText := r.Content
	if len(mainText) > mainTextLimit {
		mainText = text.Truncate(mainText, mainTextLimit) + "..."
	}

	keyData := r.KeyValuePairs
	if len(keyData) > 10 {
		keyData = keyData[:10]
	}

	hasHandwriting := false
	for _, s := range r.Styles {
		if s.IsHandwritten {
			hasHandwriting = true
			break
		}
	}

	return &StructuredData{
		TextContent:    r.Content,
		TotalPages:     len(r.Pages),
		TablesCount:    len(r.Tables),
		KeyValueCount:  len(r.KeyValuePairs),
		MainText:       mainText,
		KeyData:        keyData,
		Languages:      r.Languages,
		HasTables:      len(r.Tables) > 0,
		HasHandwriting: hasHandwriting,
	}
}
