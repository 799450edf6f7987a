package errors

// Domain error codes for the ingest, chat, and ETL services.

// Ingest service errors (service 20).
var (
	ErrEmptyFile           = NewRequestErr(ServiceIngest, 1, "Uploaded file is empty", "上传文件为空")
	ErrUnsupportedFileType = NewRequestErr(ServiceIngest, 2, "Only PDF files are supported", "仅支持 PDF 文件")
	ErrDocumentNotFound    = NewNotFoundErr(ServiceIngest, 1, "Document not found", "文档不存在")
	ErrUploadFailed        = NewInternalErr(ServiceIngest, 1, "Document upload failed", "文档上传失败")
	ErrAnalyzeFailed       = NewInternalErr(ServiceIngest, 2, "Document analysis failed", "文档分析失败")
	ErrIndexFailed         = NewInternalErr(ServiceIngest, 3, "Document indexing failed", "文档索引失败")
	ErrEmbeddingFailed     = NewInternalErr(ServiceIngest, 4, "Embedding computation failed", "向量计算失败")
)

// Chat service errors (service 21).
var (
	ErrChatTimeout      = NewTimeoutErr(ServiceChat, 1, "Chat request timeout", "对话请求超时")
	ErrRetrievalFailed  = NewInternalErr(ServiceChat, 1, "Document retrieval failed", "文档检索失败")
	ErrGenerationFailed = NewInternalErr(ServiceChat, 2, "Answer generation failed", "回答生成失败")
)

// ETL tool errors (service 22).
var (
	ErrDataDirNotFound = NewRequestErr(ServiceETL, 1, "Data directory not found", "数据目录不存在")
	ErrParseFailed     = NewInternalErr(ServiceETL, 1, "Tabular file parsing failed", "表格文件解析失败")
	ErrUpsertFailed    = NewDatabaseErr(ServiceETL, 1, "Document upsert failed", "文档写入失败")
)
