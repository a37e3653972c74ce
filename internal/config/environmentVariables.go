package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"
	TRACE_HEADER   = "X-Trace-Id"

	//control api rate limits (per client ip)
	RATE_LIMIT_PER_SECOND       = 5
	BURST_RATE_LIMIT_PER_SECOND = 10

	//backend
	DefaultBackendURL = "http://localhost:8000"
	UploadPath        = "/upload/"
	QueryPath         = "/query/"
	UploadFieldName   = "file"

	//generic fallbacks when the backend gives no detail
	UploadFailedMessage = "Upload failed"
	QueryFailedMessage  = "Query failed"
	NoAnswerMessage     = "No answer received from server"

	//control api - empty means disabled
	DefaultControlAddr = ""

	//control api timeouts - write timeout is 0 on purpose, uploads and queries run until the backend answers
	ReadTimeout            = 30 * time.Second
	WriteTimeout           = 0
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//control api multipart limit
	MaxUploadMemory = 32 << 20 //32mb, the rest spills to temp files

	//watch folder
	WatchDebounce = 750 * time.Millisecond

	//http pooling
	MaxIdleConns        = 10
	MaxIdleConnsPerHost = 5
	IdleConnTimeout     = 60 * time.Second

	//logging
	LogMaxSizeMB   = 10
	LogMaxBackups  = 3
	LogMaxAgeDays  = 7
	LogCompression = false
)
