// Package obslog is the engine's structured logger: an async, leveled,
// field-carrying logger with optional JSON output and file rotation,
// adapted from the host application's own logging package so that
// compile and execution diagnostics share its format.
package obslog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/glint-lang/glint/internal/engineconfig"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

type LogFormat int

const (
	TextFormat LogFormat = iota
	JSONFormat
)

// LogEntry is one emitted record. CorrelationID carries either a compile
// ID or an execution ID depending on which phase produced the entry.
type LogEntry struct {
	Timestamp     time.Time              `json:"timestamp"`
	Level         string                 `json:"level"`
	Message       string                 `json:"message"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Fields        map[string]interface{} `json:"fields,omitempty"`
	Caller        string                 `json:"caller,omitempty"`
	StackTrace    string                 `json:"stack_trace,omitempty"`
}

type LoggerConfig struct {
	MinLevel          LogLevel
	Format            LogFormat
	IncludeCaller     bool
	IncludeStackTrace bool
	BufferSize        int
	Outputs           []io.Writer
	MaxFileSize       int64
	MaxBackups        int
	FilePath          string
}

type Logger struct {
	config     LoggerConfig
	buffer     chan *LogEntry
	wg         sync.WaitGroup
	mu         sync.Mutex
	stopped    bool
	fileWriter *rotatingFileWriter
	syncCh     chan chan struct{}
}

type rotatingFileWriter struct {
	mu          sync.Mutex
	file        *os.File
	path        string
	maxSize     int64
	maxBackups  int
	currentSize int64
}

func NewLogger(config LoggerConfig) (*Logger, error) {
	if config.BufferSize == 0 {
		config.BufferSize = engineconfig.DefaultBufferSize
	}
	if len(config.Outputs) == 0 {
		config.Outputs = []io.Writer{os.Stdout}
	}

	logger := &Logger{
		config: config,
		buffer: make(chan *LogEntry, config.BufferSize),
		syncCh: make(chan chan struct{}, 1),
	}

	if config.FilePath != "" {
		fw, err := newRotatingFileWriter(config.FilePath, config.MaxFileSize, config.MaxBackups)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file writer: %w", err)
		}
		logger.fileWriter = fw
		logger.config.Outputs = append(logger.config.Outputs, fw)
	}

	logger.wg.Add(1)
	go logger.processLogs()

	return logger, nil
}

func newRotatingFileWriter(path string, maxSize int64, maxBackups int) (*rotatingFileWriter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	return &rotatingFileWriter{file: file, path: path, maxSize: maxSize, maxBackups: maxBackups, currentSize: info.Size()}, nil
}

func (w *rotatingFileWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.maxSize > 0 && w.currentSize+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err = w.file.Write(p)
	w.currentSize += int64(n)
	return n, err
}

func (w *rotatingFileWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}

	for i := w.maxBackups - 1; i > 0; i-- {
		oldPath := fmt.Sprintf("%s.%d", w.path, i)
		newPath := fmt.Sprintf("%s.%d", w.path, i+1)
		if _, err := os.Stat(oldPath); err == nil {
			os.Rename(oldPath, newPath)
		}
	}

	if err := os.Rename(w.path, fmt.Sprintf("%s.1", w.path)); err != nil {
		return err
	}

	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	w.file = file
	w.currentSize = 0
	return nil
}

func (w *rotatingFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func (l *Logger) processLogs() {
	defer l.wg.Done()

	for {
		select {
		case entry, ok := <-l.buffer:
			if !ok {
				select {
				case done := <-l.syncCh:
					close(done)
				default:
				}
				return
			}
			l.writeLog(entry)
		case done := <-l.syncCh:
			draining := true
			for draining {
				select {
				case entry := <-l.buffer:
					l.writeLog(entry)
				default:
					draining = false
				}
			}
			close(done)
		}
	}
}

func (l *Logger) writeLog(entry *LogEntry) {
	var output string

	if l.config.Format == JSONFormat {
		bytes, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to marshal log entry: %v\n", err)
			return
		}
		output = string(bytes) + "\n"
	} else {
		output = l.formatTextLog(entry)
	}

	for _, w := range l.config.Outputs {
		if _, err := w.Write([]byte(output)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write log: %v\n", err)
		}
	}
}

func (l *Logger) formatTextLog(entry *LogEntry) string {
	timestamp := entry.Timestamp.Format("2006-01-02 15:04:05.000")

	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", timestamp))
	parts = append(parts, fmt.Sprintf("[%s]", entry.Level))

	if entry.CorrelationID != "" {
		parts = append(parts, fmt.Sprintf("[%s]", entry.CorrelationID))
	}
	if entry.Caller != "" {
		parts = append(parts, fmt.Sprintf("[%s]", entry.Caller))
	}

	parts = append(parts, entry.Message)

	if len(entry.Fields) > 0 {
		fieldsStr := ""
		for k, v := range entry.Fields {
			if fieldsStr != "" {
				fieldsStr += ", "
			}
			fieldsStr += fmt.Sprintf("%s=%v", k, v)
		}
		parts = append(parts, fmt.Sprintf("{%s}", fieldsStr))
	}

	result := ""
	for i, part := range parts {
		if i > 0 {
			result += " "
		}
		result += part
	}

	if entry.StackTrace != "" {
		result += "\n" + entry.StackTrace
	}

	return result + "\n"
}

func (l *Logger) log(level LogLevel, msg string, fields map[string]interface{}, correlationID string) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	if level < l.config.MinLevel {
		return
	}

	entry := &LogEntry{
		Timestamp:     time.Now(),
		Level:         level.String(),
		Message:       msg,
		CorrelationID: correlationID,
		Fields:        fields,
	}

	if l.config.IncludeCaller {
		_, file, line, ok := runtime.Caller(2)
		if ok {
			entry.Caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
		}
	}

	if l.config.IncludeStackTrace && (level == ERROR || level == FATAL) {
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		entry.StackTrace = string(buf[:n])
	}

	select {
	case l.buffer <- entry:
	default:
		l.writeLog(entry)
	}

	if level == FATAL {
		l.Close()
		os.Exit(1)
	}
}

func (l *Logger) Debug(msg string) { l.log(DEBUG, msg, nil, "") }
func (l *Logger) Info(msg string)  { l.log(INFO, msg, nil, "") }
func (l *Logger) Warn(msg string)  { l.log(WARN, msg, nil, "") }
func (l *Logger) Error(msg string) { l.log(ERROR, msg, nil, "") }
func (l *Logger) Fatal(msg string) { l.log(FATAL, msg, nil, "") }

func (l *Logger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.log(DEBUG, msg, fields, "")
}
func (l *Logger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.log(INFO, msg, fields, "")
}
func (l *Logger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.log(WARN, msg, fields, "")
}
func (l *Logger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.log(ERROR, msg, fields, "")
}

// Sync flushes pending entries and waits for them to be written — useful
// in tests that assert on buffered output.
func (l *Logger) Sync() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	done := make(chan struct{})
	l.syncCh <- done
	<-done
}

func (l *Logger) Close() error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return nil
	}
	l.stopped = true
	l.mu.Unlock()

	close(l.buffer)
	l.wg.Wait()

	if l.fileWriter != nil {
		return l.fileWriter.Close()
	}
	return nil
}

// WithCompileID scopes a ContextLogger to one compilation's diagnostics.
func (l *Logger) WithCompileID(compileID string) *ContextLogger {
	return &ContextLogger{logger: l, correlationID: compileID, fields: make(map[string]interface{})}
}

// WithExecutionID scopes a ContextLogger to one execution run, so every
// log line emitted while resolving that run's AST carries the same ID.
func (l *Logger) WithExecutionID(executionID string) *ContextLogger {
	return &ContextLogger{logger: l, correlationID: executionID, fields: make(map[string]interface{})}
}

func (l *Logger) WithFields(fields map[string]interface{}) *ContextLogger {
	return &ContextLogger{logger: l, fields: fields}
}

// NewCorrelationID mints a fresh UUID for a compile or execution run.
func NewCorrelationID() string {
	return uuid.New().String()
}

type ContextLogger struct {
	logger        *Logger
	correlationID string
	fields        map[string]interface{}
	mu            sync.Mutex
}

func (cl *ContextLogger) WithField(key string, value interface{}) *ContextLogger {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	newFields := make(map[string]interface{}, len(cl.fields)+1)
	for k, v := range cl.fields {
		newFields[k] = v
	}
	newFields[key] = value

	return &ContextLogger{logger: cl.logger, correlationID: cl.correlationID, fields: newFields}
}

func (cl *ContextLogger) mergeFields(additional map[string]interface{}) map[string]interface{} {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if additional == nil {
		return cl.fields
	}

	merged := make(map[string]interface{}, len(cl.fields)+len(additional))
	for k, v := range cl.fields {
		merged[k] = v
	}
	for k, v := range additional {
		merged[k] = v
	}
	return merged
}

func (cl *ContextLogger) Debug(msg string) { cl.logger.log(DEBUG, msg, cl.fields, cl.correlationID) }
func (cl *ContextLogger) Info(msg string)  { cl.logger.log(INFO, msg, cl.fields, cl.correlationID) }
func (cl *ContextLogger) Warn(msg string)  { cl.logger.log(WARN, msg, cl.fields, cl.correlationID) }
func (cl *ContextLogger) Error(msg string) { cl.logger.log(ERROR, msg, cl.fields, cl.correlationID) }
func (cl *ContextLogger) Fatal(msg string) { cl.logger.log(FATAL, msg, cl.fields, cl.correlationID) }

func (cl *ContextLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	cl.logger.log(ERROR, msg, cl.mergeFields(fields), cl.correlationID)
}

var (
	defaultLogger   *Logger
	defaultLoggerMu sync.Mutex
)

func InitDefaultLogger(config LoggerConfig) error {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()

	if defaultLogger != nil {
		defaultLogger.Close()
	}

	logger, err := NewLogger(config)
	if err != nil {
		return err
	}

	defaultLogger = logger
	return nil
}

func GetDefaultLogger() *Logger {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()

	if defaultLogger == nil {
		defaultLogger, _ = NewLogger(LoggerConfig{MinLevel: INFO, Format: TextFormat})
	}

	return defaultLogger
}

func Debug(msg string) { GetDefaultLogger().Debug(msg) }
func Info(msg string)  { GetDefaultLogger().Info(msg) }
func Warn(msg string)  { GetDefaultLogger().Warn(msg) }
func Error(msg string) { GetDefaultLogger().Error(msg) }
func Fatal(msg string) { GetDefaultLogger().Fatal(msg) }
