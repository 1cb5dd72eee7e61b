package logging

import (
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	fileAppenderMaxSizeMB  = 64
	fileAppenderMaxBackups = 3
)

// FileAppender is a ConsoleAppender writing to a size-rotated file.
type FileAppender struct {
	*ConsoleAppender
	file *lumberjack.Logger
}

// NewFileAppender returns an appender writing to filename. The file is rotated once it reaches
// 64 MB and the three most recent rotations are kept, compressed.
func NewFileAppender(filename string) *FileAppender {
	file := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    fileAppenderMaxSizeMB,
		MaxBackups: fileAppenderMaxBackups,
		Compress:   true,
	}
	return &FileAppender{ConsoleAppender: NewWriterAppender(file), file: file}
}

// Close closes the current log file.
func (appender *FileAppender) Close() error {
	return appender.file.Close()
}
