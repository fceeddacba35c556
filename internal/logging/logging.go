// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package logging wires the shared logrus instance: a compact custom
// format with request IDs and caller locations, optional rotating file
// output, and the bridge that routes gin's own writers through logrus.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	setupOnce      sync.Once
	writerMu       sync.Mutex
	logWriter      *lumberjack.Logger
	ginInfoWriter  *io.PipeWriter
	ginErrorWriter *io.PipeWriter
)

// Formatter renders log entries as
// [2026-01-02 15:04:05] [a1b2c3d4] [info ] [coordinator.go:42] message | key=value
type Formatter struct{}

// Format renders a single log entry.
func (f *Formatter) Format(entry *log.Entry) ([]byte, error) {
	var buffer *bytes.Buffer
	if entry.Buffer != nil {
		buffer = entry.Buffer
	} else {
		buffer = &bytes.Buffer{}
	}

	timestamp := entry.Time.Format("2006-01-02 15:04:05")
	message := strings.TrimRight(entry.Message, "\r\n")

	reqID := "--------"
	if id, ok := entry.Data["request_id"].(string); ok && id != "" {
		reqID = id
	}

	level := entry.Level.String()
	if level == "warning" {
		level = "warn"
	}
	levelStr := fmt.Sprintf("%-5s", level)

	var formatted string
	if entry.Caller != nil {
		formatted = fmt.Sprintf("[%s] [%s] [%s] [%s:%d] %s", timestamp, reqID, levelStr,
			filepath.Base(entry.Caller.File), entry.Caller.Line, message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, reqID, levelStr, message)
	}

	var keys []string
	for k := range entry.Data {
		if k != "request_id" {
			keys = append(keys, k)
		}
	}
	if len(keys) > 0 {
		sort.Strings(keys)
		formatted += " |"
		for i, k := range keys {
			if i > 0 {
				formatted += ","
			}
			formatted += fmt.Sprintf(" %s=%v", k, entry.Data[k])
		}
	}
	formatted += "\n"

	buffer.WriteString(formatted)
	return buffer.Bytes(), nil
}

// Setup configures the shared logrus instance and the gin writers. It is
// safe to call multiple times; initialization happens only once.
func Setup() {
	setupOnce.Do(func() {
		log.SetOutput(os.Stdout)
		log.SetReportCaller(true)
		log.SetFormatter(&Formatter{})

		ginInfoWriter = log.StandardLogger().Writer()
		gin.DefaultWriter = ginInfoWriter
		ginErrorWriter = log.StandardLogger().WriterLevel(log.ErrorLevel)
		gin.DefaultErrorWriter = ginErrorWriter
		gin.DebugPrintFunc = func(format string, values ...interface{}) {
			log.StandardLogger().Infof(strings.TrimRight(format, "\r\n"), values...)
		}

		log.RegisterExitHandler(closeOutputs)
	})
}

// ConfigureOutput switches the global log destination between rotating
// files under dir and stdout. When maxTotalSizeMB > 0, older rotated
// files are pruned until the directory fits the budget.
func ConfigureOutput(toFile bool, dir string, maxTotalSizeMB int) error {
	Setup()

	writerMu.Lock()
	defer writerMu.Unlock()

	if !toFile {
		if logWriter != nil {
			_ = logWriter.Close()
			logWriter = nil
		}
		log.SetOutput(os.Stdout)
		return nil
	}

	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("logging: create log directory: %w", err)
	}
	if logWriter != nil {
		_ = logWriter.Close()
	}
	logWriter = &lumberjack.Logger{
		Filename: filepath.Join(dir, "main.log"),
		MaxSize:  10,
	}
	log.SetOutput(logWriter)

	if maxTotalSizeMB > 0 {
		pruneLogDir(dir, maxTotalSizeMB, logWriter.Filename)
	}
	return nil
}

// pruneLogDir deletes the oldest rotated log files until the directory's
// total size fits within the limit. The active log file is never pruned.
func pruneLogDir(dir string, maxTotalSizeMB int, protected string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	type logFile struct {
		path string
		size int64
		mod  int64
	}
	var files []logFile
	var total int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		f := logFile{path: filepath.Join(dir, entry.Name()), size: info.Size(), mod: info.ModTime().UnixNano()}
		total += f.size
		files = append(files, f)
	}

	limit := int64(maxTotalSizeMB) * 1024 * 1024
	if total <= limit {
		return
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mod < files[j].mod })
	for _, f := range files {
		if total <= limit {
			break
		}
		if f.path == protected {
			continue
		}
		if err := os.Remove(f.path); err == nil {
			total -= f.size
		}
	}
}

func closeOutputs() {
	writerMu.Lock()
	defer writerMu.Unlock()

	if logWriter != nil {
		_ = logWriter.Close()
		logWriter = nil
	}
	if ginInfoWriter != nil {
		_ = ginInfoWriter.Close()
		ginInfoWriter = nil
	}
	if ginErrorWriter != nil {
		_ = ginErrorWriter.Close()
		ginErrorWriter = nil
	}
}
