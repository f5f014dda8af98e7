package tool

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/protalal11-ops/apk-forensic-toolkit/internal"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

var (
	logLevelPatterns = []*regexp.Regexp{
		// apktool: "I: Using Apktool 2.9.3 on app.apk"
		regexp.MustCompile(`^(?P<level>[IWES]): (?P<message>.*)$`),
		// jadx: "INFO  - loading ..."
		regexp.MustCompile(`^(?P<level>TRACE|DEBUG|INFO|WARN|WARNING|ERROR)\b\s*-?\s*(?P<message>.*)$`),
	}

	// output without a recognizable level prefix is treated as informational
	defaultLogLevel = "INFO"
)

// logWriter forwards the output of an external tool into the application logger, one line at a time.
type logWriter struct {
	name    string
	lock    sync.Mutex
	pending []byte
	last    string
}

func newLogWriter(name string) *logWriter {
	return &logWriter{
		name: name,
	}
}

func processLogLine(line string) (string, string) {
	line = strings.TrimRight(line, "\r\n")
	for _, pattern := range logLevelPatterns {
		groups := internal.MatchNamedCaptureGroups(pattern, line)
		level, ok := groups["level"]
		if !ok || level == "" {
			continue
		}
		return normalizeLevel(level), groups["message"]
	}
	return defaultLogLevel, line
}

func normalizeLevel(level string) string {
	switch strings.ToUpper(level) {
	case "I":
		return "INFO"
	case "W", "WARNING":
		return "WARN"
	case "E", "S":
		return "ERROR"
	default:
		return strings.ToUpper(level)
	}
}

func (lw *logWriter) Write(p []byte) (n int, err error) {
	lw.lock.Lock()
	defer lw.lock.Unlock()

	lw.pending = append(lw.pending, p...)
	for {
		idx := bytes.IndexByte(lw.pending, '\n')
		if idx < 0 {
			break
		}
		lw.emit(string(lw.pending[:idx]))
		lw.pending = lw.pending[idx+1:]
	}

	return len(p), nil
}

// Close flushes any trailing partial line.
func (lw *logWriter) Close() error {
	lw.lock.Lock()
	defer lw.lock.Unlock()

	if len(lw.pending) > 0 {
		lw.emit(string(lw.pending))
		lw.pending = nil
	}
	return nil
}

// LastLine is the last non-empty line the tool wrote.
func (lw *logWriter) LastLine() string {
	lw.lock.Lock()
	defer lw.lock.Unlock()
	return lw.last
}

func (lw *logWriter) emit(raw string) {
	level, line := processLogLine(raw)
	if strings.TrimSpace(line) == "" {
		return
	}
	lw.last = line
	message := fmt.Sprintf("[%s] %s", lw.name, line)

	switch level {
	case "TRACE":
		log.Trace(message)
	case "DEBUG":
		log.Debug(message)
	case "INFO":
		log.Info(message)
	case "WARN":
		log.Warn(message)
	case "ERROR":
		log.Error(message)
	default:
		log.Info(message)
	}
}
