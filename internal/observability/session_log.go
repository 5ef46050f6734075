// File: internal/observability/session_log.go
package observability

import (
	"io"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/xkilldash9x/deskpilot/internal/config"
)

// SessionLogName is the file every run mirrors its log and console output to.
const SessionLogName = "session_log.txt"

// SessionLog mirrors one instruction run into a plain text file inside the
// session directory. Log entries reach it through Logger; user facing console
// text reaches it through Write.
type SessionLog struct {
	Logger *zap.Logger

	mu   sync.Mutex
	file *lumberjack.Logger
}

var _ io.WriteCloser = (*SessionLog)(nil)

// OpenSessionLog tees base into path. The file encoder is the uncolored
// console format so the file reads like the terminal.
func OpenSessionLog(base *zap.Logger, path string, cfg config.LoggerConfig) *SessionLog {
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
	}

	plain := cfg
	plain.Format = "console"
	plain.Colors = config.ColorConfig{}
	fileCore := zapcore.NewCore(getEncoder(plain), zapcore.AddSync(file), parseLevel(cfg.Level))

	s := &SessionLog{file: file}
	s.Logger = base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	}))
	return s
}

// Write appends raw console output to the session file.
func (s *SessionLog) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Write(p)
}

// Close flushes the tee'd logger and closes the file.
func (s *SessionLog) Close() error {
	_ = s.Logger.Sync()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
