package ultralytics

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Runner executes an external command to completion.
type Runner interface {
	Run(ctx context.Context, name string, args []string) error
}

// ExecRunner runs commands with os/exec and forwards their output to Logger
// line by line: stdout at debug level, stderr at info level (the tool writes
// its progress there).
type ExecRunner struct {
	Logger *zap.Logger
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, name string, args []string) error {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("command", name))

	stdout := &lineLogger{log: log, level: zapcore.DebugLevel}
	stderr := &lineLogger{log: log, level: zapcore.InfoLevel}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	log.Debug("running external command", zap.Strings("args", args))
	err := cmd.Run()
	stdout.Flush()
	stderr.Flush()

	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s cancelled: %w", name, ctx.Err())
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

// lineLogger is an io.Writer that logs each complete line it receives.
type lineLogger struct {
	log   *zap.Logger
	level zapcore.Level

	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lineLogger) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.buf.Write(p)
	for {
		i := bytes.IndexAny(l.buf.Bytes(), "\r\n")
		if i < 0 {
			break
		}
		line := string(l.buf.Next(i + 1)[:i])
		l.emit(line)
	}
	return len(p), nil
}

// Flush logs any trailing partial line.
func (l *lineLogger) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.buf.Len() > 0 {
		l.emit(l.buf.String())
		l.buf.Reset()
	}
}

func (l *lineLogger) emit(line string) {
	if line == "" {
		return
	}
	if ce := l.log.Check(l.level, line); ce != nil {
		ce.Write()
	}
}
