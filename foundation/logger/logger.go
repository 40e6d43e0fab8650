// Package logger provides a convenience function to constructing a logger
// for use. This is required not just for applications but for testing.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs a Sugared Logger that writes to stdout and
// provides human readable timestamps.
func New(service string) (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stdout"}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	config.InitialFields = map[string]any{
		"service": service,
	}

	log, err := config.Build()
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}

// NewRotating constructs a Sugared Logger that writes to a log file which is
// rolled once it grows past thresholdKB, keeping maxRolls old files. When
// stdout is true every entry is also written to stdout. The returned closer
// must be called to flush and close the file.
func NewRotating(service string, path string, thresholdKB int64, maxRolls int, stdout bool) (*zap.SugaredLogger, io.Closer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
	}

	r, err := rotator.New(path, thresholdKB, false, maxRolls)
	if err != nil {
		return nil, nil, fmt.Errorf("creating file rotator: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	level := zap.NewAtomicLevelAt(zap.InfoLevel)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(r)), level),
	}
	if stdout {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.Fields(zap.String("service", service)))

	return log.Sugar(), r, nil
}
