package logging

import (
	"fmt"
	"io"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON = "json"
	FormatText = "text"
	FormatZap  = "zap"
)

// New builds a Logger for the given format. The returned func flushes and
// releases the underlying logger; it is safe to call once at shutdown.
func New(format string, w io.Writer) (Logger, func(), error) {
	switch format {
	case "", FormatJSON:
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, nil))), func() {}, nil
	case FormatText:
		return NewSlogLogger(slog.New(slog.NewTextHandler(w, nil))), func() {}, nil
	case FormatZap:
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(w),
			zap.InfoLevel,
		)
		l := NewZapLogger(zap.New(core))
		return l, func() { _ = l.Sync() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", format)
	}
}
