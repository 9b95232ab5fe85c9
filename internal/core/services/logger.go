package services

import (
	"log/slog"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
)

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// logUnexpected records failures that are not business rejections and hands
// the error back unchanged.
func logUnexpected(logger *slog.Logger, event string, err error, attrs ...any) error {
	if err == nil || domain.IsRejection(err) {
		return err
	}
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "core/services",
		"layer", "application",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	logger.Error("school operation failed", fields...)
	return err
}
