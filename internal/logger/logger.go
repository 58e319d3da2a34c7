package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	log *slog.Logger
	mu  sync.RWMutex
)

// Init инициализирует глобальный логгер
// env: "development" - текст и debug, иначе JSON и info
func Init(env string) {
	InitWithWriter(env, os.Stdout)
}

// InitWithWriter - то же самое, но с произвольным выводом (тесты)
func InitWithWriter(env string, w io.Writer) {
	opts := &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
	}

	var handler slog.Handler
	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(handler)

	mu.Lock()
	log = l
	mu.Unlock()

	slog.SetDefault(l)
}

// GetLogger возвращает глобальный логгер
func GetLogger() *slog.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()

	if l == nil {
		// Fallback если Init не вызван
		Init("development")
		return GetLogger()
	}
	return l
}

func Debug(msg string, args ...any) {
	GetLogger().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	GetLogger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	GetLogger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	GetLogger().Error(msg, args...)
}

// Fatal логирует ошибку и завершает программу
func Fatal(msg string, args ...any) {
	GetLogger().Error(msg, args...)
	os.Exit(1)
}

// With создает новый логгер с дополнительными полями
// Пример: logger.With("tour_id", id).Info("ratings recomputed")
func With(args ...any) *slog.Logger {
	return GetLogger().With(args...)
}

// WithError создает логгер с полем error
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}
