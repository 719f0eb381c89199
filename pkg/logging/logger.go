// Package logging implements the categorized log service shared by the
// identity bridge, middleware and handlers. It is constructed explicitly and
// injected; there is no package-level singleton.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Category partitions log entries by subsystem.
type Category string

const (
	CategoryAuth      Category = "AUTH"
	CategoryDashboard Category = "DASHBOARD"
	CategoryAPI       Category = "API"
	CategorySystem    Category = "SYSTEM"
)

// Config controls console level filtering and the file sink.
type Config struct {
	// Directory for per-category, per-day files. Created once at start.
	Dir string
	// Minimum level emitted to console.
	ConsoleLevel logrus.Level
	// When false, only WARN and ERROR entries reach files.
	FileLoggingEnabled bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Dir:          "logs",
		ConsoleLevel: logrus.InfoLevel,
	}
}

// Service emits every entry to console (level-filtered) and appends
// WARN/ERROR entries (or all, when file logging is enabled) to a
// per-category per-day file. A file write failure is reported to console and
// otherwise swallowed so a disk fault can never abort request handling.
type Service struct {
	cfg     Config
	console *logrus.Logger

	mu    sync.Mutex
	files map[string]*os.File // keyed by category + day
}

// New creates the log directory and returns a ready service.
func New(cfg Config) (*Service, error) {
	if cfg.Dir == "" {
		cfg.Dir = DefaultConfig().Dir
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	console := logrus.New()
	console.SetOutput(os.Stdout)
	console.SetLevel(cfg.ConsoleLevel)
	console.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &Service{
		cfg:     cfg,
		console: console,
		files:   make(map[string]*os.File),
	}, nil
}

// Fields is free-form structured context attached to an entry.
type Fields map[string]interface{}

// Log emits one entry at the given category and level.
func (s *Service) Log(category Category, level logrus.Level, message string, fields Fields) {
	entry := s.console.WithField("category", string(category))
	for k, v := range fields {
		entry = entry.WithField(k, v)
	}
	entry.Log(level, message)

	if level <= logrus.WarnLevel || s.cfg.FileLoggingEnabled {
		s.appendToFile(category, level, message, fields)
	}
}

// Error logs at ERROR level.
func (s *Service) Error(category Category, message string, fields Fields) {
	s.Log(category, logrus.ErrorLevel, message, fields)
}

// Warn logs at WARN level.
func (s *Service) Warn(category Category, message string, fields Fields) {
	s.Log(category, logrus.WarnLevel, message, fields)
}

// Info logs at INFO level.
func (s *Service) Info(category Category, message string, fields Fields) {
	s.Log(category, logrus.InfoLevel, message, fields)
}

// Debug logs at DEBUG level.
func (s *Service) Debug(category Category, message string, fields Fields) {
	s.Log(category, logrus.DebugLevel, message, fields)
}

func (s *Service) appendToFile(category Category, level logrus.Level, message string, fields Fields) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := time.Now().UTC().Format("2006-01-02")
	key := string(category) + "-" + day
	file, ok := s.files[key]
	if !ok {
		var err error
		file, err = os.OpenFile(
			filepath.Join(s.cfg.Dir, key+".log"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			s.console.WithError(err).Error("log file open failed, entry dropped to console only")
			return
		}
		s.files[key] = file
	}

	line := fmt.Sprintf("%s [%s] [%s] %s", time.Now().UTC().Format(time.RFC3339), levelTag(level), category, message)
	for k, v := range fields {
		line += fmt.Sprintf(" %s=%v", k, v)
	}
	if _, err := fmt.Fprintln(file, line); err != nil {
		s.console.WithError(err).Error("log file write failed, entry dropped to console only")
	}
}

func levelTag(level logrus.Level) string {
	switch level {
	case logrus.ErrorLevel:
		return "ERROR"
	case logrus.WarnLevel:
		return "WARN"
	case logrus.InfoLevel:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// Close flushes and closes every open file. Safe to call once at shutdown.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, file := range s.files {
		file.Close()
		delete(s.files, key)
	}
}
