// Package logging provides the process wide logger.
//
// The initial setup is read from the environment:
//
//	export MODBUS_LOGGING_LEVEL=-1            # or "debug"
//	export MODBUS_LOGGING_FILE=/var/log/modbus.log
//
// Init replaces it at runtime, e.g. with the logging section of a client config.
package logging

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level = zapcore.Level

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

// Config selects level and output. An empty File logs to stderr.
type Config struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max-size"` // megabytes
	MaxBackups int    `yaml:"max-backups"`
	MaxAge     int    `yaml:"max-age"` // days
	Compress   bool   `yaml:"compress"`
}

// Logger forwards to the current process wide logger, so a value obtained
// at package init follows later calls to Init.
type Logger struct{}

var (
	mu            sync.RWMutex
	sugar         *zap.SugaredLogger
	defaultLogger = &Logger{}
)

func init() {
	s, err := newSugar(Config{
		Level: os.Getenv("MODBUS_LOGGING_LEVEL"),
		File:  os.Getenv("MODBUS_LOGGING_FILE"),
	})
	if err != nil {
		s, _ = newSugar(Config{})
	}
	sugar = s
}

func GetDefaultLogger() *Logger {
	return defaultLogger
}

// Init rebuilds the process wide logger from cfg.
func Init(cfg Config) error {
	s, err := newSugar(cfg)
	if err != nil {
		return err
	}
	mu.Lock()
	old := sugar
	sugar = s
	mu.Unlock()
	_ = old.Sync()
	return nil
}

// ParseLevel accepts zap level names as well as their numeric values.
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return InfoLevel, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Level(n), nil
	}
	var lvl Level
	err := lvl.UnmarshalText([]byte(s))
	return lvl, err
}

func newSugar(cfg Config) (*zap.SugaredLogger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var ws zapcore.WriteSyncer
	if cfg.File != "" {
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  true,
		})
	} else {
		ws = zapcore.Lock(os.Stderr)
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, zap.NewAtomicLevelAt(lvl))
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar(), nil
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func (l *Logger) Enabled(level Level) bool {
	return current().Desugar().Core().Enabled(level)
}

func (l *Logger) Debugf(template string, args ...interface{}) {
	current().Debugf(template, args...)
}

func (l *Logger) Infof(template string, args ...interface{}) {
	current().Infof(template, args...)
}

func (l *Logger) Warnf(template string, args ...interface{}) {
	current().Warnf(template, args...)
}

func (l *Logger) Errorf(template string, args ...interface{}) {
	current().Errorf(template, args...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return current().Sync()
}
