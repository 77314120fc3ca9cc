// File: internal/observability/logger.go
package observability

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xkilldash9x/emojicheck/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// globalLogger stores the global logger instance safely across goroutines.
	globalLogger atomic.Pointer[zap.Logger]
	// once ensures that initialization happens exactly once.
	once sync.Once

	// fileSink is the per-run log file, nil when file logging is disabled.
	fileSink     *lumberjack.Logger
	fileSinkPath atomic.Value

	// registry caches named children of the global logger.
	registryMu sync.Mutex
	registry   = make(map[string]*zap.Logger)
)

// ANSI color codes for the terminal.
const (
	colorBlack   = "\x1b[30m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorWhite   = "\x1b[37m"
	colorReset   = "\x1b[0m"
)

// colorMap translates friendly names to ANSI codes.
var colorMap = map[string]string{
	"black":   colorBlack,
	"red":     colorRed,
	"green":   colorGreen,
	"yellow":  colorYellow,
	"blue":    colorBlue,
	"magenta": colorMagenta,
	"cyan":    colorCyan,
	"white":   colorWhite,
}

// lineSeparator joins the time, level, name, message and fields of a console line.
const lineSeparator = " | "

// RunLogFile returns the path of the log file for a run started at now.
func RunLogFile(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("test_log_%s.log", now.Format("20060102_150405")))
}

// Initialize sets up the global Zap logger based on configuration and a specified output writer.
// Console and file cores share one encoder configuration; only the console colors its levels.
func Initialize(cfg config.LoggerConfig, consoleWriter zapcore.WriteSyncer) {
	once.Do(func() {
		level := zap.NewAtomicLevel()
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level.SetLevel(zap.InfoLevel)
		}

		consoleCore := zapcore.NewCore(getEncoder(cfg, true), consoleWriter, level)
		cores := []zapcore.Core{consoleCore}

		if cfg.LogDir != "" {
			path := RunLogFile(cfg.LogDir, time.Now())
			// lumberjack creates the directory on first write and handles rotation.
			fileSink = &lumberjack.Logger{
				Filename:   path,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			}
			fileSinkPath.Store(path)
			cores = append(cores, zapcore.NewCore(getEncoder(cfg, false), zapcore.AddSync(fileSink), level))
		}

		core := zapcore.NewTee(cores...)
		options := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
		if cfg.AddSource {
			options = append(options, zap.AddCaller())
		}

		logger := zap.New(core, options...).Named(cfg.ServiceName)
		globalLogger.Store(logger)

		// Replace the standard library logger and Zap's global loggers.
		zap.ReplaceGlobals(logger)
		zap.RedirectStdLog(logger)
	})
}

// InitializeLogger is a convenience wrapper around Initialize for production use.
// It defaults console output to a locked Stdout.
func InitializeLogger(cfg config.LoggerConfig) {
	Initialize(cfg, zapcore.Lock(os.Stdout))
}

// ResetForTest resets the sync.Once, clears the registry and closes the file sink.
// This function should ONLY be used in tests to ensure isolation.
func ResetForTest() {
	registryMu.Lock()
	registry = make(map[string]*zap.Logger)
	registryMu.Unlock()

	if fileSink != nil {
		_ = fileSink.Close()
		fileSink = nil
	}
	fileSinkPath.Store("")
	globalLogger.Store(nil)
	once = sync.Once{}
}

// newColorizedLevelEncoder creates a zapcore.LevelEncoder that colorizes the log level.
func newColorizedLevelEncoder(colors config.ColorConfig) zapcore.LevelEncoder {
	return func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		var color string
		levelStr := strings.ToUpper(level.String())

		switch level {
		case zapcore.DebugLevel:
			color = colorMap[colors.Debug]
		case zapcore.InfoLevel:
			color = colorMap[colors.Info]
		case zapcore.WarnLevel:
			color = colorMap[colors.Warn]
		case zapcore.ErrorLevel:
			color = colorMap[colors.Error]
		case zapcore.DPanicLevel:
			color = colorMap[colors.DPanic]
		case zapcore.PanicLevel:
			color = colorMap[colors.Panic]
		case zapcore.FatalLevel:
			color = colorMap[colors.Fatal]
		}

		if color != "" {
			enc.AppendString(color + levelStr + colorReset)
		} else {
			enc.AppendString(levelStr)
		}
	}
}

// newEncoderConfig is the layout shared by every sink.
func newEncoderConfig() zapcore.EncoderConfig {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.ConsoleSeparator = lineSeparator
	return encoderConfig
}

// getEncoder builds the encoder for one sink. "json" yields structured lines;
// anything else yields the pipe separated console layout. colorize only applies
// to the console layout.
func getEncoder(cfg config.LoggerConfig, colorize bool) zapcore.Encoder {
	encoderConfig := newEncoderConfig()
	if cfg.Format == "json" {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	if colorize {
		encoderConfig.EncodeLevel = newColorizedLevelEncoder(cfg.Colors)
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

// GetLogger returns the initialized global logger instance.
func GetLogger() *zap.Logger {
	logger := globalLogger.Load()
	if logger == nil {
		// Fallback mechanism if InitializeLogger hasn't been called.
		l, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewNop()
		}
		l.Warn("Global logger requested before initialization; using fallback.")
		return l.Named("fallback")
	}
	return logger
}

// Named returns the logger for one calling unit. Repeated calls with the same
// name return the same instance; every instance writes through the single
// global core, so no sink is ever attached twice.
func Named(name string) *zap.Logger {
	base := globalLogger.Load()
	if base == nil {
		return GetLogger().Named(name)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if l, ok := registry[name]; ok {
		return l
	}
	l := base.Named(name)
	registry[name] = l
	return l
}

// LogFile reports the path of the current run's log file, or "" when file logging is off.
func LogFile() string {
	p, _ := fileSinkPath.Load().(string)
	return p
}

// Sync flushes any buffered log entries. Applications should call this before exiting.
func Sync() {
	logger := globalLogger.Load()
	if logger != nil {
		if err := logger.Sync(); err != nil {
			// Writing to a closed or special stdout/stderr is not worth reporting.
			errMsg := err.Error()
			if !strings.Contains(errMsg, "sync /dev/stdout") &&
				!strings.Contains(errMsg, "invalid argument") &&
				!strings.Contains(errMsg, "inappropriate ioctl") &&
				!strings.Contains(errMsg, "operation not supported") {
				fmt.Fprintln(os.Stderr, "Error: failed to sync logger:", err)
			}
		}
	}
}
