package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide logger. It stays a no-op until Init is called so
// packages can log from tests without setup.
var Log = zap.NewNop().Sugar()

// Init configures Log. Output goes to stderr so rendered configs printed on
// stdout can be piped; with logPath set it is appended to that file instead,
// rotated at 10 MB with three backups kept.
func Init(verbose bool, logPath string) {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encoderConfig.EncodeCaller = nil

	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	writer := zapcore.AddSync(os.Stderr)
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			os.Stderr.WriteString("failed to create log directory: " + err.Error() + "\n")
		} else {
			// no color codes in files
			encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
			writer = zapcore.AddSync(&lumberjack.Logger{
				Filename:   logPath,
				MaxSize:    10,
				MaxBackups: 3,
			})
		}
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), writer, level)
	Log = zap.New(core).Sugar()
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = Log.Sync()
}
