package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

type writerHook struct {
	Writer    []io.Writer
	LogLevels []logrus.Level
}

func (hook *writerHook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}
	for _, w := range hook.Writer {
		_, _ = w.Write([]byte(line))
	}
	return err
}

func (hook *writerHook) Levels() []logrus.Level {
	return hook.LogLevels
}

type Logger struct {
	*logrus.Entry
}

var (
	e    *logrus.Entry
	once sync.Once
	mu   sync.Mutex
)

func newEntry() *logrus.Entry {
	l := logrus.New()
	l.SetReportCaller(true)
	l.Formatter = &logrus.TextFormatter{
		CallerPrettyfier: func(frame *runtime.Frame) (function string, file string) {
			filename := path.Base(frame.File)
			return fmt.Sprintf("%s()", path.Base(frame.Function)), fmt.Sprintf("%s:%d", filename, frame.Line)
		},
		DisableColors: true,
		FullTimestamp: true,
	}
	l.SetOutput(io.Discard)
	l.AddHook(&writerHook{
		Writer:    []io.Writer{os.Stdout},
		LogLevels: logrus.AllLevels,
	})
	l.SetLevel(logrus.InfoLevel)
	return logrus.NewEntry(l)
}

// GetLogger returns the process-wide logger. Until Init is called it writes to stdout only.
func GetLogger() *Logger {
	once.Do(func() {
		e = newEntry()
	})
	mu.Lock()
	defer mu.Unlock()
	return &Logger{e}
}

func (l *Logger) GetLoggerWithField(k string, v interface{}) *Logger {
	return &Logger{l.WithField(k, v)}
}

// Init adds a file sink under dir (logs/all.log) and sets the level.
func Init(dir string, debug bool) error {
	logger := GetLogger()

	mu.Lock()
	defer mu.Unlock()

	if debug {
		logger.Logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.Logger.SetLevel(logrus.InfoLevel)
	}

	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}
	file, err := os.OpenFile(filepath.Join(dir, "all.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return err
	}

	logger.Logger.ReplaceHooks(make(logrus.LevelHooks))
	logger.Logger.AddHook(&writerHook{
		Writer:    []io.Writer{file, os.Stdout},
		LogLevels: logrus.AllLevels,
	})
	return nil
}
