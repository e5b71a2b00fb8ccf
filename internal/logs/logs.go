package logs

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type Options struct {
	Level  string // debug | info | warn | error
	Format string // text | json
	File   string // пусто: только stderr
}

// Logger: общий логгер процесса; до Init пишет в stderr с уровнем info.
var Logger = logrus.New()

// открытый файл лога; повторный Init с тем же путём его переиспользует,
// с другим путём (или без файла) закрывает.
var (
	fileMu  sync.Mutex
	logFile *os.File
)

func Init(o Options) {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(o.Level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Logger.SetLevel(lvl)

	switch strings.ToLower(o.Format) {
	case "json":
		Logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	fileMu.Lock()
	defer fileMu.Unlock()

	var out io.Writer = os.Stderr
	prev := logFile
	if o.File != "" && prev != nil && prev.Name() == o.File {
		out = io.MultiWriter(os.Stderr, prev)
		prev = nil
	} else {
		logFile = nil
		if o.File != "" {
			f, err := os.OpenFile(o.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				Logger.Warnf("log file %s: %v (stderr only)", o.File, err)
			} else {
				logFile = f
				out = io.MultiWriter(os.Stderr, f)
			}
		}
	}
	Logger.SetOutput(out)
	if prev != nil {
		_ = prev.Close()
	}
}

// WithOp: запись с полем op, так подписаны все операции клиента.
func WithOp(op string) *logrus.Entry {
	return Logger.WithField("op", op)
}
