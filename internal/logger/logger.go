package logger

import (
	"fmt"
	stdlog "log"
	"os"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

var (
	out      = stdlog.New(os.Stderr, "", stdlog.LstdFlags)
	minLevel = LevelInfo
)

// SetLevel sets the minimum level that gets written. "debug" and "error"
// are recognized; anything else means info.
func SetLevel(name string) {
	switch strings.ToLower(name) {
	case "debug":
		minLevel = LevelDebug
	case "error":
		minLevel = LevelError
	default:
		minLevel = LevelInfo
	}
}

func Debug(msg string, kv ...any) {
	write(LevelDebug, "DEBUG", msg, kv)
}

func Info(msg string, kv ...any) {
	write(LevelInfo, "INFO", msg, kv)
}

func Error(msg string, err error, kv ...any) {
	write(LevelError, "ERROR", msg, append([]any{"err", err}, kv...))
}

func write(level Level, tag, msg string, kv []any) {
	if level < minLevel {
		return
	}

	var b strings.Builder
	b.WriteString("[" + tag + "] " + msg)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		b.WriteString(" " + key + "=" + fmt.Sprint(kv[i+1]))
	}
	out.Println(b.String())
}
