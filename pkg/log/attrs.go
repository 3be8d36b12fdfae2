package log

import (
	"log/slog"
	"strings"
)

func FlowID[T ~string](id T) slog.Attr {
	return slog.String("flow_id", string(id))
}

func StepID[T ~string](id T) slog.Attr {
	return slog.String("step_id", string(id))
}

func BranchID[T ~string](id T) slog.Attr {
	return slog.String("branch_id", string(id))
}

func Mode[T ~string](mode T) slog.Attr {
	return slog.String("mode", string(mode))
}

func Path[T ~[]string](p T) slog.Attr {
	return slog.String("path", strings.Join(p, "."))
}

func Version(v int64) slog.Attr {
	return slog.Int64("version", v)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
