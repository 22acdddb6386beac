package logger

import (
	"time"

	"go.uber.org/zap"
)

func String(key, val string) Field { return zap.String(key, val) }

func Int(key string, val int) Field { return zap.Int(key, val) }

func Int64(key string, val int64) Field { return zap.Int64(key, val) }

func Float64(key string, val float64) Field { return zap.Float64(key, val) }

func Bool(key string, val bool) Field { return zap.Bool(key, val) }

func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }

// Error logs err under the "error" key.
func Error(err error) Field { return zap.Error(err) }

// RequestID tags entries belonging to one submission.
func RequestID(id string) Field { return zap.String("request_id", id) }

func Any(key string, val any) Field { return zap.Any(key, val) }
