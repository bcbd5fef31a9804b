package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu     sync.Mutex
	global = zap.NewNop()
)

// Init builds the process-wide logger. Development mode gets console-friendly
// output; everything else logs structured JSON.
func Init(environment string) error {
	mu.Lock()
	defer mu.Unlock()

	var (
		l   *zap.Logger
		err error
	)
	if environment == "development" {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	global = l
	return nil
}

// L returns the process-wide logger.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return global
}

// Sync flushes buffered log entries. Safe to call on shutdown.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	_ = global.Sync()
}
