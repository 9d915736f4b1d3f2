package utils

import (
	"context"
	"log"
	"time"
)

// Detach runs fn on its own goroutine with a fresh context, detached from the
// request lifecycle. A panic or error inside fn is logged and swallowed; the
// caller has usually already responded.
func Detach(name string, timeout time.Duration, logger *log.Logger, fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Printf("[ERROR] Detached task %s panicked: %v", name, r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			logger.Printf("[WARN] Detached task %s failed: %v", name, err)
		}
	}()
}
