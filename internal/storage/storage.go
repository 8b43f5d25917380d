// Package storage provides the key-value substrate the gallery mirrors itself to.
package storage

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded is returned when a write would push the store past its byte quota
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KV is a flat key-value store with whole-value reads and writes
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

func checkQuota(quota, current, previous int64, next int) error {
	if quota <= 0 {
		return nil
	}
	if total := current - previous + int64(next); total > quota {
		return fmt.Errorf("%w: %d bytes requested, quota is %d", ErrQuotaExceeded, total, quota)
	}
	return nil
}
