package config

import (
	"fmt"

	"github.com/google/uuid"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamSnapshotKey returns the recovery-store key for a bank's in-progress
// session snapshot. The key format is shared with the web client, which
// used the same name for its local storage entry.
func (r *CacheKeyStruct) ExamSnapshotKey(bankID uuid.UUID) string {
	return fmt.Sprintf("exam_%s", bankID)
}

var CacheKey = NewCacheKeyStruct()
