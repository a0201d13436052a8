package idgen

import (
	"hash/fnv"

	"github.com/google/uuid"
)

// PrefixRequest marks API request IDs
const PrefixRequest = "req_"

// AlarmID derives a stable non-negative alarm ID from a string key
func AlarmID(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() & 0x7fffffff)
}

// NewAlarmID generates a fresh non-negative alarm ID
func NewAlarmID() int {
	return AlarmID(uuid.New().String())
}

// NewRequest generates a request ID with req_ prefix
func NewRequest() string {
	return PrefixRequest + uuid.New().String()
}

// New generates a generic UUID without prefix (for internal use only)
func New() string {
	return uuid.New().String()
}
