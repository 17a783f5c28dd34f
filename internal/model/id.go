package model

import (
	"strings"

	"github.com/google/uuid"
)

// TempIDPrefix marks identifiers generated locally for entities the
// server has not seen yet. A temporary identifier is replaced by the
// server-assigned one during reconciliation and must not outlive it.
const TempIDPrefix = "temp_"

// NewTempID generates a fresh temporary identifier.
func NewTempID() string {
	return TempIDPrefix + uuid.New().String()
}

// IsTempID reports whether id is a locally generated temporary
// identifier.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}
