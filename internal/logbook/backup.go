package logbook

import (
	"encoding/json"
	"fmt"
	"time"
)

// BackupSchemaVersion is written into every exported envelope.
const BackupSchemaVersion = 3

// Backup is the export envelope.
type Backup struct {
	Tag           string    `json:"tag"`
	SchemaVersion int       `json:"schemaVersion"`
	SavedAt       time.Time `json:"savedAt"`
	Payload       State     `json:"payload"`
}

// EncodeBackup wraps s in an envelope stamped with now.
func EncodeBackup(s State, now time.Time) ([]byte, error) {
	b := Backup{
		Tag:           BackupTag,
		SchemaVersion: BackupSchemaVersion,
		SavedAt:       now.UTC(),
		Payload:       s,
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeBackup reads an envelope, a legacy envelope or a bare state. Data that
// is not JSON yields ErrInvalidBackup; JSON that is not an object yields ErrInvalidState.
func DecodeBackup(data []byte, now time.Time) (State, error) {
	return NormalizeJSON(data, now)
}

// BackupFileName is the suggested file name of an export made at now.
func BackupFileName(now time.Time) string {
	return "bridge-log-backup-" + now.Format("20060102-1504") + ".json"
}
