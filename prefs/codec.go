// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package prefs

import (
	"encoding/json"
	"fmt"
)

// Decode parses a stored record. Absent input ("") and anything that is not
// a well-formed record object yield an empty Record.
func Decode(raw string) Record {
	var rec Record
	if raw == "" {
		return rec
	}
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}
	}
	return rec
}

// Encode serializes the full record.
func Encode(rec Record) (string, error) {
	buf, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	return string(buf), nil
}
