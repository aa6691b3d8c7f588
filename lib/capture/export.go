// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ExportSnapshot writes document as zstd-compressed JSON to a uniquely
// named file in dir and returns the path. Used by the dashboard's
// export key to dump the current state for sharing or diffing.
func ExportSnapshot(dir string, document any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir %s: %w", dir, err)
	}

	encoded, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot-%s.json.zst", uuid.New()))
	if err := os.WriteFile(path, zstdEncoder.EncodeAll(encoded, nil), 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return path, nil
}

// ReadSnapshot loads a snapshot written by ExportSnapshot into target.
func ReadSnapshot(path string, target any) error {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	encoded, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return fmt.Errorf("decompressing snapshot %s: %w", path, err)
	}
	if err := json.Unmarshal(encoded, target); err != nil {
		return fmt.Errorf("decoding snapshot %s: %w", path, err)
	}
	return nil
}
