package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pushLaunch/internal/model"
)

// WriteJSONL writes one swap per line.
func WriteJSONL(w io.Writer, swaps []model.SwapRecord) error {
	writer := bufio.NewWriter(w)
	for _, record := range swaps {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal swap: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write swap: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// ExportJSONL replaces the file at path with swaps as JSON lines.
func ExportJSONL(path string, swaps []model.SwapRecord) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	if err := WriteJSONL(file, swaps); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename output file: %w", err)
	}
	return nil
}
