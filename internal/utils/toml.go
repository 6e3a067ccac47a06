package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DecodeTOMLFile decodes the TOML file at path into v. Keys already set on v
// and absent from the file keep their values.
func DecodeTOMLFile(path string, v any) error {
	if _, err := toml.DecodeFile(path, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// DecodeTOMLTable decodes the file into untyped tables, for recovering the
// well-typed keys of a file that does not fit its struct.
func DecodeTOMLTable(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	table := make(map[string]any)
	if _, err := toml.Decode(string(data), &table); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return table, nil
}

// WriteTOMLFile encodes v next to path and renames it into place, so readers
// never see a half-written file.
func WriteTOMLFile(path string, v any) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Section returns the sub-table name of a decoded table.
func Section(table map[string]any, name string) (map[string]any, bool) {
	section, ok := table[name].(map[string]any)
	return section, ok
}

// Int returns key when it holds a TOML integer.
func Int(table map[string]any, key string) (int, bool) {
	if val, ok := table[key].(int64); ok {
		return int(val), true
	}
	return 0, false
}

// String returns key when it holds a TOML string.
func String(table map[string]any, key string) (string, bool) {
	val, ok := table[key].(string)
	return val, ok
}
