package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Collection is a JSON array of records persisted in a single file. Every
// Save rewrites the whole file, so compound read-modify-write sequences need
// external synchronization.
type Collection[T any] struct {
	name string
	path string
}

func NewCollection[T any](dir, name string) *Collection[T] {
	return &Collection[T]{
		name: name,
		path: filepath.Join(dir, name+".json"),
	}
}

func (c *Collection[T]) Name() string { return c.name }

func (c *Collection[T]) Path() string { return c.path }

// Load returns every record in file order. A missing or malformed file reads
// as an empty collection.
func (c *Collection[T]) Load() []T {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("collection unreadable, treating as empty", "collection", c.name, "error", err)
		}
		return []T{}
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("collection malformed, treating as empty", "collection", c.name, "error", err)
		return []T{}
	}
	if records == nil {
		return []T{}
	}
	return records
}

// Save replaces the file with records. The write goes to a sibling temp file
// first so concurrent readers never observe a half-written array.
func (c *Collection[T]) Save(records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.name, err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, c.name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", c.name, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", c.name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", c.name, err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", c.name, err)
	}
	return nil
}

// Find returns the first record accepted by match.
func (c *Collection[T]) Find(match func(T) bool) (T, bool) {
	for _, r := range c.Load() {
		if match(r) {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// Filter returns every record accepted by match, in file order.
func (c *Collection[T]) Filter(match func(T) bool) []T {
	result := make([]T, 0)
	for _, r := range c.Load() {
		if match(r) {
			result = append(result, r)
		}
	}
	return result
}

// FindByField returns the first record whose JSON field equals value.
func (c *Collection[T]) FindByField(field, value string) (T, bool) {
	return c.Find(func(r T) bool {
		v, ok := fieldValue(r, field)
		return ok && v == value
	})
}

func fieldValue(record any, field string) (string, bool) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", false
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", false
	}
	switch v := fields[field].(type) {
	case string:
		return v, true
	case nil:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}
