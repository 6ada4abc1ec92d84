// Package yamlio is the thin public wrapper around internal/model/yamlmap and internal/multifile
// that the four cmd/ binaries use to read and write the YAML tree, in either its
// single-file or multiple-file layout. The split exists so internal/model/yamlmap and
// internal/multifile stay unaware of filesystem/stdio concerns.
package yamlio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dbsync/dbsync/internal/model"
	"github.com/dbsync/dbsync/internal/model/yamlmap"
	"github.com/dbsync/dbsync/internal/multifile"
	"gopkg.in/yaml.v3"
)

// Read loads a single-file YAML document from path. path == "" or "-" reads stdin, matching
// yamltodb/dbaugment's "spec" argument convention.
func Read(path string) (model.Model, error) {
	data, err := readAll(path)
	if err != nil {
		return model.Model{}, err
	}
	m, err := yamlmap.Unmarshal(data)
	if err != nil {
		return model.Model{}, fmt.Errorf("parsing %s: %w", displayPath(path), err)
	}
	return m, nil
}

// Write renders m as a single YAML document to path. path == "" or "-" writes stdout.
func Write(path string, m model.Model) error {
	data, err := yamlmap.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling model: %w", err)
	}
	return writeAll(path, data)
}

// ReadDir loads a multiple-file layout tree rooted at dir: every *.yaml file under
// dir except the database.<dbname>.yaml index is read and merged into one map before being parsed
// into a Model, so the schema.<name>/ split is transparent to the caller. Objects read from a
// schema.<name>/ directory are attached to schema <name> as spelled in the directory name.
func ReadDir(dir string) (model.Model, error) {
	merged := map[string]any{}

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(path) != ".yaml" {
				return nil
			}
			if strings.HasPrefix(filepath.Base(path), "database.") {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			var frag map[string]any
			if err := yaml.Unmarshal(data, &frag); err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}
			target := merged
			if sub := filepath.Dir(path); filepath.Clean(sub) != filepath.Clean(dir) && strings.HasPrefix(filepath.Base(sub), "schema.") {
				schemaKey := "schema " + strings.TrimPrefix(filepath.Base(sub), "schema.")
				schemaMap, ok := merged[schemaKey].(map[string]any)
				if !ok {
					schemaMap = map[string]any{}
					merged[schemaKey] = schemaMap
				}
				target = schemaMap
			}
			for k, v := range frag {
				if existing, ok := target[k].(map[string]any); ok {
					if next, ok := v.(map[string]any); ok {
						for ck, cv := range next {
							existing[ck] = cv
						}
						continue
					}
				}
				target[k] = v
			}
			return nil
	})
	if err != nil {
		return model.Model{}, fmt.Errorf("reading multi-file layout at %s: %w", dir, err)
	}

	return yamlmap.FromMap(merged)
}

// WriteDir persists m under dir using the multiple-file layout, bounded-concurrency
// file fan-out per internal/multifile, and prunes files the previous run wrote but this run didn't.
func WriteDir(ctx context.Context, dir, dbname string, m model.Model, maxIdentLen int) error {
	return multifile.Write(ctx, dir, dbname, m, maxIdentLen)
}

func readAll(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func writeAll(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func displayPath(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}
