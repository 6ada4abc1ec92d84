// Package multifile implements "Multiple-file layout": splitting a Model's YAML tree
// across one file per schema-bound object (plus a schema-level file and a database-level index
// file) instead of one monolithic document. This is the one place in the repo allowed to use
// goroutines: file writes fan out bounded by internal/util.NewGoroutineLimiter, with
// internal/concurrent.Future collecting the results.
package multifile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dbsync/dbsync/internal/concurrent"
	"github.com/dbsync/dbsync/internal/model"
	"github.com/dbsync/dbsync/internal/model/yamlmap"
	"github.com/dbsync/dbsync/internal/util"
	"gopkg.in/yaml.v3"
)

// maxConcurrentFileWrites bounds the fan-out util.NewGoroutineLimiter enforces; a schema with
// thousands of tables shouldn't open thousands of file descriptors at once.
const maxConcurrentFileWrites = 8

// schemaScalarKeys are schema-level attributes, not nested child objects; everything else in a
// "schema <name>" map entry from yamlmap.ToMap is a schema-bound object that gets its own file.
var schemaScalarKeys = map[string]bool{"owner": true, "description": true, "privileges": true}

// indexFileName returns "database.<dbname>.yaml", the stale-file-detection index file name.
func indexFileName(dbname string) string {
	return "database." + sanitize(dbname, 1<<31) + ".yaml"
}

// Write persists m under root using the multiple-file layout, then deletes any file left over from
// the previous run (read from the existing index file, if any) that this run didn't rewrite.
func Write(ctx context.Context, root, dbname string, m model.Model, maxIdentLen int) error {
	files := buildFileSet(yamlmap.ToMap(m), maxIdentLen)

	previous := readIndex(root, dbname)

	runner := util.NewGoroutineLimiter(maxConcurrentFileWrites)
	var futures []concurrent.Future[string]
	for path, entries := range files {
		path, entries := path, entries
		f, err := concurrent.SubmitFuture(ctx, runner, func() (string, error) {
				return path, writeFile(root, path, entries)
		})
		if err != nil {
			return fmt.Errorf("scheduling write of %s: %w", path, err)
		}
		futures = append(futures, f)
	}
	written, err := concurrent.GetAll(ctx, futures...)
	if err != nil {
		return fmt.Errorf("writing multi-file layout: %w", err)
	}

	sort.Strings(written)
	if err := writeIndex(root, dbname, written); err != nil {
		return fmt.Errorf("writing index file: %w", err)
	}

	writtenSet := make(map[string]bool, len(written))
	for _, p := range written {
		writtenSet[p] = true
	}
	for _, p := range previous {
		if !writtenSet[p] {
			_ = os.Remove(filepath.Join(root, p))
		}
	}
	return nil
}

// fileEntry is one "<kind> <ident>": value pair destined for a shared file; a collision on
// filename (e.g. two functions with the same base name but different signatures) accumulates
// multiple entries into the same file, per "on collision, objects are concatenated
// into the same file" rule.
type fileEntry struct {
	key string
	val any
}

func buildFileSet(root map[string]any, maxIdentLen int) map[string][]fileEntry {
	files := map[string][]fileEntry{}

	for topKey, topVal := range root {
		kind, ident := splitKey(topKey)
		valMap, _ := topVal.(map[string]any)

		if kind == "schema" {
			schemaAttrs := map[string]any{}
			for k, v := range valMap {
				if schemaScalarKeys[k] {
					schemaAttrs[k] = v
				}
			}
			schemaFile := "schema." + sanitize(ident, maxIdentLen) + ".yaml"
			files[schemaFile] = append(files[schemaFile], fileEntry{key: topKey, val: schemaAttrs})

			for childKey, childVal := range valMap {
				if schemaScalarKeys[childKey] {
					continue
				}
				childKind, childIdent := splitKey(childKey)
				name := childFilenameBase(childKind, childIdent)
				path := filepath.Join("schema."+sanitize(ident, maxIdentLen), childKind+"."+sanitize(name, maxIdentLen)+".yaml")
				files[path] = append(files[path], fileEntry{key: childKey, val: childVal})
			}
			continue
		}

		name := childFilenameBase(kind, ident)
		path := kind + "." + sanitize(name, maxIdentLen) + ".yaml"
		files[path] = append(files[path], fileEntry{key: topKey, val: topVal})
	}

	return files
}

// childFilenameBase strips a function/aggregate's argument-type signature so every overload shares
// one file, per: "Functions sharing a base name go into one file regardless of
// signature."
func childFilenameBase(kind, ident string) string {
	if kind == "function" || kind == "aggregate" {
		if idx := strings.IndexByte(ident, '('); idx >= 0 {
			return ident[:idx]
		}
	}
	return ident
}

func splitKey(key string) (kind, ident string) {
	if idx := strings.IndexByte(key, ' '); idx >= 0 {
		return key[:idx], key[idx+1:]
	}
	return key, ""
}

// sanitize applies filename rule: lower-case, non-alphanumeric/underscore -> "_",
// truncated to maxLen.
func sanitize(name string, maxLen int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}

func writeFile(root, relPath string, entries []fileEntry) error {
	full := filepath.Join(root, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", relPath, err)
	}

	doc := map[string]any{}
	for _, e := range entries {
		doc[e.key] = e.val
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", relPath, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", relPath, err)
	}
	return nil
}

func writeIndex(root, dbname string, written []string) error {
	doc := map[string]any{"database " + dbname: map[string]any{"files": written}}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, indexFileName(dbname)), data, 0o644)
}

func readIndex(root, dbname string) []string {
	data, err := os.ReadFile(filepath.Join(root, indexFileName(dbname)))
	if err != nil {
		return nil
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	entry, _ := doc["database "+dbname].(map[string]any)
	raw, _ := entry["files"].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
