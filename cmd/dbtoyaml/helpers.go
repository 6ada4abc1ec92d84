package main

import (
	"path"
	"strings"

	"github.com/dbsync/dbsync/internal/cli"
	"github.com/dbsync/dbsync/internal/model"
)

func stripOwners(m model.Model) model.Model {
	return m.WithoutOwners()
}

func stripPrivileges(m model.Model) model.Model {
	return m.WithoutPrivileges()
}

// filterTables applies -t/-T after the Reader has already applied -n/-N: table
// filtering is glob-based against "schema.table", the same shape psql's \dt pattern uses.
func filterTables(m model.Model, f *cli.TableFilterFlags) model.Model {
	if len(f.Include) == 0 && len(f.Exclude) == 0 {
		return m
	}
	out := m
	var kept []model.Table
	for _, t := range m.Tables {
		qualified := t.SchemaName + "." + t.Name
		if len(f.Include) > 0 && !matchesAny(qualified, f.Include) {
			continue
		}
		if matchesAny(qualified, f.Exclude) {
			continue
		}
		kept = append(kept, t)
	}
	out.Tables = kept
	return out
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := path.Match(p, name); err == nil && ok {
			return true
		}
		bare := name[strings.IndexByte(name, '.')+1:]
		if ok, err := path.Match(p, bare); err == nil && ok {
			return true
		}
	}
	return false
}
