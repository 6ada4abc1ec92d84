// Package yamlmap implements the Object Model's bidirectional YAML mapping.
//
// to-map builds a plain map[string]any / []any tree and hands it to gopkg.in/yaml.v3 to encode.
// yaml.v3 sorts map[string]any keys lexicographically when it encodes them, and emits multi-line
// strings in literal block style whenever the content allows it -- both are exactly the behaviors
// requires ("deterministic... Multi-line textual fields are emitted with a literal
// block style"), so to-map never needs to build a *yaml.Node tree by hand to get them.
//
// from-map walks the decoded tree back into internal/model types.
package yamlmap

import (
	"fmt"
	"sort"

	"github.com/dbsync/dbsync/internal/model"
)

// objKey renders the "<kind> <identifier>" map key used for every top-level and nested object.
func objKey(kind, identifier string) string {
	if identifier == "" {
		return kind
	}
	return kind + " " + identifier
}

func setIf[T comparable](m map[string]any, key string, val T) {
	var zero T
	if val != zero {
		m[key] = val
	}
}

func setSlice[T any](m map[string]any, key string, val []T) {
	if len(val) > 0 {
		out := make([]any, len(val))
		for i, v := range val {
			out[i] = v
		}
		m[key] = out
	}
}

func setMapStr(m map[string]any, key string, val map[string]string) {
	if len(val) > 0 {
		out := make(map[string]any, len(val))
		for k, v := range val {
			out[k] = v
		}
		m[key] = out
	}
}

func privilegesToMap(privs []model.Privilege) []any {
	byGrantee := map[string][]string{}
	var order []string
	grantable := map[string]bool{}
	for _, p := range privs {
		grantee := p.Grantee
		if grantee == "" {
			grantee = "PUBLIC"
		}
		if _, ok := byGrantee[grantee]; !ok {
			order = append(order, grantee)
		}
		byGrantee[grantee] = append(byGrantee[grantee], p.Privilege)
		if p.Grantable {
			grantable[grantee] = true
		}
	}
	sort.Strings(order)
	var out []any
	for _, grantee := range order {
		perms := append([]string{}, byGrantee[grantee]...)
		sort.Strings(perms)
		permsAny := make([]any, len(perms))
		for i, p := range perms {
			permsAny[i] = p
		}
		entry := map[string]any{grantee: permsAny}
		if grantable[grantee] {
			entry["grantable"] = true
		}
		out = append(out, entry)
	}
	return out
}

func privilegesFromMap(raw any) []model.Privilege {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []model.Privilege
	for _, entryRaw := range list {
		entry, ok := entryRaw.(map[string]any)
		if !ok {
			continue
		}
		grantable, _ := entry["grantable"].(bool)
		for k, v := range entry {
			if k == "grantable" {
				continue
			}
			grantee := k
			if grantee == "PUBLIC" {
				grantee = ""
			}
			for _, priv := range toStringList(v) {
				out = append(out, model.Privilege{Grantee: grantee, Privilege: priv, Grantable: grantable})
			}
		}
	}
	return out
}

func toStringList(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

func getStr(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func getBool(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}

func getInt64(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	}
	return 0
}

func getMap(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func getMapStr(m map[string]any, key string) map[string]string {
	raw, ok := m[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func getStrList(m map[string]any, key string) []string {
	return toStringList(m[key])
}

// sqName is shorthand for model.SchemaQualifiedName.
type sqName = model.SchemaQualifiedName
