// Package catalog implements the Catalog Reader: it queries a live Postgres
// database's system catalogs and materializes the result into an internal/model.Model.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dbsync/dbsync/internal/model"
	"github.com/dbsync/dbsync/pkg/sqldb"
)

// StaticDataHook lets a caller attach per-table CSV seed data to the read model without the
// Catalog Reader itself knowing how to read or write CSV.
type StaticDataHook interface {
	ReadTable(schema, table string) (path string, ok bool)
}

// Reader fetches a Model from a live database. It never mutates db and never runs concurrent
// queries against it: it is single-threaded and synchronous, so every fetchXxx method below runs
// to completion before the next begins.
type Reader struct {
	db sqldb.Queryable
	serverVersion int // numeric server_version_num, e.g. 150004

	// IncludeSchemas/ExcludeSchemas are set by the WithIncludeSchemas/WithExcludeSchemas
	// functional options below.
	includeSchemas []string
	excludeSchemas []string

	StaticData StaticDataHook
}

type Option func(*Reader)

func WithIncludeSchemas(schemas ...string) Option {
	return func(r *Reader) { r.includeSchemas = schemas }
}

func WithExcludeSchemas(schemas ...string) Option {
	return func(r *Reader) { r.excludeSchemas = schemas }
}

func WithStaticDataHook(h StaticDataHook) Option {
	return func(r *Reader) { r.StaticData = h }
}

// New detects the server's numeric version and returns a ready Reader.
func New(ctx context.Context, db sqldb.Queryable, opts ...Option) (*Reader, error) {
	r := &Reader{db: db}
	for _, opt := range opts {
		opt(r)
	}

	var raw string
	if err := db.QueryRowContext(ctx, "SHOW server_version_num").Scan(&raw); err != nil {
		return nil, fmt.Errorf("SHOW server_version_num: %w", err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing server_version_num %q: %w", raw, err)
	}
	r.serverVersion = v

	return r, nil
}

// systemSchemaPredicate excludes the schemas that must never be read: information_schema,
// pg_catalog, pg_toast, and any pg_temp_% temporary schema.
const systemSchemaPredicate = `
 n.nspname NOT IN ('information_schema', 'pg_catalog')
 AND n.nspname NOT LIKE 'pg_toast%'
 AND n.nspname NOT LIKE 'pg_temp_%'
 AND n.nspname NOT LIKE 'pg_toast_temp_%'
`

// extensionOwnedPredicate excludes catalog rows owned by an extension: anything with a pg_depend row of deptype 'e' pointing at it.
func extensionOwnedPredicate(oidExpr string) string {
	return fmt.Sprintf(`
 NOT EXISTS (SELECT 1 FROM pg_depend d
 WHERE d.objid = %s AND d.deptype = 'e'
)`, oidExpr)
}

func (r *Reader) nameIncluded(schema string) bool {
	if len(r.includeSchemas) > 0 {
		found := false
		for _, s := range r.includeSchemas {
			if s == schema {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, s := range r.excludeSchemas {
		if s == schema {
			return false
		}
	}
	return true
}

// FetchModel runs every per-kind fetch in sequence and assembles a Model. Order doesn't matter for
// correctness (the Linker resolves dependency order afterwards); this order just groups related
// kinds together for readability.
func (r *Reader) FetchModel(ctx context.Context) (model.Model, error) {
	var m model.Model
	var err error

	if m.NamedSchemas, err = r.fetchSchemas(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching schemas: %w", err)
	}
	if m.Extensions, err = r.fetchExtensions(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching extensions: %w", err)
	}
	if m.Languages, err = r.fetchLanguages(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching languages: %w", err)
	}
	if m.Collations, err = r.fetchCollations(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching collations: %w", err)
	}
	if m.Conversions, err = r.fetchConversions(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching conversions: %w", err)
	}
	if m.Types, err = r.fetchTypes(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching types: %w", err)
	}
	if m.Tables, err = r.fetchTables(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching tables: %w", err)
	}
	if m.Views, err = r.fetchViews(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching views: %w", err)
	}
	if m.MaterializedViews, err = r.fetchMaterializedViews(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching materialized views: %w", err)
	}
	if m.Sequences, err = r.fetchSequences(ctx, m.Tables); err != nil {
		return model.Model{}, fmt.Errorf("fetching sequences: %w", err)
	}
	if m.Functions, err = r.fetchFunctions(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching functions: %w", err)
	}
	if m.Aggregates, err = r.fetchAggregates(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching aggregates: %w", err)
	}
	if m.Operators, err = r.fetchOperators(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching operators: %w", err)
	}
	if m.OperatorClasses, err = r.fetchOperatorClasses(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching operator classes: %w", err)
	}
	if m.OperatorFamilies, err = r.fetchOperatorFamilies(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching operator families: %w", err)
	}
	if m.EventTriggers, err = r.fetchEventTriggers(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching event triggers: %w", err)
	}
	if m.Casts, err = r.fetchCasts(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching casts: %w", err)
	}
	if m.TSParsers, err = r.fetchTSParsers(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching text search parsers: %w", err)
	}
	if m.TSDictionaries, err = r.fetchTSDictionaries(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching text search dictionaries: %w", err)
	}
	if m.TSTemplates, err = r.fetchTSTemplates(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching text search templates: %w", err)
	}
	if m.TSConfigs, err = r.fetchTSConfigs(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching text search configurations: %w", err)
	}
	if m.FDWs, err = r.fetchFDWs(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching foreign data wrappers: %w", err)
	}
	if m.ForeignServers, err = r.fetchForeignServers(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching foreign servers: %w", err)
	}
	if m.UserMappings, err = r.fetchUserMappings(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching user mappings: %w", err)
	}
	if m.ForeignTables, err = r.fetchForeignTables(ctx); err != nil {
		return model.Model{}, fmt.Errorf("fetching foreign tables: %w", err)
	}

	return m, nil
}
