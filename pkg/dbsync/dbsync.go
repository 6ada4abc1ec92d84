// Package dbsync is the thin public surface over the core engine: it wires the
// Catalog Reader, Dependency Linker, Differ, and Scheduler/SQL Emitter together behind a small
// Plan/GeneratePlan/Apply API.
package dbsync

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"time"

	"github.com/kr/pretty"

	"github.com/dbsync/dbsync/internal/differ"
	"github.com/dbsync/dbsync/internal/linker"
	"github.com/dbsync/dbsync/internal/model"
	"github.com/dbsync/dbsync/internal/scheduler"
	"github.com/dbsync/dbsync/internal/sqlgen"
	"github.com/dbsync/dbsync/internal/util"
	"github.com/dbsync/dbsync/pkg/log"
	"github.com/dbsync/dbsync/pkg/sqldb"
)

// Statement and MigrationHazard are re-exported verbatim from internal/sqlgen: callers outside the
// module talk in terms of dbsync.Statement, never internal/sqlgen.Statement, but the type is the
// same one the Scheduler and SQL Generator produce -- no conversion step needed at the boundary.
type (
	Statement = sqlgen.Statement
	MigrationHazard = sqlgen.MigrationHazard
	MigrationHazardType = sqlgen.MigrationHazardType
)

// Plan is the ordered, schedulable sequence of change records the Scheduler produces after
// flattening the Differ's output to DDL, plus the model hashes both sides of the diff were
// computed from.
type Plan struct {
	Statements []Statement
	CurrentModelHash string
	DesiredModelHash string
}

// ToSQL renders every statement as a terminated SQL string, in order.
func (p Plan) ToSQL() []string {
	out := make([]string, len(p.Statements))
	for i, s := range p.Statements {
		out[i] = s.ToSQL()
	}
	return out
}

// ToTransactionalSQL wraps the plan in BEGIN/COMMIT.
func (p Plan) ToTransactionalSQL() []string {
	return append(append([]string{"BEGIN;"}, p.ToSQL()...), "COMMIT;")
}

// ApplyStatementTimeoutModifier overrides the timeout of every statement matching regex.
func (p Plan) ApplyStatementTimeoutModifier(re *regexp.Regexp, timeout time.Duration) Plan {
	out := make([]Statement, len(p.Statements))
	for i, s := range p.Statements {
		if re.MatchString(s.DDL) {
			s.Timeout = timeout
		}
		out[i] = s
	}
	p.Statements = out
	return p
}

// InsertStatement inserts a user-supplied statement at index.
func (p Plan) InsertStatement(index int, s Statement) (Plan, error) {
	if index < 0 || index > len(p.Statements) {
		return Plan{}, fmt.Errorf("index must be >= 0 and <= %d", len(p.Statements))
	}
	out := make([]Statement, 0, len(p.Statements)+1)
	out = append(out, p.Statements[:index]...)
	out = append(out, s)
	out = append(out, p.Statements[index:]...)
	p.Statements = out
	return p, nil
}

// HazardTypes returns the distinct hazard types present across the plan, sorted.
func (p Plan) HazardTypes() []MigrationHazardType {
	seen := map[MigrationHazardType]bool{}
	var out []MigrationHazardType
	for _, s := range p.Statements {
		for _, h := range s.Hazards {
			if !seen[h.Type] {
				seen[h.Type] = true
				out = append(out, h.Type)
			}
		}
	}
	sort.Strings(out)
	return out
}

// linkBoth builds one dependency graph covering both sides of the diff: the Scheduler needs to ask
// "does this object require that one" for keys that only exist on the current side (about to be
// dropped) as well as keys that only exist on the desired side (about to be created), so neither
// side's linker.Link result alone is sufficient.
func linkBoth(current, desired model.Model) *linker.Graph {
	g := linker.Link(&current)
	// Union keeps g's existing edges for vertices present in both graphs (graph.Graph.AddVertex
	// documents this), so linking desired second and unioning in is safe.
	desiredGraph := linker.Link(&desired)
	_ = g.Union(desiredGraph, func(_, new linker.Vertex) linker.Vertex { return new })
	return g
}

// WriteDependencyGraphDOT renders the dependency graph Diff would build for (current, desired) as
// Graphviz DOT, for inspecting why the Scheduler ordered a plan the way it did.
func WriteDependencyGraphDOT(current, desired model.Model, w io.Writer) error {
	return linkBoth(current, desired).EncodeDOT(w, true)
}

// Diff computes the ordered, scheduled DDL plan to migrate current into desired. This is the engine's single entry point: Reader output and YAML-loader output are both
// plain model.Model values and can be passed here directly, in either role.
func Diff(current, desired model.Model) (Plan, error) {
	changes, err := differ.Diff(current, desired)
	if err != nil {
		return Plan{}, fmt.Errorf("diffing models: %w", err)
	}

	stmts, err := scheduler.Schedule(changes, linkBoth(current, desired))
	if err != nil {
		return Plan{}, fmt.Errorf("scheduling plan: %w\n%# v", err, pretty.Formatter(changes))
	}

	currentHash, err := current.Hash()
	if err != nil {
		return Plan{}, fmt.Errorf("hashing current model: %w", err)
	}
	desiredHash, err := desired.Hash()
	if err != nil {
		return Plan{}, fmt.Errorf("hashing desired model: %w", err)
	}

	return Plan{Statements: stmts, CurrentModelHash: currentHash, DesiredModelHash: desiredHash}, nil
}

// Revert computes the best-effort inverse plan: it diffs in the same direction (current, desired) but inverts the resulting change
// list before scheduling, rather than simply calling Diff(desired, current) -- a straight swap would
// recompute renames/attribute deltas from scratch and could disagree with the forward plan it's
// supposed to undo.
func Revert(current, desired model.Model) (Plan, error) {
	changes, err := differ.Diff(current, desired)
	if err != nil {
		return Plan{}, fmt.Errorf("diffing models: %w", err)
	}
	reverted := differ.Revert(changes)

	stmts, err := scheduler.Schedule(reverted, linkBoth(current, desired))
	if err != nil {
		return Plan{}, fmt.Errorf("scheduling revert plan: %w", err)
	}

	desiredHash, err := desired.Hash()
	if err != nil {
		return Plan{}, fmt.Errorf("hashing desired model: %w", err)
	}
	currentHash, err := current.Hash()
	if err != nil {
		return Plan{}, fmt.Errorf("hashing current model: %w", err)
	}
	return Plan{Statements: stmts, CurrentModelHash: desiredHash, DesiredModelHash: currentHash}, nil
}

// ExecuteOpt configures Execute.
type ExecuteOpt func(*executeOptions)

type executeOptions struct {
	logger log.Logger
	singleTransaction bool
	allowedHazardTypes map[MigrationHazardType]bool
}

// WithLogger overrides the default log.SimpleLogger().
func WithLogger(logger log.Logger) ExecuteOpt {
	return func(o *executeOptions) { o.logger = logger }
}

// WithoutSingleTransaction disables wrapping the whole plan in one transaction. Execute runs in a
// single transaction by default; this only exists for statements that cannot run inside a
// transaction block at all (e.g. CREATE INDEX CONCURRENTLY), which this engine never emits.
func WithoutSingleTransaction() ExecuteOpt {
	return func(o *executeOptions) { o.singleTransaction = false }
}

// WithAllowedHazards restricts Execute to plans whose statements carry only these hazard types.
func WithAllowedHazards(types ...MigrationHazardType) ExecuteOpt {
	return func(o *executeOptions) {
		if o.allowedHazardTypes == nil {
			o.allowedHazardTypes = map[MigrationHazardType]bool{}
		}
		for _, t := range types {
			o.allowedHazardTypes[t] = true
		}
	}
}

// CheckHazards returns an error naming every statement whose hazards aren't in the allowed set.
func (p Plan) CheckHazards(allowed ...MigrationHazardType) error {
	isAllowed := map[MigrationHazardType]bool{}
	for _, t := range allowed {
		isAllowed[t] = true
	}
	var disallowed []string
	for i, s := range p.Statements {
		for _, h := range s.Hazards {
			if !isAllowed[h.Type] {
				disallowed = append(disallowed, fmt.Sprintf("statement %d (%s): %s", i+1, h.Type, h.Message))
			}
		}
	}
	if len(disallowed) > 0 {
		return fmt.Errorf("plan contains disallowed hazards:\n%s", joinLines(disallowed))
	}
	return nil
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += "- " + l
	}
	return out
}

// Execute runs the plan against db, within a single SQL transaction by default: on any statement failure it rolls back and returns the error, leaving the
// database untouched, exactly as "Execution" error-taxonomy entry requires.
func Execute(ctx context.Context, db sqldb.Queryable, plan Plan, opts ...ExecuteOpt) (err error) {
	o := &executeOptions{logger: log.SimpleLogger(), singleTransaction: true}
	for _, opt := range opts {
		opt(o)
	}

	if o.allowedHazardTypes != nil {
		if err := plan.CheckHazards(util.Keys(o.allowedHazardTypes)...); err != nil {
			return err
		}
	}

	if o.singleTransaction {
		if _, err := db.ExecContext(ctx, "BEGIN"); err != nil {
			return fmt.Errorf("starting transaction: %w", err)
		}
		// util.DoOnErrOrPanic also rolls back (and re-raises) if a statement panics, not just on a
		// returned error -- a plain `if err != nil` defer would leave the transaction open across a
		// panic, leaking the connection's session state.
		defer util.DoOnErrOrPanic(&err, func() {
				if _, rbErr := db.ExecContext(ctx, "ROLLBACK"); rbErr != nil {
					o.logger.Errorf("rolling back after error %v: %v", err, rbErr)
				}
		})
	}

	for i, s := range plan.Statements {
		o.logger.Infof("executing statement %d/%d: %s", i+1, len(plan.Statements), s.DDL)
		if _, execErr := db.ExecContext(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", s.Timeout.Milliseconds())); execErr != nil {
			return fmt.Errorf("setting statement timeout: %w", execErr)
		}
		if _, execErr := db.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", s.LockTimeout.Milliseconds())); execErr != nil {
			return fmt.Errorf("setting lock timeout: %w", execErr)
		}
		if _, execErr := db.ExecContext(ctx, s.DDL); execErr != nil {
			return fmt.Errorf("executing statement %d (%s): %w\n%# v", i+1, s.DDL, execErr, pretty.Formatter(s))
		}
	}

	if o.singleTransaction {
		if _, execErr := db.ExecContext(ctx, "COMMIT"); execErr != nil {
			return fmt.Errorf("committing transaction: %w", execErr)
		}
	}
	return nil
}
