// Package sqlgen implements the SQL Generator half of the Scheduler / SQL Emitter:
// turning a single differ.Change into one or more DDL Statements. internal/scheduler is
// responsible for ordering the statements this package produces; this package only knows how to
// render one change at a time.
package sqlgen

import (
	"fmt"
	"time"
)

// MigrationHazardType tags a risk category a generated statement carries, grounded on the
// teacher's pkg/diff/plan.go hazard taxonomy.
type MigrationHazardType = string

const (
	HazardAcquiresAccessExclusiveLock MigrationHazardType = "ACQUIRES_ACCESS_EXCLUSIVE_LOCK"
	HazardAcquiresShareLock MigrationHazardType = "ACQUIRES_SHARE_LOCK"
	HazardDeletesData MigrationHazardType = "DELETES_DATA"
	HazardIndexBuild MigrationHazardType = "INDEX_BUILD"
	HazardIndexDropped MigrationHazardType = "INDEX_DROPPED"
	HazardImpactsDatabasePerformance MigrationHazardType = "IMPACTS_DATABASE_PERFORMANCE"
)

type MigrationHazard struct {
	Type MigrationHazardType
	Message string
}

func (h MigrationHazard) String() string { return fmt.Sprintf("%s: %s", h.Type, h.Message) }

// Statement is one DDL statement plus the metadata an Execute-mode runner needs to apply it safely.
type Statement struct {
	DDL string
	Timeout time.Duration
	LockTimeout time.Duration
	Hazards []MigrationHazard
	SkipValidation bool
}

func (s Statement) ToSQL() string { return s.DDL + ";" }

func ddl(format string, args ...any) Statement {
	return Statement{DDL: fmt.Sprintf(format, args...)}
}

func withHazard(s Statement, t MigrationHazardType, msg string) Statement {
	s.Hazards = append(s.Hazards, MigrationHazard{Type: t, Message: msg})
	return s
}
