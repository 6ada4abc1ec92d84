// Package cli holds the flag-registration and connection-resolution helpers shared by
// cmd/dbtoyaml, cmd/yamltodb and cmd/dbaugment: a PYRSEAS_*-style -H/-p/-U/-W flag set with
// PG*-environment-variable fallbacks.
package cli

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// ConnectionFlags is dbtoyaml's and yamltodb's shared connection flag set: -H/-p/-U/-W, falling
// back to PGHOST/PGPORT/PGUSER/PGPASSWORD/PGDATABASE when a flag is unset, exactly as libpq does.
type ConnectionFlags struct {
	Host string
	Port int
	User string
	PromptPassword bool
	Dbname string
}

// RegisterConnectionFlags adds -H, -p, -U, -W to cmd and returns the struct cobra will populate.
func RegisterConnectionFlags(cmd *cobra.Command) *ConnectionFlags {
	c := &ConnectionFlags{}
	cmd.Flags().StringVarP(&c.Host, "host", "H", "", "database server host (default PGHOST, then localhost)")
	cmd.Flags().IntVarP(&c.Port, "port", "p", 0, "database server port (default PGPORT, then 5432)")
	cmd.Flags().StringVarP(&c.User, "username", "U", "", "database user name (default PGUSER, then OS user)")
	cmd.Flags().BoolVarP(&c.PromptPassword, "password", "W", false, "prompt for password instead of reading PGPASSWORD")
	return c
}

// ResolveDSN turns ConnectionFlags plus the positional dbname argument into a lib/pq connection
// string, applying the same PG* environment variable fallbacks libpq uses and prompting for a
// password via promptui when -W was given.
func (c *ConnectionFlags) ResolveDSN(dbname string) (string, error) {
	host := firstNonEmpty(c.Host, os.Getenv("PGHOST"), "localhost")
	port := c.Port
	if port == 0 {
		port = envInt("PGPORT", 5432)
	}
	user := firstNonEmpty(c.User, os.Getenv("PGUSER"), os.Getenv("USER"))
	name := firstNonEmpty(dbname, c.Dbname, os.Getenv("PGDATABASE"), user)

	password := os.Getenv("PGPASSWORD")
	if c.PromptPassword {
		p, err := promptPassword()
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		password = p
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=prefer", host, port, user, name)
	if password != "" {
		dsn += fmt.Sprintf(" password=%s", password)
	}
	return dsn, nil
}

func promptPassword() (string, error) {
	prompt := promptui.Prompt{Label: "Password", Mask: '*'}
	return prompt.Run()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n := def
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return def
	}
	return n
}

// SchemaFilterFlags is dbtoyaml's/yamltodb's -n/-N repeatable schema include/exclude pair.
type SchemaFilterFlags struct {
	Include []string
	Exclude []string
}

func RegisterSchemaFilterFlags(cmd *cobra.Command) *SchemaFilterFlags {
	f := &SchemaFilterFlags{}
	cmd.Flags().StringArrayVarP(&f.Include, "schema", "n", nil, "dump only schemas matching this name (repeatable)")
	cmd.Flags().StringArrayVarP(&f.Exclude, "exclude-schema", "N", nil, "do not dump schemas matching this name (repeatable)")
	return f
}

// TableFilterFlags is dbtoyaml's -t/-T repeatable table include/exclude pair.
type TableFilterFlags struct {
	Include []string
	Exclude []string
}

func RegisterTableFilterFlags(cmd *cobra.Command) *TableFilterFlags {
	f := &TableFilterFlags{}
	cmd.Flags().StringArrayVarP(&f.Include, "table", "t", nil, "dump only tables matching this name (repeatable)")
	cmd.Flags().StringArrayVarP(&f.Exclude, "exclude-table", "T", nil, "do not dump tables matching this name (repeatable)")
	return f
}

// OutputFlags is dbtoyaml's -o/-O/-x/-m set: output file, owner suppression, privilege
// suppression, and multiple-file output.
type OutputFlags struct {
	OutFile string
	NoOwner bool
	NoPrivileges bool
	MultipleFiles bool
}

func RegisterOutputFlags(cmd *cobra.Command) *OutputFlags {
	f := &OutputFlags{}
	cmd.Flags().StringVarP(&f.OutFile, "output", "o", "", "output file, or '-m' directory root (default stdout)")
	cmd.Flags().BoolVarP(&f.NoOwner, "no-owner", "O", false, "omit object owners from the output")
	cmd.Flags().BoolVarP(&f.NoPrivileges, "no-privileges", "x", false, "omit object privileges from the output")
	cmd.Flags().BoolVarP(&f.MultipleFiles, "multiple-files", "m", false, "write one file per schema object instead of a single document")
	return f
}

// MultipleFilesFlag is yamltodb's/dbaugment's bare -m flag: read the desired-state spec from a
// multiple-file layout directory instead of a single YAML document.
type MultipleFilesFlag struct {
	MultipleFiles bool
}

func RegisterMultipleFilesFlag(cmd *cobra.Command) *MultipleFilesFlag {
	f := &MultipleFilesFlag{}
	cmd.Flags().BoolVarP(&f.MultipleFiles, "multiple-files", "m", false, "read spec from a multiple-file layout directory")
	return f
}

// ConfigFlags is the -c/-r pair every command accepts for internal/config.Load.
type ConfigFlags struct {
	ConfigFile string
	RepoPath string
}

func RegisterConfigFlags(cmd *cobra.Command) *ConfigFlags {
	f := &ConfigFlags{}
	cmd.Flags().StringVarP(&f.ConfigFile, "config", "c", "", "configuration file path")
	cmd.Flags().StringVarP(&f.RepoPath, "repository", "r", "", "repository directory for multiple-file output")
	return f
}

// ExecuteFlags is yamltodb's -1/-u/--revert set.
type ExecuteFlags struct {
	SingleTransaction bool
	Update bool
	Revert bool
}

func RegisterExecuteFlags(cmd *cobra.Command) *ExecuteFlags {
	f := &ExecuteFlags{SingleTransaction: true}
	cmd.Flags().BoolVarP(&f.SingleTransaction, "single-transaction", "1", true, "wrap the whole plan in one transaction")
	cmd.Flags().BoolVarP(&f.Update, "update", "u", false, "execute the plan against the database instead of only printing it")
	cmd.Flags().BoolVar(&f.Revert, "revert", false, "compute and apply the best-effort inverse plan (experimental)")
	return f
}
