// Command dbtoyaml extracts a Postgres database's schema into a YAML document.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/dbsync/dbsync/internal/catalog"
	"github.com/dbsync/dbsync/internal/cli"
	"github.com/dbsync/dbsync/internal/config"
	"github.com/dbsync/dbsync/pkg/yamlio"
)

func main() {
	if err := buildCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use: "dbtoyaml [dbname]",
		Short: "Extract a Postgres database's schema to YAML",
		Args: cobra.MaximumNArgs(1),
	}

	connFlags := cli.RegisterConnectionFlags(cmd)
	schemaFlags := cli.RegisterSchemaFilterFlags(cmd)
	tableFlags := cli.RegisterTableFilterFlags(cmd)
	outFlags := cli.RegisterOutputFlags(cmd)
	cfgFlags := cli.RegisterConfigFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		dbname := ""
		if len(args) == 1 {
			dbname = args[0]
		}
		return run(cmd.Context(), connFlags, schemaFlags, tableFlags, outFlags, cfgFlags, dbname)
	}
	return cmd
}

func run(ctx context.Context, connFlags *cli.ConnectionFlags, schemaFlags *cli.SchemaFilterFlags,
	tableFlags *cli.TableFilterFlags, outFlags *cli.OutputFlags, cfgFlags *cli.ConfigFlags, dbname string) error {

	if _, err := config.Load(cfgFlags.RepoPath); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	dsn, err := connFlags.ResolveDSN(dbname)
	if err != nil {
		return err
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	reader, err := catalog.New(ctx, db,
		catalog.WithIncludeSchemas(schemaFlags.Include...),
		catalog.WithExcludeSchemas(schemaFlags.Exclude...))
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	m, err := reader.FetchModel(ctx)
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}

	m = filterTables(m, tableFlags)
	if outFlags.NoOwner {
		m = stripOwners(m)
	}
	if outFlags.NoPrivileges {
		m = stripPrivileges(m)
	}

	if outFlags.MultipleFiles {
		root := outFlags.OutFile
		if root == "" {
			root = "."
		}
		return yamlio.WriteDir(ctx, root, dbname, m, config.MaxIdentLen())
	}
	return yamlio.Write(outFlags.OutFile, m)
}
