// Command yamltodb diffs a YAML schema document against a live Postgres database and prints,
// or (with -u) executes, the migration plan to bring the database to match.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq" // database/sql driver
	"github.com/spf13/cobra"

	"github.com/dbsync/dbsync/internal/catalog"
	"github.com/dbsync/dbsync/internal/cli"
	"github.com/dbsync/dbsync/internal/config"
	"github.com/dbsync/dbsync/internal/model"
	"github.com/dbsync/dbsync/pkg/dbsync"
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
		Use: "yamltodb dbname [spec]",
		Short: "Diff a YAML schema document against a database and apply the migration",
		Args: cobra.RangeArgs(1, 2),
	}

	connFlags := cli.RegisterConnectionFlags(cmd)
	schemaFlags := cli.RegisterSchemaFilterFlags(cmd)
	mfFlag := cli.RegisterMultipleFilesFlag(cmd)
	cfgFlags := cli.RegisterConfigFlags(cmd)
	execFlags := cli.RegisterExecuteFlags(cmd)
	var debugGraphPath string
	cmd.Flags().StringVar(&debugGraphPath, "debug-graph", "", "write the dependency graph driving the plan to this file, as Graphviz DOT")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		dbname := args[0]
		specPath := ""
		if len(args) == 2 {
			specPath = args[1]
		}
		return run(cmd.Context(), connFlags, schemaFlags, mfFlag, cfgFlags, execFlags, dbname, specPath, debugGraphPath)
	}
	return cmd
}

func run(ctx context.Context, connFlags *cli.ConnectionFlags, schemaFlags *cli.SchemaFilterFlags,
	mfFlag *cli.MultipleFilesFlag, cfgFlags *cli.ConfigFlags, execFlags *cli.ExecuteFlags, dbname, specPath, debugGraphPath string) error {

	if _, err := config.Load(cfgFlags.RepoPath); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	desired, err := loadDesired(ctx, mfFlag, specPath)
	if err != nil {
		return err
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
	current, err := reader.FetchModel(ctx)
	if err != nil {
		return fmt.Errorf("reading current schema: %w", err)
	}

	if debugGraphPath != "" {
		f, err := os.Create(debugGraphPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", debugGraphPath, err)
		}
		defer f.Close()
		if err := dbsync.WriteDependencyGraphDOT(current, desired, f); err != nil {
			return fmt.Errorf("writing dependency graph: %w", err)
		}
	}

	var plan dbsync.Plan
	if execFlags.Revert {
		plan, err = dbsync.Revert(current, desired)
	} else {
		plan, err = dbsync.Diff(current, desired)
	}
	if err != nil {
		return fmt.Errorf("computing plan: %w", err)
	}

	if !execFlags.Update {
		for _, s := range plan.ToSQL() {
			fmt.Println(s)
		}
		return nil
	}

	opts := []dbsync.ExecuteOpt{}
	if !execFlags.SingleTransaction {
		opts = append(opts, dbsync.WithoutSingleTransaction())
	}
	if err := dbsync.Execute(ctx, db, plan, opts...); err != nil {
		return fmt.Errorf("applying plan: %w", err)
	}
	return nil
}

func loadDesired(ctx context.Context, mfFlag *cli.MultipleFilesFlag, specPath string) (model.Model, error) {
	if mfFlag.MultipleFiles {
		root := specPath
		if root == "" {
			root = "."
		}
		return yamlio.ReadDir(root)
	}
	return yamlio.Read(specPath)
}
