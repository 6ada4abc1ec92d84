// Command dbextend applies the denormalized-column Extender to a YAML schema document, adding
// columns that mirror a parent table's column across a foreign key and wiring the trigger pair
// that keeps the copy in sync in both directions.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dbsync/dbsync/internal/cli"
	"github.com/dbsync/dbsync/internal/config"
	"github.com/dbsync/dbsync/internal/extend"
	"github.com/dbsync/dbsync/internal/model"
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
		Use: "dbextend extend-spec [schema-spec]",
		Short: "Apply a denormalized-column extender spec to a YAML schema document",
		Args: cobra.RangeArgs(1, 2),
	}

	mfFlag := cli.RegisterMultipleFilesFlag(cmd)
	outFlags := cli.RegisterOutputFlags(cmd)
	cfgFlags := cli.RegisterConfigFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		extendSpecPath := args[0]
		schemaSpecPath := ""
		if len(args) == 2 {
			schemaSpecPath = args[1]
		}
		return run(cmd.Context(), mfFlag, outFlags, cfgFlags, extendSpecPath, schemaSpecPath)
	}
	return cmd
}

func run(ctx context.Context, mfFlag *cli.MultipleFilesFlag, outFlags *cli.OutputFlags, cfgFlags *cli.ConfigFlags,
	extendSpecPath, schemaSpecPath string) error {

	if _, err := config.Load(cfgFlags.RepoPath); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	spec, err := loadExtendSpec(extendSpecPath)
	if err != nil {
		return err
	}

	current, err := loadSchema(mfFlag, schemaSpecPath)
	if err != nil {
		return err
	}

	extended, err := extend.Apply(current, spec)
	if err != nil {
		return fmt.Errorf("applying extender spec: %w", err)
	}

	if outFlags.MultipleFiles {
		root := outFlags.OutFile
		if root == "" {
			root = "."
		}
		return yamlio.WriteDir(ctx, root, "", extended, config.MaxIdentLen())
	}
	return yamlio.Write(outFlags.OutFile, extended)
}

// extendSpecFile is the on-disk shape of an extender spec: for each "schema.table", the list of
// denormalized columns to maintain on it.
type extendSpecFile struct {
	Tables map[string]struct {
		Columns []struct {
			Name string `yaml:"name"`
			Copy string `yaml:"copy"`
			Type string `yaml:"type"`
			ForeignKey string `yaml:"foreign_key"`
		} `yaml:"columns"`
	} `yaml:"tables"`
}

func loadExtendSpec(path string) (extend.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extend.Spec{}, fmt.Errorf("reading extender spec %s: %w", path, err)
	}
	var f extendSpecFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return extend.Spec{}, fmt.Errorf("parsing extender spec %s: %w", path, err)
	}

	spec := extend.Spec{Tables: map[string]extend.TableSpec{}}
	for tableKey, t := range f.Tables {
		var cols []extend.ColumnSpec
		for _, c := range t.Columns {
			cols = append(cols, extend.ColumnSpec{Name: c.Name, Copy: c.Copy, Type: c.Type, ForeignKey: c.ForeignKey})
		}
		spec.Tables[tableKey] = extend.TableSpec{Columns: cols}
	}
	return spec, nil
}

func loadSchema(mfFlag *cli.MultipleFilesFlag, path string) (model.Model, error) {
	if mfFlag.MultipleFiles {
		root := path
		if root == "" {
			root = "."
		}
		return yamlio.ReadDir(root)
	}
	return yamlio.Read(path)
}
