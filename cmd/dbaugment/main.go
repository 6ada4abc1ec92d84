// Command dbaugment applies the Augmenter to a YAML schema document, injecting
// named column/trigger/function templates into the tables an augmenter spec names.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dbsync/dbsync/internal/augment"
	"github.com/dbsync/dbsync/internal/cli"
	"github.com/dbsync/dbsync/internal/config"
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
		Use: "dbaugment augment-spec [schema-spec]",
		Short: "Apply an augmenter spec's column/trigger/function templates to a YAML schema document",
		Args: cobra.RangeArgs(1, 2),
	}

	mfFlag := cli.RegisterMultipleFilesFlag(cmd)
	outFlags := cli.RegisterOutputFlags(cmd)
	cfgFlags := cli.RegisterConfigFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		augmentSpecPath := args[0]
		schemaSpecPath := ""
		if len(args) == 2 {
			schemaSpecPath = args[1]
		}
		return run(cmd.Context(), mfFlag, outFlags, cfgFlags, augmentSpecPath, schemaSpecPath)
	}
	return cmd
}

func run(ctx context.Context, mfFlag *cli.MultipleFilesFlag, outFlags *cli.OutputFlags, cfgFlags *cli.ConfigFlags,
	augmentSpecPath, schemaSpecPath string) error {

	if _, err := config.Load(cfgFlags.RepoPath); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	spec, err := loadAugmentSpec(augmentSpecPath)
	if err != nil {
		return err
	}

	current, err := loadSchema(mfFlag, schemaSpecPath)
	if err != nil {
		return err
	}

	augmented, err := augment.Apply(current, spec)
	if err != nil {
		return fmt.Errorf("applying augmenter spec: %w", err)
	}

	if outFlags.MultipleFiles {
		root := outFlags.OutFile
		if root == "" {
			root = "."
		}
		return yamlio.WriteDir(ctx, root, "", augmented, config.MaxIdentLen())
	}
	return yamlio.Write(outFlags.OutFile, augmented)
}

// augmentSpecFile is the on-disk shape of an augmenter spec: a flat map of "schema.table" to the
// Template name to apply to that table.
type augmentSpecFile struct {
	Tables map[string]string `yaml:"tables"`
}

func loadAugmentSpec(path string) (augment.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return augment.Spec{}, fmt.Errorf("reading augmenter spec %s: %w", path, err)
	}
	var f augmentSpecFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return augment.Spec{}, fmt.Errorf("parsing augmenter spec %s: %w", path, err)
	}
	return augment.Spec{Tables: f.Tables}, nil
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
