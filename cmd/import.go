package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/frahmantamala/uniform-manager/internal/importer"
	"github.com/frahmantamala/uniform-manager/pkg/logger"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import catalog data from CSV files",
}

var importUniformsCmd = &cobra.Command{
	Use:   "uniforms [file]",
	Short: "Import uniform items (Name, EAN, Qty columns)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd.Context(), args[0], func(s *importer.Service) func(context.Context, io.Reader) (*importer.Result, error) {
			return s.ImportUniforms
		})
	},
}

var importStaffCmd = &cobra.Command{
	Use:   "staff [file]",
	Short: "Import staff members (Display Name, Role, Store columns)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd.Context(), args[0], func(s *importer.Service) func(context.Context, io.Reader) (*importer.Result, error) {
			return s.ImportStaff
		})
	},
}

func runImport(ctx context.Context, path string, pick func(*importer.Service) func(context.Context, io.Reader) (*importer.Result, error)) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := setup()
	if err != nil {
		return err
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	gdb, err := initGorm(db, false)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	repos := newRepositories(db, gdb)
	svc := importer.NewService(repos.Stock, repos.Staff, repos.Roles, logger.LoggerWrapper())

	result, err := pick(svc)(ctx, f)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func init() {
	importCmd.AddCommand(importUniformsCmd)
	importCmd.AddCommand(importStaffCmd)
	rootCmd.AddCommand(importCmd)
}
