package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Proton-105/dataeng-assistant/internal/leads"
	"github.com/Proton-105/dataeng-assistant/internal/repository"
)

func leadsCMD() *cobra.Command {
	var leadsCmd = &cobra.Command{
		Use:   "leads",
		Short: "Work with captured leads",
	}
	leadsCmd.AddCommand(leadsExportCMD())

	return leadsCmd
}

func leadsExportCMD() *cobra.Command {
	var out string
	var export = &cobra.Command{
		Use:   "export",
		Short: "Export captured leads to an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			db, err := openDB(ctx, a.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}

			svc := leads.NewService(repository.NewLeadRepository(db, a.log.Logger), nil, a.log.Logger)
			n, err := svc.Export(ctx, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			a.log.Info("leads exported", slog.String("file", out), slog.Int("rows", n))
			return nil
		},
	}
	export.Flags().StringVarP(&out, "out", "o", "leads.xlsx", "output file")

	return export
}
