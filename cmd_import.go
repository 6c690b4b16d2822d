package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/showlog/showlogbackend/ingest"
	"github.com/showlog/showlogbackend/repository"
)

func importCmd(a *app) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "import <export.json>",
		Short: "Load an attendance export into the database",
		Long: `Reads a JSON array of exported rows and stores every show whose Row ID is not
already in the database. Re-running an import is safe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := ingest.LoadRows(args[0])
			if err != nil {
				return err
			}
			rows = ingest.FilterByYear(rows, year)

			records := make([]ingest.ShowRecord, 0, len(rows))
			invalid := 0
			for _, row := range rows {
				rec, err := row.ToShowRecord()
				if err != nil {
					log.Printf("Skipping row: %v", err)
					invalid++
					continue
				}
				records = append(records, rec)
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			res, err := repository.NewShowRepository(db).Import(records)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d shows (%d skipped)\n", res.Created, res.Skipped+invalid)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", -1, "Only import shows from this year")
	return cmd
}
