package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/showlog/showlogbackend/bandnames"
	"github.com/showlog/showlogbackend/database"
	"github.com/showlog/showlogbackend/ingest"
	"github.com/showlog/showlogbackend/stats"
)

// reportFlags select the data source for a report. With --rows the export file is read
// directly and the equivalence table is applied; otherwise the database is queried and
// stored alias groups are applied.
type reportFlags struct {
	rowsPath string
	year     int
	limit    int
}

func (f *reportFlags) register(cmd *cobra.Command, withLimit bool) {
	cmd.Flags().StringVar(&f.rowsPath, "rows", "", "Read a JSON export instead of the database")
	cmd.Flags().IntVar(&f.year, "year", -1, "Optional year to calculate")
	if withLimit {
		cmd.Flags().IntVar(&f.limit, "limit", -1, "Optional limit on number of results to show")
	}
}

func (f *reportFlags) yearString() string {
	if f.year <= 0 {
		return ""
	}
	return strconv.Itoa(f.year)
}

func (f *reportFlags) loadRows() ([]ingest.Row, error) {
	rows, err := ingest.LoadRows(f.rowsPath)
	if err != nil {
		return nil, err
	}
	return ingest.FilterByYear(rows, f.year), nil
}

func printCounts(w io.Writer, counts []stats.NameCount) {
	if len(counts) == 0 {
		fmt.Fprintln(w, "No data found.")
		return
	}
	for _, c := range counts {
		fmt.Fprintf(w, "%s: %d\n", c.Name, c.Count)
	}
}

// bandCounts returns effective band counts, ordered by count then name.
func (a *app) bandCounts(f *reportFlags) ([]stats.NameCount, error) {
	if f.rowsPath != "" {
		rows, err := f.loadRows()
		if err != nil {
			return nil, err
		}
		n, err := a.normalizer()
		if err != nil {
			return nil, err
		}
		return ingest.CountBands(rows, n), nil
	}

	db, err := a.openDB()
	if err != nil {
		return nil, err
	}
	defer closeDB(db)
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	bands, err := database.ListBandStats(sqlDB, database.BandFilter{Year: f.yearString()})
	if err != nil {
		return nil, err
	}
	counts := make([]stats.NameCount, len(bands))
	for i, b := range bands {
		counts[i] = stats.NameCount{Name: b.Name, Count: b.TimesSeen}
	}
	return counts, nil
}

func bandsSeenCmd(a *app) *cobra.Command {
	f := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "bands-seen",
		Short: "Count how many times each band was seen",
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := a.bandCounts(f)
			if err != nil {
				return err
			}
			printCounts(cmd.OutOrStdout(), stats.Limit(counts, f.limit))
			return nil
		},
	}
	f.register(cmd, true)
	return cmd
}

func venuesCmd(a *app) *cobra.Command {
	f := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "venues",
		Short: "Count shows per venue",
		RunE: func(cmd *cobra.Command, args []string) error {
			var counts []stats.NameCount
			if f.rowsPath != "" {
				rows, err := f.loadRows()
				if err != nil {
					return err
				}
				counts = stats.Limit(ingest.CountVenues(rows), f.limit)
			} else {
				db, err := a.openDB()
				if err != nil {
					return err
				}
				defer closeDB(db)
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				limit := f.limit
				if limit < 0 {
					limit = 0
				}
				venues, err := database.TopVenues(sqlDB, f.yearString(), limit)
				if err != nil {
					return err
				}
				for _, v := range venues {
					counts = append(counts, stats.NameCount{Name: v.Name, Count: v.Shows})
				}
			}
			printCounts(cmd.OutOrStdout(), counts)
			return nil
		},
	}
	f.register(cmd, true)
	return cmd
}

func duplicatesCmd(a *app) *cobra.Command {
	f := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "List band names that look like spellings of the same act",
		Long: `Groups band names by a loose comparison key (case, "the", "and"/"&",
punctuation and spaces ignored). Matches are only suggestions; review them and create
alias groups for the real ones.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var names []string
			if f.rowsPath != "" {
				rows, err := f.loadRows()
				if err != nil {
					return err
				}
				names = ingest.BandNames(rows)
			} else {
				db, err := a.openDB()
				if err != nil {
					return err
				}
				defer closeDB(db)
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				if names, err = database.ListBandNames(sqlDB); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			sets := bandnames.FindDuplicates(names)
			if len(sets) == 0 {
				fmt.Fprintln(w, "No duplicates found.")
				return nil
			}
			for _, s := range sets {
				fmt.Fprintln(w, strings.Join(s.Names, " | "))
			}
			return nil
		},
	}
	f.register(cmd, false)
	return cmd
}

func mostByLetterCmd(a *app) *cobra.Command {
	f := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "most-by-letter",
		Short: "Show the most-seen band for each initial letter",
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := a.bandCounts(f)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			letters := stats.MostByLetter(counts)
			if len(letters) == 0 {
				fmt.Fprintln(w, "No data found.")
				return nil
			}
			for _, l := range letters {
				for _, b := range l.Leaders {
					fmt.Fprintf(w, "%s - %s (%d)\n", l.Letter, b.Name, b.Count)
				}
			}
			return nil
		},
	}
	f.register(cmd, false)
	return cmd
}
