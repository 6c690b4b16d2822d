// Package main provides the showlog binary: the JSON API server plus command-line
// reports over the attendance log.
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/showlog/showlogbackend/bandnames"
	"github.com/showlog/showlogbackend/config"
	"github.com/showlog/showlogbackend/database"
)

const appName = "showlog"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the configuration resolved once per invocation.
type app struct {
	cfg             config.Config
	dbPath          string
	equivalentsPath string
}

func (a *app) load() error {
	if err := godotenv.Load(); err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.dbPath != "" {
		cfg.DatabasePath = a.dbPath
	}
	if a.equivalentsPath != "" {
		cfg.EquivalentsPath = a.equivalentsPath
	}
	a.cfg = cfg
	return nil
}

func (a *app) openDB() (*gorm.DB, error) {
	db, err := database.Open(a.cfg.DatabasePath, a.cfg.DBLogLevel, a.cfg.BusyTimeoutMS)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

func (a *app) normalizer() (*bandnames.Normalizer, error) {
	return bandnames.NewNormalizerFromFile(a.cfg.EquivalentsPath)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Concert attendance log",
		Long: `Showlog records the shows you have attended and reports on them.

Band names billed differently across shows can be folded together two ways:
- a static equivalence table (EQUIVALENTS_PATH) applied when counting raw rows
- alias groups stored in the database, which roll an alias band's
  appearances into its primary band's statistics`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	cmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "Database path (overrides DATABASE_PATH)")
	cmd.PersistentFlags().StringVar(&a.equivalentsPath, "equivalents", "", "Band equivalence YAML (overrides EQUIVALENTS_PATH)")

	cmd.AddCommand(
		serveCmd(a),
		importCmd(a),
		bandsSeenCmd(a),
		venuesCmd(a),
		duplicatesCmd(a),
		mostByLetterCmd(a),
		groupsCmd(a),
		hashPasswordCmd(),
	)
	return cmd
}
