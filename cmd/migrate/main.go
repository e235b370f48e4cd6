// Command migrate manages the PostgreSQL schema of the invoicing API.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/infrastructure/migration"
	"github.com/erp/invoicing/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

var errUsage = errors.New("invalid arguments")

// invocation is the parsed command line shared by every command.
type invocation struct {
	args []string
	dir  string // absolute -path value, empty for the embedded set
	log  *zap.Logger
}

func (inv *invocation) arg(i int, usage string) (string, error) {
	if len(inv.args) <= i {
		return "", fmt.Errorf("%w: usage: migrate %s", errUsage, usage)
	}
	return inv.args[i], nil
}

// fileCommands never touch the database.
var fileCommands = map[string]func(*invocation) error{
	"create": runCreate,
	"list":   runList,
}

// dbCommands run against a migrator bound to the configured database.
var dbCommands = map[string]func(*invocation, *migration.Migrator) error{
	"up":      func(_ *invocation, m *migration.Migrator) error { return m.Up() },
	"down":    func(_ *invocation, m *migration.Migrator) error { return m.Down() },
	"step":    runStep,
	"goto":    runGoto,
	"version": runVersion,
	"force":   runForce,
	"drop":    runDrop,
}

func main() {
	migrationsPath := flag.String("path", "", "Read migrations from this directory instead of the embedded set")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{Level: *logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(flag.Args(), *migrationsPath, log); err != nil {
		if errors.Is(err, errUsage) {
			printUsage()
		}
		log.Error("Migration command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(args []string, migrationsPath string, log *zap.Logger) error {
	inv := &invocation{args: args, log: log}
	if migrationsPath != "" {
		abs, err := filepath.Abs(migrationsPath)
		if err != nil {
			return fmt.Errorf("resolve migrations path: %w", err)
		}
		inv.dir = abs
	}

	command := args[0]
	log.Info("Migration CLI started", zap.String("command", command), zap.String("migrations_path", sourceName(inv.dir)))

	if fn, ok := fileCommands[command]; ok {
		return fn(inv)
	}
	fn, ok := dbCommands[command]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	m, closeDB, err := openMigrator(inv)
	if err != nil {
		return err
	}
	defer closeDB()
	return fn(inv, m)
}

func openMigrator(inv *invocation) (*migration.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return nil, nil, fmt.Errorf("SQL migrations target postgres, got driver %q; sqlite schemas are created with auto_migrate", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	var m *migration.Migrator
	if inv.dir != "" {
		m, err = migration.NewFromPath(db, inv.dir, inv.log)
	} else {
		m, err = migration.New(db, migrations.FS, inv.log)
	}
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("create migrator: %w", err)
	}
	// Migrator.Close closes db as well.
	return m, func() { _ = m.Close() }, nil
}

func runCreate(inv *invocation) error {
	name, err := inv.arg(1, "create <name> [description]")
	if err != nil {
		return err
	}
	dir := inv.dir
	if dir == "" {
		dir = defaultMigrationsDir
	}
	description := ""
	if len(inv.args) > 2 {
		description = inv.args[2]
	}

	mf, err := migration.CreateMigration(dir, name, description)
	if err != nil {
		return err
	}
	inv.log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath))
	return nil
}

func runList(inv *invocation) error {
	var fsys fs.FS = migrations.FS
	if inv.dir != "" {
		fsys = os.DirFS(inv.dir)
	}
	entries, err := migration.ListMigrations(fsys)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		inv.log.Info("No migrations found")
		return nil
	}
	inv.log.Info("Available migrations", zap.Int("count", len(entries)))
	for _, e := range entries {
		fmt.Printf("  - %06d_%s (down: %t)\n", e.Version, e.Name, e.HasDown)
	}
	return nil
}

func runStep(inv *invocation, m *migration.Migrator) error {
	raw, err := inv.arg(1, "step <n>")
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: step count %q is not an integer", errUsage, raw)
	}
	return m.Steps(n)
}

func runGoto(inv *invocation, m *migration.Migrator) error {
	raw, err := inv.arg(1, "goto <version>")
	if err != nil {
		return err
	}
	version, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: version %q is not a number", errUsage, raw)
	}
	return m.GoTo(uint(version))
}

func runVersion(inv *invocation, m *migration.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		inv.log.Info("No migrations applied")
		return nil
	}
	inv.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func runForce(inv *invocation, m *migration.Migrator) error {
	raw, err := inv.arg(1, "force <version>")
	if err != nil {
		return err
	}
	version, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: version %q is not a number", errUsage, raw)
	}
	return m.Force(version)
}

func runDrop(inv *invocation, m *migration.Migrator) error {
	if !slices.Contains(inv.args[1:], "-confirm") && !slices.Contains(inv.args[1:], "--confirm") {
		return fmt.Errorf("%w: drop requires -confirm", errUsage)
	}
	return m.Drop()
}

func sourceName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

func printUsage() {
	fmt.Println(`Invoicing database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  version               Show the current version
  force <version>       Set the version without running migrations
  drop -confirm         Drop every object in the database
  create <name> [desc]  Write a new up/down pair into ./migrations
  list                  List available migrations

Flags:
  -path string          Migrations directory (default: the set compiled into the binary)
  -log-level string     debug, info, warn or error (default: info)

Connection settings come from the server configuration, e.g.
  INVOICE_DATABASE_HOST, INVOICE_DATABASE_PORT, INVOICE_DATABASE_USER,
  INVOICE_DATABASE_PASSWORD, INVOICE_DATABASE_DBNAME, INVOICE_DATABASE_SSL_MODE

Examples:
  migrate up
  migrate step -1
  migrate create add_invoice_notes "Add a notes column to invoices"`)
}
