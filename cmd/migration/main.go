package main

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		log.Fatal("DB_URL is required")
	}

	migrationsDir, err := resolveMigrationsDir()
	if err != nil {
		log.Fatalf("resolve migrations dir: %v", err)
	}

	sourceURL := "file://" + filepath.ToSlash(migrationsDir)
	m, err := migrate.New(sourceURL, normalizeDBURL(dbURL))
	if err != nil {
		log.Fatalf("create migrator: %v", err)
	}
	defer closeMigrator(m)

	if err := run(m, strings.ToLower(strings.TrimSpace(os.Args[1])), os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

func run(m *migrate.Migrate, cmd string, args []string) error {
	switch cmd {
	case "up":
		if err := stripNoChange(m.Up()); err != nil {
			return err
		}
		log.Printf("migrations applied")
		return nil

	case "down":
		steps := 1
		if len(args) > 0 {
			parsed, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil || parsed <= 0 {
				return fmt.Errorf("invalid down steps %q", args[0])
			}
			steps = parsed
		}
		if err := stripNoChange(m.Steps(-steps)); err != nil {
			return err
		}
		log.Printf("rolled back %d migration(s)", steps)
		return nil

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			fmt.Println("dirty: false")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Printf("version: %d\n", version)
		fmt.Printf("dirty: %t\n", dirty)
		return nil

	case "force":
		if len(args) < 1 {
			return fmt.Errorf("force requires a version argument")
		}
		version, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || version < 0 {
			return fmt.Errorf("invalid version %q", args[0])
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
		log.Printf("forced version to %d", version)
		return nil

	default:
		printUsage()
		os.Exit(2)
		return nil
	}
}

func stripNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		log.Printf("no migration changes")
		return nil
	}
	return err
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		log.Printf("close migration source: %v", srcErr)
	}
	if dbErr != nil {
		log.Printf("close migration db: %v", dbErr)
	}
}

func resolveMigrationsDir() (string, error) {
	candidates := []string{
		strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
		"./db/migrations",
		"/app/db/migrations",
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		return abs, nil
	}

	return "", fmt.Errorf("migration directory not found (checked MIGRATIONS_DIR, ./db/migrations, /app/db/migrations)")
}

// Mirrors the API's connection flag so the migrator and the server talk to
// postgres the same way when a pool sits in between.
func normalizeDBURL(raw string) string {
	if !envBool("DB_DISABLE_PREPARED_BINARY_RESULT") {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

func envBool(key string) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <up|down|version|force> [args]\n", prog)
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s up\n", prog)
	fmt.Fprintf(os.Stderr, "  %s down 1\n", prog)
	fmt.Fprintf(os.Stderr, "  %s version\n", prog)
	fmt.Fprintf(os.Stderr, "  %s force 2\n", prog)
}
