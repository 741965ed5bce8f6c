// Command vtabq opens a SQLite database with every bundled synthetic-table
// module registered and executes the given statements, printing result rows
// to stdout. It is the quickest way to poke at the virtual tables:
//
//	vtabq -q "CREATE VIRTUAL TABLE s USING generate_series(10,20,2)" \
//	      -q "SELECT value FROM s"
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/viant/sqlite-vtab/calendar"
	"github.com/viant/sqlite-vtab/dict"
	"github.com/viant/sqlite-vtab/engine"
	"github.com/viant/sqlite-vtab/series"
	"github.com/viant/sqlite-vtab/vtable"
)

type options struct {
	DSN     string   `short:"d" long:"dsn" env:"VTABQ_DSN" description:"database path or :memory:" default:":memory:"`
	Queries []string `short:"q" long:"query" required:"true" description:"statement to execute; repeatable, run in order"`
	Dbg     bool     `long:"dbg" description:"debug mode"`
}

var revision = "latest"

func main() {
	fmt.Printf("vtabq %s\n", revision)

	var opts options
	p := flags.NewParser(&opts, flags.PrintErrors|flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		if err.(*flags.Error).Type != flags.ErrHelp {
			os.Exit(1)
		}
		os.Exit(2)
	}
	setupLog(opts.Dbg)
	vtable.Debug = opts.Dbg

	if err := run(opts); err != nil {
		if opts.Dbg {
			log.Panicf("[ERROR] %v", err)
		}
		fmt.Printf("failed: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	db, err := engine.Open(opts.DSN)
	if err != nil {
		return fmt.Errorf("can't open %q: %w", opts.DSN, err)
	}
	defer db.Close()

	if err := engine.RegisterBuiltins(db); err != nil {
		return fmt.Errorf("can't register builtin functions: %w", err)
	}
	modules := map[string]vtable.Module{
		"generate_series": series.New(),
		"calendar":        calendar.New(),
		"env":             dict.NewEnv(),
	}
	if err := vtable.RegisterAll(db, modules); err != nil {
		return fmt.Errorf("can't register modules: %w", err)
	}

	for _, q := range opts.Queries {
		if err := execute(db, q); err != nil {
			return err
		}
	}
	return nil
}

// execute runs a single statement. Statements without a result set go through
// Exec; everything else is printed tab-separated with a header line.
func execute(db *sql.DB, q string) error {
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(q)), "SELECT") {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec %q: %w", q, err)
		}
		return nil
	}

	rows, err := db.Query(q)
	if err != nil {
		return fmt.Errorf("query %q: %w", q, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("columns of %q: %w", q, err)
	}
	fmt.Println(strings.Join(cols, "\t"))

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	n := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = formatCell(v)
		}
		fmt.Println(strings.Join(parts, "\t"))
		n++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows of %q: %w", q, err)
	}
	log.Printf("[DEBUG] %d row(s) for %q", n, q)
	return nil
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("x'%x'", val)
	default:
		return fmt.Sprint(val)
	}
}

func setupLog(dbg bool) {
	logOpts := []lgr.Option{lgr.Out(os.Stderr), lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = append(logOpts, lgr.Debug, lgr.CallerFile, lgr.CallerFunc)
	}
	lgr.SetupStdLogger(logOpts...)
}
