package calendar

import (
	"testing"

	"github.com/viant/sqlite-vtab/engine"
	"github.com/viant/sqlite-vtab/vtable"
)

func openWithCalendar(t *testing.T) (dbExec func(string) error, queryTexts func(string) []string, closeFn func()) {
	t.Helper()
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("engine.Open(:memory:) failed: %v", err)
	}
	if err := vtable.Register(db, "calendar", New()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	dbExec = func(q string) error {
		_, err := db.Exec(q)
		return err
	}
	queryTexts = func(q string) []string {
		rows, err := db.Query(q)
		if err != nil {
			t.Fatalf("query %q failed: %v", q, err)
		}
		defer rows.Close()
		var out []string
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				t.Fatalf("scan failed: %v", err)
			}
			out = append(out, v)
		}
		if err := rows.Err(); err != nil {
			t.Fatalf("rows err: %v", err)
		}
		return out
	}
	closeFn = func() { db.Close() }
	return dbExec, queryTexts, closeFn
}

func equalTexts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSQLCalendarWeekly(t *testing.T) {
	exec, query, done := openWithCalendar(t)
	defer done()

	if err := exec(`CREATE VIRTUAL TABLE c1 USING calendar('2024-01-01', '2024-01-31', 'weekly')`); err != nil {
		t.Fatalf("CREATE VIRTUAL TABLE failed: %v", err)
	}
	got := query(`SELECT date FROM c1`)
	want := []string{"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22", "2024-01-29"}
	if !equalTexts(got, want) {
		t.Fatalf("weekly calendar = %v, want %v", got, want)
	}
}

func TestSQLCalendarOrderByDesc(t *testing.T) {
	exec, query, done := openWithCalendar(t)
	defer done()

	if err := exec(`CREATE VIRTUAL TABLE c2 USING calendar('2024-01-01', '2024-01-31', 'weekly')`); err != nil {
		t.Fatalf("CREATE VIRTUAL TABLE failed: %v", err)
	}
	got := query(`SELECT date FROM c2 ORDER BY date DESC LIMIT 2`)
	want := []string{"2024-01-29", "2024-01-22"}
	if !equalTexts(got, want) {
		t.Fatalf("ORDER BY date DESC LIMIT 2 = %v, want %v", got, want)
	}
}

func TestSQLCalendarYearEquality(t *testing.T) {
	exec, query, done := openWithCalendar(t)
	defer done()

	if err := exec(`CREATE VIRTUAL TABLE c3 USING calendar('2020-01-01', '2030-12-31', 'monthly')`); err != nil {
		t.Fatalf("CREATE VIRTUAL TABLE failed: %v", err)
	}
	got := query(`SELECT date FROM c3 WHERE year = 2025`)
	if len(got) != 12 {
		t.Fatalf("year = 2025 yielded %d rows, want 12: %v", len(got), got)
	}
	if got[0] != "2025-01-01" || got[11] != "2025-12-01" {
		t.Fatalf("year = 2025 range = [%s, %s], want [2025-01-01, 2025-12-01]", got[0], got[11])
	}
}

func TestSQLCalendarDateRange(t *testing.T) {
	exec, query, done := openWithCalendar(t)
	defer done()

	if err := exec(`CREATE VIRTUAL TABLE c4 USING calendar('2024-01-01', '2024-12-31', 'daily')`); err != nil {
		t.Fatalf("CREATE VIRTUAL TABLE failed: %v", err)
	}
	got := query(`SELECT date FROM c4 WHERE date >= '2024-02-27' AND date < '2024-03-02'`)
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}
	if !equalTexts(got, want) {
		t.Fatalf("date range scan = %v, want %v", got, want)
	}
}

func TestSQLCalendarHiddenParameters(t *testing.T) {
	exec, query, done := openWithCalendar(t)
	defer done()

	if err := exec(`CREATE VIRTUAL TABLE c5 USING calendar`); err != nil {
		t.Fatalf("CREATE VIRTUAL TABLE failed: %v", err)
	}
	got := query(`SELECT date FROM c5 WHERE start = '2021-06-01' AND stop = '2021-06-03' AND frequency = 'daily'`)
	want := []string{"2021-06-01", "2021-06-02", "2021-06-03"}
	if !equalTexts(got, want) {
		t.Fatalf("parameterized scan = %v, want %v", got, want)
	}
}

func TestSQLCalendarUnparseableBoundYieldsNoRows(t *testing.T) {
	exec, query, done := openWithCalendar(t)
	defer done()

	if err := exec(`CREATE VIRTUAL TABLE c6 USING calendar`); err != nil {
		t.Fatalf("CREATE VIRTUAL TABLE failed: %v", err)
	}
	got := query(`SELECT date FROM c6 WHERE start = 'not-a-date' AND stop = '2024-01-02'`)
	if len(got) != 0 {
		t.Fatalf("unparseable start bound produced %v, want no rows", got)
	}
}

func TestSQLCalendarIncompatibleParameterOperator(t *testing.T) {
	exec, _, done := openWithCalendar(t)
	defer done()

	if err := exec(`CREATE VIRTUAL TABLE c7 USING calendar`); err != nil {
		t.Fatalf("CREATE VIRTUAL TABLE failed: %v", err)
	}
	err := exec(`SELECT date FROM c7 WHERE frequency > 'daily'`)
	if err == nil {
		t.Fatalf("expected planning error for range constraint on frequency")
	}
}
