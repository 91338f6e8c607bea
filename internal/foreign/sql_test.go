package foreign

import (
	"bytes"
	"monkey/internal/evaluator"
	"monkey/internal/lexer"
	"monkey/internal/object"
	"monkey/internal/parser"
	"testing"
)

func runScript(t *testing.T, s *SQL, input string) object.Object {
	t.Helper()
	p := parser.New(lexer.New(input))
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}

	e := evaluator.New(evaluator.Config{
		Output:   &bytes.Buffer{},
		Builtins: evaluator.NewRegistry(s.Builtins()),
	})
	return e.EvalProgram(program, object.NewEnvironment())
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := NewSQL()
	defer s.Close()

	input := `
let db = sql_open("sqlite3", ":memory:");
sql_exec(db, "CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT, age INTEGER, note TEXT)");
let r = sql_exec(db, "INSERT INTO people (name, age, note) VALUES (?, ?, ?)", "ada", 36, null);
sql_exec(db, "INSERT INTO people (name, age, note) VALUES (?, ?, ?)", "alan", 41, "x");
let rows = sql_query(db, "SELECT name, age, note FROM people WHERE age > ? ORDER BY id", 30);
[r["rows_affected"], r["last_insert_id"], len(rows), rows[0]["name"], rows[1]["age"], rows[0]["note"]]
`
	got := runScript(t, s, input)
	if want := "[1, 1, 2, ada, 41, null]"; got.Inspect() != want {
		t.Fatalf("got=%s, want=%s", got.Inspect(), want)
	}
}

func TestSQLTransactions(t *testing.T) {
	s := NewSQL()
	defer s.Close()

	input := `
let db = sql_open("sqlite3", ":memory:");
sql_exec(db, "CREATE TABLE t (v INTEGER)");
sql_begin(db);
sql_exec(db, "INSERT INTO t (v) VALUES (1)");
sql_rollback(db);
sql_begin(db);
sql_exec(db, "INSERT INTO t (v) VALUES (2)");
sql_commit(db);
sql_query(db, "SELECT v FROM t")
`
	got := runScript(t, s, input)
	if want := "[{v: 2}]"; got.Inspect() != want {
		t.Fatalf("got=%s, want=%s", got.Inspect(), want)
	}
}

func TestSQLErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`sql_open("sqlite3")`, "sql_open expects 2 arguments: driver, dsn"},
		{`sql_open("nope", "x")`, `failed to open connection: sql: unknown driver "nope" (forgotten import?)`},
		{`sql_exec(99, "SELECT 1")`, "invalid connection handle 99"},
		{`sql_query("db", "SELECT 1")`, "argument to `sql_query` must be an INTEGER, got=STRING"},
		{`let db = sql_open("sqlite3", ":memory:"); sql_query(db, "SELECT ?", [1])`,
			"argument to `sql_query` cannot be bound as a query parameter, got=ARRAY"},
		{`let db = sql_open("sqlite3", ":memory:"); sql_commit(db)`, "no open transaction on handle 1"},
		{`let db = sql_open("sqlite3", ":memory:"); sql_close(db); sql_close(db)`, "invalid connection handle 1"},
	}

	for _, tt := range tests {
		s := NewSQL()
		got := runScript(t, s, tt.input)
		errObj, ok := got.(*object.Error)
		if !ok {
			t.Errorf("%s: expected error, got=%s", tt.input, got.Inspect())
		} else if errObj.Message != tt.expected {
			t.Errorf("%s: wrong message. got=%q, want=%q", tt.input, errObj.Message, tt.expected)
		}
		if err := s.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	}
}

func TestCloseReleasesHandles(t *testing.T) {
	s := NewSQL()
	runScript(t, s, `let db = sql_open("sqlite3", ":memory:"); sql_begin(db);`)

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(s.connections) != 0 || len(s.transactions) != 0 {
		t.Fatalf("handles left open: %d connections, %d transactions",
			len(s.connections), len(s.transactions))
	}
}

func TestCloseRollsBackOpenTransaction(t *testing.T) {
	s := NewSQL()
	defer s.Close()

	input := `
let db = sql_open("sqlite3", ":memory:");
sql_begin(db);
sql_close(db)
`
	got := runScript(t, s, input)
	if got != object.NULL {
		t.Fatalf("sql_close returned %s", got.Inspect())
	}
	if len(s.connections) != 0 || len(s.transactions) != 0 {
		t.Fatalf("handles left open: %d connections, %d transactions",
			len(s.connections), len(s.transactions))
	}
}
