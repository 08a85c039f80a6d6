package repl

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"flatdb/internal/catalog"
)

func setupUsers(t *testing.T) (schemaPath, dataDir string) {
	t.Helper()
	dir := t.TempDir()
	schemaPath = filepath.Join(dir, "schema.txt")
	schema := "1\nusers;3;id:4:int,username:32:varchar,email:255:varchar\n"
	if err := os.WriteFile(schemaPath, []byte(schema), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	dataDir = filepath.Join(dir, "data")
	return schemaPath, dataDir
}

// linesAfterPrompts strips the "db > " prompts the REPL writes before
// every read, returning just the outcome lines in order.
func linesAfterPrompts(out string) []string {
	var result []string
	for _, segment := range strings.Split(out, "db > ") {
		if segment == "" {
			continue
		}
		for _, line := range strings.Split(strings.TrimRight(segment, "\n"), "\n") {
			result = append(result, line)
		}
	}
	return result
}

func TestScenarioInsertThenSelect(t *testing.T) {
	schemaPath, dataDir := setupUsers(t)
	cat, err := catalog.Load(schemaPath, dataDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	in := strings.NewReader("insert into users values (1, alice, a@x)\nselect * from users\n.exit\n")
	var out bytes.Buffer
	r := New(cat, in, &out)
	if err := r.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := linesAfterPrompts(out.String())
	want := []string{"Executed.", "(1, alice, a@x)", "Executed."}
	for i, w := range want {
		if i >= len(got) || got[i] != w {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestScenarioInsertQuotedThenSelect(t *testing.T) {
	schemaPath, dataDir := setupUsers(t)
	cat, err := catalog.Load(schemaPath, dataDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	in := strings.NewReader("insert into users values (1, 'alice', 'a@x')\nselect * from users\n.exit\n")
	var out bytes.Buffer
	r := New(cat, in, &out)
	if err := r.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := linesAfterPrompts(out.String())
	want := []string{"Executed.", "(1, alice, a@x)", "Executed."}
	for i, w := range want {
		if i >= len(got) || got[i] != w {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestScenarioNegativeIDRejected(t *testing.T) {
	schemaPath, dataDir := setupUsers(t)
	cat, err := catalog.Load(schemaPath, dataDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer cat.Close()

	in := strings.NewReader("insert into users values (-1, x, x@y)\n")
	var out bytes.Buffer
	r := New(cat, in, &out)
	r.Run()

	got := linesAfterPrompts(out.String())
	if len(got) == 0 || got[0] != "ID must be positive." {
		t.Fatalf("expected %q, got %v", "ID must be positive.", got)
	}
}

func TestScenarioUpdateThenSelectProjection(t *testing.T) {
	schemaPath, dataDir := setupUsers(t)
	cat, err := catalog.Load(schemaPath, dataDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer cat.Close()

	script := strings.Join([]string{
		"insert into users values (1, a, a@x)",
		"insert into users values (2, b, b@y)",
		"update users set username = 'c' where id = 2",
		"select username from users where id = 2",
		"",
	}, "\n")

	var out bytes.Buffer
	r := New(cat, strings.NewReader(script), &out)
	r.Run()

	got := linesAfterPrompts(out.String())
	want := []string{"Executed.", "Executed.", "Executed.", "(c)", "Executed."}
	for i, w := range want {
		if i >= len(got) || got[i] != w {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestScenarioDeletePreservesOrder(t *testing.T) {
	schemaPath, dataDir := setupUsers(t)
	cat, err := catalog.Load(schemaPath, dataDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer cat.Close()

	script := strings.Join([]string{
		"insert into users values (1, a, a@x)",
		"insert into users values (2, b, b@y)",
		"insert into users values (3, c, c@z)",
		"delete from users where id = 2",
		"select id from users",
		"",
	}, "\n")

	var out bytes.Buffer
	r := New(cat, strings.NewReader(script), &out)
	r.Run()

	got := linesAfterPrompts(out.String())
	want := []string{"Executed.", "Executed.", "Executed.", "Executed.", "(1)", "(3)", "Executed."}
	for i, w := range want {
		if i >= len(got) || got[i] != w {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestScenarioPersistsAcrossRestart(t *testing.T) {
	schemaPath, dataDir := setupUsers(t)

	cat, err := catalog.Load(schemaPath, dataDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	in := strings.NewReader("insert into users values (1, alice, a@x)\n.exit\n")
	var out bytes.Buffer
	r := New(cat, in, &out)
	if err := r.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	reopened, err := catalog.Load(schemaPath, dataDir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer reopened.Close()

	var out2 bytes.Buffer
	r2 := New(reopened, strings.NewReader("select * from users\n"), &out2)
	r2.Run()

	got := linesAfterPrompts(out2.String())
	if len(got) == 0 || got[0] != "(1, alice, a@x)" {
		t.Fatalf("expected persisted row, got %v", got)
	}
}

func TestScenarioUnrecognizedKeyword(t *testing.T) {
	schemaPath, dataDir := setupUsers(t)
	cat, err := catalog.Load(schemaPath, dataDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer cat.Close()

	in := strings.NewReader("foo bar\n")
	var out bytes.Buffer
	r := New(cat, in, &out)
	r.Run()

	got := linesAfterPrompts(out.String())
	want := "Unrecognized keyword at start of 'foo bar'."
	if len(got) == 0 || got[0] != want {
		t.Fatalf("expected %q, got %v", want, got)
	}
}

func TestScenarioUnrecognizedMetaCommand(t *testing.T) {
	schemaPath, dataDir := setupUsers(t)
	cat, err := catalog.Load(schemaPath, dataDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer cat.Close()

	in := strings.NewReader(".bogus\n")
	var out bytes.Buffer
	r := New(cat, in, &out)
	r.Run()

	got := linesAfterPrompts(out.String())
	want := "Unrecognized command '.bogus'"
	if len(got) == 0 || got[0] != want {
		t.Fatalf("expected %q, got %v", want, got)
	}
}

func TestScenarioTableFullOnLastInsert(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.txt")
	schema := "1\nusers;2;id:4:int,pad:4000:varchar\n"
	if err := os.WriteFile(schemaPath, []byte(schema), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	dataDir := filepath.Join(dir, "data")

	cat, err := catalog.Load(schemaPath, dataDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer cat.Close()

	tbl, _ := cat.Table("users")
	max := int(tbl.Layout.MaxRows)

	var script strings.Builder
	for i := 1; i <= max+1; i++ {
		script.WriteString("insert into users values (" + strconv.Itoa(i) + ", x)\n")
	}

	var out bytes.Buffer
	r := New(cat, strings.NewReader(script.String()), &out)
	r.Run()

	got := linesAfterPrompts(out.String())
	if len(got) != max+1 {
		t.Fatalf("expected %d outcome lines, got %d", max+1, len(got))
	}
	for i := 0; i < max; i++ {
		if got[i] != "Executed." {
			t.Fatalf("insert %d: expected %q, got %q", i+1, "Executed.", got[i])
		}
	}
	if got[max] != "Error: Table full." {
		t.Fatalf("expected last insert to report table full, got %q", got[max])
	}
}
