package migrate

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestSplitStatements(t *testing.T) {
	sql := `create table a (id text);
insert into a values ('x;y');
`
	stmts := splitStatements(sql)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if got := stmts[1]; got != "\ninsert into a values ('x;y');" {
		t.Fatalf("semicolon inside string split incorrectly: %q", got)
	}
}

func TestCollectSQLOrdersLexically(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "0002_second.up.sql", "select 2;")
	writeFile(t, dir, "0001_first.up.sql", "select 1;")
	writeFile(t, dir, "0001_first.down.sql", "select 0;")

	files, err := collectSQL(dir, ".up.sql")
	if err != nil {
		t.Fatalf("collectSQL: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, f.base)
	}
	want := []string{"0001_first.up.sql", "0002_second.up.sql"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("unexpected order: %v", names)
	}
}

func TestCollectSQLMissingDir(t *testing.T) {
	files, err := collectSQL("does/not/exist", ".up.sql")
	if err != nil {
		t.Fatalf("collectSQL: %v", err)
	}
	if files != nil {
		t.Fatalf("expected no files, got %v", files)
	}
}
