package migrations

import (
	"context"
	"io/fs"
	"testing"
)

func TestFilesystems_ExposeBothDialects(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected postgres and sqlite filesystems, got %d", len(filesystems))
	}
	for _, fsys := range filesystems {
		matches, err := fs.Glob(fsys.FS, "*.up.sql")
		if err != nil {
			t.Fatalf("glob %s: %v", fsys.Dialect, err)
		}
		if len(matches) == 0 {
			t.Fatalf("expected %s up migrations", fsys.Dialect)
		}
	}
}

func TestRegister_InvokesPerValidatedDialect(t *testing.T) {
	registered := map[string]string{}
	_, err := Register(context.Background(), func(_ context.Context, dialect string, sourceLabel string, fsys fs.FS) error {
		if fsys == nil {
			t.Fatalf("expected a filesystem for %s", dialect)
		}
		registered[dialect] = sourceLabel
		return nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered[DialectPostgres] != "go-gateway" || registered[DialectSQLite] != "go-gateway" {
		t.Fatalf("unexpected registrations: %#v", registered)
	}
}

func TestRegister_ValidationTargetFilter(t *testing.T) {
	registered := []string{}
	_, err := Register(context.Background(), func(_ context.Context, dialect string, _ string, _ fs.FS) error {
		registered = append(registered, dialect)
		return nil
	}, WithValidationTargets(DialectSQLite))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(registered) != 1 || registered[0] != DialectSQLite {
		t.Fatalf("expected only the sqlite dialect, got %#v", registered)
	}
}
