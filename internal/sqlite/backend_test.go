// Tests for backend lifecycle and collection access.
package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/facet/pkg/types"
)

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
		Schema:  blogSchema(),
	}

	if err := b.Attach(config); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer b.Detach()

	// Verify database file created.
	if _, err := os.Stat(filepath.Join(tmpDir, dbFileName)); os.IsNotExist(err) {
		t.Errorf("%s not created", dbFileName)
	}

	// Verify double attach fails.
	if err := b.Attach(config); !errors.Is(err, types.ErrAlreadyAttached) {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	b := NewBackend()
	err := b.Attach(types.Config{Backend: "postgres", Schema: blogSchema()})
	if !errors.Is(err, types.ErrBackendUnknown) {
		t.Errorf("expected ErrBackendUnknown, got %v", err)
	}
}

func TestBackend_AttachInvalidSchema(t *testing.T) {
	schema := blogSchema()
	schema.Models[0].Relations[0].Model = "Comment"

	b := NewBackend()
	err := b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
		Schema:  schema,
	})
	if !errors.Is(err, types.ErrUnknownRelationModel) {
		t.Errorf("expected ErrUnknownRelationModel, got %v", err)
	}
}

func TestBackend_AttachSchemaFromFile(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.yaml")
	doc := `
models:
  - name: Note
    fields:
      - {name: id, kind: string}
      - {name: body, kind: string}
`
	if err := os.WriteFile(schemaPath, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	b := NewBackend()
	err := b.Attach(types.Config{
		Backend:    types.BackendSQLite,
		DataDir:    dir,
		SchemaPath: schemaPath,
	})
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer b.Detach()

	if b.Schema().Model("Note") == nil {
		t.Error("schema loaded from file missing Note model")
	}
}

func TestBackend_Detach(t *testing.T) {
	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
		Schema:  blogSchema(),
	}
	if err := b.Attach(config); err != nil {
		t.Fatal(err)
	}

	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}

	// Verify idempotent.
	if err := b.Detach(); err != nil {
		t.Errorf("second Detach should not error, got %v", err)
	}

	// Verify operations fail after detach.
	if _, err := b.Collection("User"); !errors.Is(err, types.ErrStoreDetached) {
		t.Errorf("expected ErrStoreDetached, got %v", err)
	}
	if b.Schema() != nil {
		t.Error("Schema should be nil after Detach")
	}
}

func TestBackend_Collection(t *testing.T) {
	b := newAttachedBackend(t)

	for _, name := range []string{"User", "Post", "Profile"} {
		if _, err := b.Collection(name); err != nil {
			t.Errorf("Collection(%q) failed: %v", name, err)
		}
	}

	if _, err := b.Collection("Comment"); !errors.Is(err, types.ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got %v", err)
	}
}

func TestBackend_DataSurvivesReattach(t *testing.T) {
	tmpDir := t.TempDir()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
		Schema:  blogSchema(),
	}

	b := NewBackend()
	if err := b.Attach(config); err != nil {
		t.Fatal(err)
	}
	users, _ := b.Collection("User")
	_, err := users.Create(types.Record{
		"id": 1, "name": "Alice", "email": "alice@example.com",
		"profileViews": 0, "role": "USER", "coinflips": []any{},
	}, types.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Detach(); err != nil {
		t.Fatal(err)
	}

	b2 := NewBackend()
	if err := b2.Attach(config); err != nil {
		t.Fatal(err)
	}
	defer b2.Detach()

	users2, _ := b2.Collection("User")
	n, err := users2.Count(nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 user after reattach, got %d", n)
	}
}
