package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docgen/pkg/introspect/sqlite"
	"github.com/goliatone/go-docgen/pkg/model"
)

const schemaSQL = `
CREATE TABLE autor (
	id INTEGER PRIMARY KEY,
	nombre VARCHAR(80) NOT NULL,
	email TEXT
);
CREATE TABLE libro (
	id INTEGER PRIMARY KEY,
	titulo VARCHAR(100) NOT NULL,
	precio REAL DEFAULT 0,
	estado TEXT DEFAULT 'ACTIVO',
	publicado DATE,
	activo BOOLEAN NOT NULL DEFAULT 1,
	fid_autor INTEGER REFERENCES autor(id),
	creado DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

func openFixture(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "biblioteca.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func TestIntrospector_Models(t *testing.T) {
	models, err := sqlite.New(openFixture(t)).Models(context.Background())
	if err != nil {
		t.Fatalf("models: %v", err)
	}

	want := []model.ModelDescriptor{
		{
			Name: "autor",
			Attributes: model.Object{
				model.Prop("id", model.FieldDescriptor{Kind: model.KindInteger, PrimaryKey: true, Nullable: model.Bool(false)}),
				model.Prop("nombre", model.FieldDescriptor{
					Kind:     model.KindString,
					Nullable: model.Bool(false),
					Validate: []model.ValidationRule{model.NormalizeRule("len", []any{0, 80})},
				}),
				model.Prop("email", model.FieldDescriptor{Kind: model.KindText}),
			},
		},
		{
			Name: "libro",
			Attributes: model.Object{
				model.Prop("id", model.FieldDescriptor{Kind: model.KindInteger, PrimaryKey: true, Nullable: model.Bool(false)}),
				model.Prop("titulo", model.FieldDescriptor{
					Kind:     model.KindString,
					Nullable: model.Bool(false),
					Validate: []model.ValidationRule{model.NormalizeRule("len", []any{0, 100})},
				}),
				model.Prop("precio", model.FieldDescriptor{Kind: model.KindFloat, Default: 0}),
				model.Prop("estado", model.FieldDescriptor{Kind: model.KindText, Default: "ACTIVO"}),
				model.Prop("publicado", model.FieldDescriptor{Kind: model.KindDate}),
				model.Prop("activo", model.FieldDescriptor{Kind: model.KindBoolean, Nullable: model.Bool(false), Default: 1}),
				model.Prop("fid_autor", model.FieldDescriptor{Kind: model.KindInteger, ForeignKey: true}),
				model.Prop("creado", model.FieldDescriptor{Kind: model.KindDate}),
			},
		},
	}
	if diff := cmp.Diff(want, models); diff != "" {
		t.Fatalf("models mismatch (-want +got):\n%s", diff)
	}
}

func TestIntrospector_WithTables(t *testing.T) {
	db := openFixture(t)

	models, err := sqlite.New(db, sqlite.WithTables("libro")).Models(context.Background())
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	if len(models) != 1 || models[0].Name != "libro" {
		t.Fatalf("unexpected models: %+v", models)
	}

	_, err = sqlite.New(db, sqlite.WithTables("prestamo")).Models(context.Background())
	if err == nil || !strings.Contains(err.Error(), `table "prestamo" not found`) {
		t.Fatalf("expected missing table error, got %v", err)
	}
}

func TestIntrospector_NilDatabase(t *testing.T) {
	if _, err := sqlite.New(nil).Models(context.Background()); err == nil {
		t.Fatalf("expected error for nil database")
	}
}
