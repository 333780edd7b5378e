package schema

import (
	"testing"
)

// table_name: app_users
type testUser struct {
	ID       string `col:"id,uuid,primary"`
	Username string `col:"username,varchar(64),notNull"`
	FullName string `col:"full_name,varchar(128)"`
	Role     string `col:"role,varchar(32),notNull,default(member)"`

	Courses []testCourse `rel:"hasMany,foreignKey:user_id,principalKey:id"`
}

type testCourse struct {
	ID     string `col:"id,uuid,primary"`
	UserID string `col:"user_id,uuid,notNull"`
	Name   string `col:"name,varchar(128),notNull"`
}

func TestDeclare_TableDefaults(t *testing.T) {
	reg := NewRegistry()
	if err := Declare(reg, testUser{}); err != nil {
		t.Fatalf("Declare: %v", err)
	}

	table, err := reg.GetTable(testUser{})
	if err != nil {
		t.Fatalf("GetTable: %v", err)
	}
	// The table_name comment above testUser wins over the lower-cased struct name default.
	if table.TableName != "app_users" {
		t.Errorf("TableName = %q, want %q", table.TableName, "app_users")
	}
}

func TestDeclare_ColumnDefaults(t *testing.T) {
	reg := NewRegistry()
	if err := Declare(reg, testCourse{}); err != nil {
		t.Fatalf("Declare: %v", err)
	}

	table, err := reg.GetTable(testCourse{})
	if err != nil {
		t.Fatalf("GetTable: %v", err)
	}
	if table.TableName != "testcourse" {
		t.Errorf("TableName = %q, want %q", table.TableName, "testcourse")
	}

	cols := reg.GetColumns(testCourse{})
	name, ok := cols["Name"]
	if !ok {
		t.Fatalf("column Name not registered")
	}
	if name.ColumnName != "name" {
		t.Errorf("ColumnName = %q, want %q", name.ColumnName, "name")
	}
	if name.Nullable {
		t.Errorf("Name.Nullable = true, want false (notNull tag)")
	}

	id := cols["ID"]
	if !id.Primary {
		t.Errorf("ID.Primary = false, want true")
	}
}

func TestDeclare_Relation(t *testing.T) {
	reg := NewRegistry()
	if err := Declare(reg, testUser{}); err != nil {
		t.Fatalf("Declare: %v", err)
	}

	rel, ok := reg.GetRelation(testUser{}, "Courses")
	if !ok {
		t.Fatalf("relation Courses not registered")
	}
	if rel.Type != HasMany {
		t.Errorf("Type = %q, want hasMany", rel.Type)
	}
	if rel.JoinKind != JoinLeft {
		t.Errorf("JoinKind = %q, want %q (default)", rel.JoinKind, JoinLeft)
	}
	if rel.ForeignKey != "user_id" {
		t.Errorf("ForeignKey = %q, want user_id", rel.ForeignKey)
	}
	if rel.Target == nil {
		t.Fatalf("Target thunk is nil")
	}
	if got := rel.Target(); got.Name() != "testCourse" {
		t.Errorf("Target() = %v, want testCourse", got)
	}
}

func TestDeclare_Idempotent(t *testing.T) {
	reg := NewRegistry()
	if err := Declare(reg, testUser{}); err != nil {
		t.Fatalf("first Declare: %v", err)
	}
	if err := Declare(reg, testUser{}); err != nil {
		t.Fatalf("second Declare: %v", err)
	}
	cols := reg.GetColumns(testUser{})
	if len(cols) != 4 {
		t.Errorf("len(cols) = %d, want 4 (no duplication on redeclare)", len(cols))
	}
}

func TestGetTable_UnregisteredIsSchemaError(t *testing.T) {
	reg := NewRegistry()
	type unregistered struct{}

	_, err := reg.GetTable(unregistered{})
	if err == nil {
		t.Fatalf("expected SchemaError, got nil")
	}
	if _, ok := err.(*SchemaError); !ok {
		t.Errorf("error type = %T, want *SchemaError", err)
	}
}
