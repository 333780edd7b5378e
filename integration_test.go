//go:build integration
// +build integration

package arrowquery_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marshallshelly/arrowquery/pkg/dsl"
	"github.com/marshallshelly/arrowquery/pkg/engine"
	"github.com/marshallshelly/arrowquery/pkg/queryable"
	"github.com/marshallshelly/arrowquery/pkg/runtime"
	"github.com/marshallshelly/arrowquery/pkg/schema"
)

// table_name: users
type integrationUser struct {
	ID       string `col:"id,uuid,primary"`
	Username string `col:"username,varchar(64),notNull"`
	FullName string `col:"full_name,varchar(128)"`
	Role     string `col:"role,varchar(32),notNull,default(member)"`

	Courses []integrationCourse `rel:"hasMany,foreignKey:id,principalKey:user_id"`
}

// table_name: courses
type integrationCourse struct {
	ID     string `col:"id,uuid,primary"`
	UserID string `col:"user_id,uuid,notNull"`
	Name   string `col:"name,varchar(128),notNull"`
}

func setupPostgres(t *testing.T) (string, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}
	return connStr, cleanup
}

func TestIntegration_FilterAndOrder(t *testing.T) {
	connStr, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	db, err := runtime.ConnectWithURL(ctx, connStr)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()

	reg := schema.NewRegistry()
	if err := schema.Declare(reg, integrationUser{}); err != nil {
		t.Fatalf("declare user: %v", err)
	}
	if err := schema.Declare(reg, integrationCourse{}); err != nil {
		t.Fatalf("declare course: %v", err)
	}

	if _, err := db.Exec(ctx, `CREATE TABLE users (
		id uuid PRIMARY KEY,
		username varchar(64) NOT NULL,
		full_name varchar(128),
		role varchar(32) NOT NULL DEFAULT 'member'
	)`); err != nil {
		t.Fatalf("create users: %v", err)
	}
	if _, err := db.Exec(ctx, `CREATE TABLE courses (
		id uuid PRIMARY KEY,
		user_id uuid NOT NULL REFERENCES users(id),
		name varchar(128) NOT NULL
	)`); err != nil {
		t.Fatalf("create courses: %v", err)
	}

	alice := uuid.Must(uuid.NewV7()).String()
	bob := uuid.Must(uuid.NewV7()).String()
	for _, row := range []struct{ id, username, role string }{
		{alice, "alice", "editor"},
		{bob, "bob", "member"},
	} {
		if _, err := db.Exec(ctx, `INSERT INTO users (id, username, role) VALUES ($1, $2, $3)`, row.id, row.username, row.role); err != nil {
			t.Fatalf("insert user %s: %v", row.username, err)
		}
	}
	for _, row := range []struct{ userID, name string }{
		{alice, "Algorithms"},
		{alice, "Databases"},
		{bob, "Algorithms"},
	} {
		if _, err := db.Exec(ctx, `INSERT INTO courses (id, user_id, name) VALUES ($1, $2, $3)`, uuid.Must(uuid.NewV7()).String(), row.userID, row.name); err != nil {
			t.Fatalf("insert course %s: %v", row.name, err)
		}
	}

	eng := engine.New(db, reg)

	t.Run("filter and order", func(t *testing.T) {
		rows, err := queryable.New(eng, reg, integrationUser{}).
			Filter(func(u *integrationUser) bool { return u.Role == "editor" }).
			OrderByDescending("username").
			ToArray(ctx)
		if err != nil {
			t.Fatalf("ToArray: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}
		if rows[0]["username"] != "alice" {
			t.Errorf("username = %v, want alice", rows[0]["username"])
		}
	})

	t.Run("include groups relation rows", func(t *testing.T) {
		rows, err := queryable.New(eng, reg, integrationUser{}).
			Include("Courses").
			Map(func(u *integrationUser) any {
				return map[string]any{
					"username": u.Username,
					"courses": dsl.MapEach(u.Courses, func(c integrationCourse) any {
						return map[string]any{"name": c.Name}
					}),
				}
			}).
			Filter(func(u *integrationUser) bool { return u.Username == "alice" }).
			ToArray(ctx)
		if err != nil {
			t.Fatalf("ToArray: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("expected 1 grouped row, got %d", len(rows))
		}
		courses, ok := rows[0]["courses"].([]any)
		if !ok {
			t.Fatalf("courses is %T, want []any", rows[0]["courses"])
		}
		if len(courses) != 2 {
			t.Fatalf("expected 2 courses for alice, got %d", len(courses))
		}
	})

	t.Run("count materializes", func(t *testing.T) {
		count, err := queryable.New(eng, reg, integrationUser{}).Count(ctx)
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if count != 2 {
			t.Errorf("Count = %d, want 2", count)
		}
	})
}
