package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopYAML = `
- name: Customer
  attrs: {table_name: customers, app_label: shop}
  fields:
    - {name: id, type: int64, attrs: {primary_key: true}}
    - {name: email, type: string, attrs: {max_length: 120, email: true}}
- name: Order
  attrs: {table_name: orders, app_label: shop}
  fields:
    - {name: id, type: int64, attrs: {primary_key: true}}
    - {name: total, type: decimal, attrs: {max_digits: 10, decimal_places: 2}}
    - {name: customer, type: "ForeignKey[Customer]", rel: {related_name: orders}}
`

// project creates a project with the shop declarations in ./models and
// makes it the working directory.
func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "models"), 0o755))
	writeModels(t, dir, shopYAML)
	t.Chdir(dir)
	return dir
}

func writeModels(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models", "shop.yaml"), []byte(content), 0o600))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd(t *testing.T) {
	cmd := NewRootCmd()
	assert.Equal(t, "modelc", cmd.Use)
	for _, name := range []string{"check", "generate", "ddl", "graphql", "snapshot"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
		assert.NotEmpty(t, sub.Short, name)
	}
	for _, flag := range []string{"config", "models", "target", "package", "storage", "workers", "snapshot", "log-level", "log-format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestCheck(t *testing.T) {
	project(t)
	out, err := run(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "2 models compiled into 2 tables")
	assert.Contains(t, out, "No issues found")

	_, err = run(t, "check", "--models", "missing")
	assert.Error(t, err)

	_, err = run(t, "check", "--log-format", "xml")
	assert.ErrorContains(t, err, `invalid log format "xml"`)
}

func TestSnapshot(t *testing.T) {
	dir := project(t)

	_, err := run(t, "snapshot", "--show")
	assert.ErrorContains(t, err, "no snapshot at .modelc/snapshot.msgpack")

	out, err := run(t, "snapshot")
	require.NoError(t, err)
	assert.Equal(t, "wrote snapshot of 2 models to .modelc/snapshot.msgpack\n", out)
	assert.FileExists(t, filepath.Join(dir, ".modelc", "snapshot.msgpack"))

	out, err = run(t, "snapshot", "--show")
	require.NoError(t, err)
	assert.Contains(t, out, "MODEL")
	assert.Contains(t, out, "shop.Customer")
	assert.Contains(t, out, "orders")
	assert.Contains(t, out, "2 relationships")

	t.Run("breaking change", func(t *testing.T) {
		writeModels(t, dir, strings.Replace(shopYAML,
			"    - {name: email, type: string, attrs: {max_length: 120, email: true}}\n", "", 1))
		out, err := run(t, "check")
		require.EqualError(t, err, "schema check failed")
		assert.Contains(t, out, "customers.email: column will be dropped [BREAKING]")

		_, err = run(t, "check", "--allow-drop-column")
		require.NoError(t, err)
	})
}

func TestDDL(t *testing.T) {
	dir := project(t)

	_, err := run(t, "ddl")
	assert.ErrorContains(t, err, "ddl requires a storage backend")

	out, err := run(t, "ddl", "--storage", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE")
	assert.Contains(t, out, "customers")
	assert.True(t, strings.HasSuffix(out, ";\n"))

	_, err = run(t, "ddl", "--storage", "postgres", "-o", "sql/schema.sql")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "sql", "schema.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `CREATE TABLE "orders"`)

	_, err = run(t, "ddl", "--storage", "sqlite", "--from-snapshot")
	assert.ErrorContains(t, err, "no snapshot at")

	_, err = run(t, "snapshot")
	require.NoError(t, err)
	out, err = run(t, "ddl", "--storage", "sqlite", "--from-snapshot")
	require.NoError(t, err)
	assert.Equal(t, "-- no changes\n", out)
}

func TestConfigFile(t *testing.T) {
	dir := project(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "modelc.yaml"), []byte("storage: sqlite\nlog:\n  level: debug\n"), 0o600))
	out, err := run(t, "ddl")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE")
}

func TestGraphQL(t *testing.T) {
	project(t)
	out, err := run(t, "graphql", "--relay", "--inputs", "--skip", "Customer.email")
	require.NoError(t, err)
	assert.Contains(t, out, "type Order")
	assert.Contains(t, out, "CustomerConnection")
	assert.Contains(t, out, "input CreateOrderInput")
	assert.NotContains(t, out, "email")
}

func TestGenerate(t *testing.T) {
	dir := project(t)
	_, err := run(t, "generate", "--target", "gen", "--package", "example.com/app/gen")
	require.NoError(t, err)
	files, err := filepath.Glob(filepath.Join(dir, "gen", "*.go"))
	require.NoError(t, err)
	assert.NotEmpty(t, files)

	_, err = run(t, "generate", "--workers=-1")
	assert.ErrorContains(t, err, "invalid workers -1")
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, dir, 20*time.Millisecond, slog.New(slog.DiscardHandler), func(context.Context) error {
			calls <- struct{}{}
			return nil
		})
	}()

	path := filepath.Join(dir, "shop.yaml")
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("[]\n"), 0o600)
		select {
		case <-calls:
			return true
		default:
			return false
		}
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}

	t.Run("missing directory", func(t *testing.T) {
		err := watch(context.Background(), filepath.Join(dir, "missing"), time.Millisecond, slog.New(slog.DiscardHandler), nil)
		assert.ErrorContains(t, err, "failed to watch")
	})
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		only  string
		want  bool
	}{
		{"yaml write", fsnotify.Event{Name: "models/shop.yaml", Op: fsnotify.Write}, "", true},
		{"json create", fsnotify.Event{Name: "models/tags.JSON", Op: fsnotify.Create}, "", true},
		{"removed", fsnotify.Event{Name: "models/shop.yml", Op: fsnotify.Remove}, "", true},
		{"chmod", fsnotify.Event{Name: "models/shop.yaml", Op: fsnotify.Chmod}, "", false},
		{"other file", fsnotify.Event{Name: "models/README.md", Op: fsnotify.Write}, "", false},
		{"watched file", fsnotify.Event{Name: "models/shop.yaml", Op: fsnotify.Write}, "models/shop.yaml", true},
		{"sibling of watched file", fsnotify.Event{Name: "models/tags.yaml", Op: fsnotify.Write}, "models/shop.yaml", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevant(tt.event, tt.only))
		})
	}
}
