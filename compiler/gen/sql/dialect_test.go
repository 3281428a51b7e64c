package sql

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelc/compiler/gen"
)

func TestDialect(t *testing.T) {
	d := NewDialect(newHelper(newGraph(t)))
	assert.Equal(t, "sql", d.Name())
	for _, f := range gen.AllFeatures {
		assert.True(t, d.SupportsFeature(f.Name), f.Name)
	}
	assert.False(t, d.SupportsFeature("privacy"))
	assert.Nil(t, d.GenFeature(gen.FeatureRegister.Name), "register is rendered in the model files")
	assert.NotNil(t, d.GenFeature(gen.FeatureSnapshot.Name))
}

func TestGenerate(t *testing.T) {
	t.Run("missing target", func(t *testing.T) {
		err := Generate(context.Background(), newGraph(t))
		require.Error(t, err)
		assert.EqualError(t, err, "modelc/gen: target: no target directory in config")
	})

	t.Run("files", func(t *testing.T) {
		dir := t.TempDir()
		g := newGraph(t, gen.WithTarget(dir), gen.WithFeatures(gen.FeatureSnapshot))
		require.NoError(t, Generate(context.Background(), g))
		for _, name := range []string{"customer.go", "order.go", "order_line.go", "modelc.go", "snapshot.go"} {
			assert.FileExists(t, filepath.Join(dir, name))
		}
		buf, err := os.ReadFile(filepath.Join(dir, "order.go"))
		require.NoError(t, err)
		assert.Contains(t, string(buf), "// Code generated by modelc. DO NOT EDIT.")
		assert.Contains(t, string(buf), "package shop")
	})

	t.Run("snapshot cleanup", func(t *testing.T) {
		dir := t.TempDir()
		g := newGraph(t, gen.WithTarget(dir), gen.WithFeatures(gen.FeatureSnapshot))
		require.NoError(t, Generate(context.Background(), g))
		require.FileExists(t, filepath.Join(dir, "snapshot.go"))

		g = newGraph(t, gen.WithTarget(dir))
		require.NoError(t, Generate(context.Background(), g))
		assert.NoFileExists(t, filepath.Join(dir, "snapshot.go"))
		assert.FileExists(t, filepath.Join(dir, "order.go"))
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		g := newGraph(t, gen.WithTarget(t.TempDir()))
		assert.ErrorIs(t, Generate(ctx, g), context.Canceled)
	})
}
