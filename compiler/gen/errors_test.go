package gen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ConfigError
		want    string
		missing bool
	}{
		{"rejected value", NewConfigError("dialect", "oracle", "use postgres, mysql or sqlite"), "modelc/gen: invalid dialect oracle: use postgres, mysql or sqlite", false},
		{"rejected number", NewConfigError("workers", -1, "must be positive"), "modelc/gen: invalid workers -1: must be positive", false},
		{"unset option", NewConfigError("target", nil, "no target directory"), "modelc/gen: target: no target directory", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
			wrapped := fmt.Errorf("load config: %w", tt.err)
			assert.ErrorIs(t, wrapped, ErrInvalidConfig)
			assert.Equal(t, tt.missing, errors.Is(wrapped, ErrMissingConfig))
			assert.False(t, errors.Is(wrapped, ErrGenerationFailed))
			assert.True(t, IsConfigError(wrapped))
		})
	}
	assert.False(t, IsConfigError(errors.New("other")))
}

func TestGenerationError(t *testing.T) {
	disk := errors.New("disk full")
	tests := []struct {
		name string
		err  *GenerationError
		want string
	}{
		{"model file", NewGenerationError("shop.Order", "order.go", StageWrite, disk), "modelc/gen: write order.go (shop.Order): disk full"},
		{"package file", NewGenerationError("", "modelc.go", StageRender, disk), "modelc/gen: render modelc.go: disk full"},
		{"metadata", NewGenerationError("shop.Order", "", StageFingerprint, disk), "modelc/gen: fingerprint shop.Order: disk full"},
		{"no cause", NewGenerationError("", "snapshot.go", StageFormat, nil), "modelc/gen: format snapshot.go"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
			assert.ErrorIs(t, tt.err, ErrGenerationFailed)
			assert.True(t, IsGenerationError(fmt.Errorf("generate: %w", tt.err)))
			if tt.err.Cause != nil {
				assert.ErrorIs(t, tt.err, disk)
			}
		})
	}
	assert.False(t, IsGenerationError(errors.New("other")))
}
