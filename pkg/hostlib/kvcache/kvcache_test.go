package kvcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigHasSaneTimeouts(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Greater(t, cfg.DialTimeout, time.Duration(0))
	assert.Greater(t, cfg.ReadTimeout, time.Duration(0))
	assert.Greater(t, cfg.WriteTimeout, time.Duration(0))
}
