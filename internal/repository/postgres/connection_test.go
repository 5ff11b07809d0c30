package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnection_NilPool(t *testing.T) {
	c := &Connection{}

	assert.NoError(t, c.Close())
	assert.Error(t, c.Ping(context.Background()))
}

func TestNewConnection_InvalidDSN(t *testing.T) {
	_, err := NewConnection(context.Background(), "postgres://%zz")
	assert.Error(t, err)
}
