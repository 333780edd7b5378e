package runtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryError_UnwrapsUnderlyingError(t *testing.T) {
	underlying := errors.New("relation \"ghost\" does not exist")
	err := &QueryError{Query: `SELECT * FROM "ghost"`, Err: underlying}

	assert.ErrorIs(t, err, underlying)
	assert.Contains(t, err.Error(), "ghost")
	assert.Contains(t, err.Error(), `SELECT * FROM "ghost"`)
}

func TestConnectionError_UnwrapsUnderlyingError(t *testing.T) {
	underlying := errors.New("pool exhausted")
	err := &ConnectionError{Op: "acquire", Err: underlying}

	assert.ErrorIs(t, err, underlying)
	assert.Equal(t, "connection: acquire: pool exhausted", err.Error())
}

func TestConnectionError_DistinguishesAcquireFromRelease(t *testing.T) {
	acquire := &ConnectionError{Op: "acquire", Err: errors.New("timeout")}
	release := &ConnectionError{Op: "release", Err: errors.New("already closed")}

	assert.NotEqual(t, acquire.Error(), release.Error())
	assert.Equal(t, "acquire", acquire.Op)
	assert.Equal(t, "release", release.Op)
}
