package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureWriterWithinLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: 200, limit: 64}

	_, err := cw.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = cw.Write([]byte("world"))
	require.NoError(t, err)

	assert.Equal(t, "hello world", cw.buf.String())
	assert.Equal(t, "hello world", rec.Body.String())
	assert.False(t, cw.truncated())
}

func TestCaptureWriterOverLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: 200, limit: 10}

	big := strings.Repeat("x", 25)
	_, err := cw.Write([]byte(big))
	require.NoError(t, err)

	// The client gets the full body; the capture stops at the limit and is
	// flagged so it never reaches the cache.
	assert.Equal(t, big, rec.Body.String())
	assert.Equal(t, 10, cw.buf.Len())
	assert.True(t, cw.truncated())
}

func TestCaptureWriterOverLimitAcrossWrites(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: 200, limit: 10}

	for i := 0; i < 4; i++ {
		_, err := cw.Write([]byte("12345"))
		require.NoError(t, err)
	}

	assert.Equal(t, 10, cw.buf.Len())
	assert.True(t, cw.truncated())
	assert.Equal(t, strings.Repeat("12345", 4), rec.Body.String())
}

func TestCaptureWriterNoLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: 200, limit: 0}

	_, err := cw.Write([]byte(strings.Repeat("y", 100)))
	require.NoError(t, err)

	assert.Equal(t, 100, cw.buf.Len())
	assert.False(t, cw.truncated())
}
