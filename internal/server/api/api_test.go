package api

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"", 1, true},
		{"1", 1, true},
		{"7", 7, true},
		{"0", 0, false},
		{"-2", 0, false},
		{"two", 0, false},
	}

	for _, tt := range tests {
		got, ok := parsePage(tt.raw)
		assert.Equal(t, tt.wantOK, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestClientLimiterIsPerClient(t *testing.T) {
	l := newClientLimiter(2)

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	assert.True(t, l.Allow("10.0.0.2"))
}

func TestClientLimiterDisabled(t *testing.T) {
	l := newClientLimiter(0)
	for range 100 {
		assert.True(t, l.Allow("10.0.0.1"))
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("POST", "/v1/contact", nil)
	r.RemoteAddr = "192.0.2.7:52100"
	assert.Equal(t, "192.0.2.7", clientIP(r))

	r.RemoteAddr = "unix-socket"
	assert.Equal(t, "unix-socket", clientIP(r))
}
