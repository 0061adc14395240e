package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", fmt.Errorf("parse: %w", ErrInvalidInput), http.StatusBadRequest},
		{"unsupported symbol", fmt.Errorf("anagram: %w", ErrUnsupportedSymbol), http.StatusUnprocessableEntity},
		{"no dictionary", ErrNoDictionary, http.StatusServiceUnavailable},
		{"timeout", fmt.Errorf("substitution: %w", ErrTimeout), http.StatusGatewayTimeout},
		{"app error wins", New(ErrInternal, http.StatusTeapot, "x"), http.StatusTeapot},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusCode(tt.err))
		})
	}
}

func TestUnsupported(t *testing.T) {
	err := Unsupported("c4t", '4')
	assert.ErrorIs(t, err, ErrUnsupportedSymbol)
	assert.Equal(t, `unsupported symbol: "c4t" contains '4'`, err.Error())
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatusCode(fmt.Errorf("wrap: %w", err)))
}
