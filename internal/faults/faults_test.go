package faults

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorAccumulates(t *testing.T) {
	var v ValidationError
	require.NoError(t, v.OrNil())

	v.Add("company_email", "must be a valid email")
	v.Add("website_url", "must start with http:// or https://")

	err := v.OrNil()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "company_email")
	assert.Contains(t, err.Error(), "website_url")
	assert.True(t, IsValidation(err))
}

func TestKindPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("leads: update: %w", NotFound("lead", "abc"))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.False(t, IsAuthorization(wrapped))
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Invalid("stage", "unknown value"), http.StatusUnprocessableEntity},
		{"authorization", NotPermitted("lead locked by another user"), http.StatusForbidden},
		{"not found", NotFound("proposal", "p1"), http.StatusNotFound},
		{"infrastructure", Infra("leads: insert", errors.New("connection refused")), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestBatchResultCollectsRowFailures(t *testing.T) {
	res := BatchResult{Total: 4, Done: 3}
	res.Fail("lead-9", "lead not found")

	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "lead-9", res.Errors[0].Ref)
}
