package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/regdesk/pkg/apperr"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	t.Run("writes JSON with correct content type", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		data := map[string]string{"foo": "bar"}

		WriteJSON(rec, http.StatusOK, data)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var result map[string]string
		err := json.Unmarshal(rec.Body.Bytes(), &result)
		require.NoError(t, err)
		assert.Equal(t, "bar", result["foo"])
	})

	t.Run("handles nil data", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusNoContent, nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestWriteData(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteData(rec, http.StatusCreated, map[string]string{"id": "lic-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var result struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "lic-1", result.Data["id"])
}

func TestWriteMessage(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteMessage(rec, http.StatusOK, "logged out")

	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "logged out", result["message"])
	assert.NotContains(t, result, "data")
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		status  int
		kind    string
		message string
	}{
		{
			name:    "validation",
			err:     &apperr.ValidationError{Field: "holder_name", Message: "is required"},
			status:  http.StatusBadRequest,
			kind:    "validation",
			message: "is required",
		},
		{
			name:   "not found",
			err:    &apperr.NotFoundError{Resource: "licenses", ID: "lic-404"},
			status: http.StatusNotFound,
			kind:   "not_found",
		},
		{
			name:    "forbidden",
			err:     &apperr.ForbiddenError{Message: "viewer accounts are read-only"},
			status:  http.StatusForbidden,
			kind:    "forbidden",
			message: "viewer accounts are read-only",
		},
		{
			name:    "internal errors are sanitized",
			err:     errors.New("open /var/lib/regdesk/secret.db: permission denied"),
			status:  http.StatusInternalServerError,
			kind:    "internal",
			message: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()

			resp := WriteError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.status, resp.StatusCode)
			var body apperr.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.kind, body.Error)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Message)
			}
			assert.NotContains(t, rec.Body.String(), "secret.db")
		})
	}
}

func TestWriteNoContent(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteNoContent(rec)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestReadBody(t *testing.T) {
	t.Parallel()

	t.Run("reads body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
		data, err := ReadBody(httptest.NewRecorder(), req, 0)
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":1}`, string(data))
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("  "))
		_, err := ReadBody(httptest.NewRecorder(), req, 0)
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "request body is required", ve.Message)
	})

	t.Run("oversized body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
		_, err := ReadBody(httptest.NewRecorder(), req, 16)
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Message, "exceeds 16 bytes")
	})
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	var v struct {
		Points int `json:"points"`
	}
	require.NoError(t, DecodeJSON([]byte(`{"points":3}`), &v))
	assert.Equal(t, 3, v.Points)

	err := DecodeJSON([]byte(`{"points":"three"}`), &v)
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "points", ve.Field)

	err = DecodeJSON([]byte(`{`), &v)
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Message, "invalid JSON body")
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def", "abc.def"},
		{"bearer  abc ", "abc"},
		{"Basic dXNlcg==", ""},
		{"", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, BearerToken(req), tt.header)
	}
}
