package core_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/core"
)

func TestJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	core.JSON(rec, 201, map[string]string{"id": "sub_001"})

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body core.JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body.Error)
	assert.Equal(t, map[string]any{"id": "sub_001"}, body.Data)
}

func TestError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	core.Error(rec, core.ErrNotFound.WithMessage("no such subscription"))

	assert.Equal(t, 404, rec.Code)

	var body core.JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "not_found", body.Error.Code)
	assert.Equal(t, "no such subscription", body.Error.Message)
	assert.Nil(t, body.Data)
}
