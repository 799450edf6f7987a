package response

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JhonatanRC03/chat-rag/pkg/utils/errors"
)

func TestSuccess(t *testing.T) {
	r := Success(map[string]string{"document_id": "doc-1"})

	assert.Equal(t, 0, r.Code)
	assert.Equal(t, http.StatusOK, r.HTTPCode)
	assert.True(t, r.IsSuccess())
	assert.NotNil(t, r.Data)
}

func TestErr(t *testing.T) {
	r := Err(errors.ErrEmptyFile)

	assert.Equal(t, errors.ErrEmptyFile.Code, r.Code)
	assert.Equal(t, http.StatusBadRequest, r.HTTPCode)
	assert.False(t, r.IsSuccess())
	assert.Nil(t, r.Data)
}

func TestErrNil(t *testing.T) {
	r := Err(nil)
	assert.True(t, r.IsSuccess())
}

func TestHTTPStatusLookup(t *testing.T) {
	// A registered code resolves through the errno registry.
	r := &Response{Code: errors.ErrEmptyFile.Code}
	assert.Equal(t, http.StatusBadRequest, r.HTTPStatus())

	// An unregistered code is an internal error.
	r = &Response{Code: errors.MakeCode(79, errors.CategoryTimeout, 999)}
	assert.Equal(t, http.StatusInternalServerError, r.HTTPStatus())

	assert.Equal(t, http.StatusOK, (&Response{}).HTTPStatus())
}
