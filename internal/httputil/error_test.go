package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdamBeresnev/beerpong/internal/bracket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"validation", fmt.Errorf("%w: bad winner", bracket.ErrValidation), http.StatusBadRequest, "validation failed: bad winner"},
		{"not found", fmt.Errorf("%w: game x", bracket.ErrNotFound), http.StatusNotFound, "not found: game x"},
		{"not ready", fmt.Errorf("%w: SF1", bracket.ErrNotReady), http.StatusConflict, ""},
		{"wrong state", fmt.Errorf("%w: QF1", bracket.ErrState), http.StatusConflict, ""},
		{"conflict", fmt.Errorf("%w: SF1 started", bracket.ErrConflict), http.StatusConflict, ""},
		{"undo expired", fmt.Errorf("%w: QF1", bracket.ErrUndoExpired), http.StatusConflict, ""},
		{"invariant", fmt.Errorf("%w: slot taken", bracket.ErrInvariant), http.StatusInternalServerError, "Internal Server Error"},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, "failed", tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body errorBody
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			if tc.wantBody != "" {
				assert.Equal(t, tc.wantBody, body.Error)
			} else {
				assert.Equal(t, tc.err.Error(), body.Error)
			}
		})
	}
}
