package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Benjaminax/camous-taskboard-system/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"user not found", services.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"team not found", services.ErrTeamNotFound, http.StatusNotFound, "Team not found"},
		// Конфликты исторически 400, не 409
		{"already exists", services.ErrUserAlreadyExists, http.StatusBadRequest, "User already exists"},
		{"already member", services.ErrAlreadyMember, http.StatusBadRequest, "Already a team member"},
		{"pending request", services.ErrJoinRequestPending, http.StatusBadRequest, "Join request already pending"},
		{"creator leave", services.ErrCreatorCannotLeave, http.StatusBadRequest, "Team creator cannot leave the team. Delete the team instead."},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusBadRequest, "Invalid credentials"},
		{"edit forbidden", services.ErrTeamEditForbidden, http.StatusForbidden, "Only the team creator can edit the team"},
		{"task create forbidden", services.ErrTaskCreateForbidden, http.StatusForbidden, "You must be a member of the team to create tasks"},
		{"unknown error", errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/test", nil)

			mapServiceErrorToHTTP(rec, req, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantBody, body["error"])
		})
	}
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", newBody(`{"name":"Ada"}`))
		var dst payload
		require.NoError(t, readJSON(httptest.NewRecorder(), req, &dst))
		assert.Equal(t, "Ada", dst.Name)
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", newBody(""))
		var dst payload
		err := readJSON(httptest.NewRecorder(), req, &dst)
		assert.EqualError(t, err, "body must not be empty")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", newBody(`{"name":`))
		var dst payload
		assert.Error(t, readJSON(httptest.NewRecorder(), req, &dst))
	})

	t.Run("trailing data", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", newBody(`{"name":"Ada"}{"name":"Eve"}`))
		var dst payload
		err := readJSON(httptest.NewRecorder(), req, &dst)
		assert.EqualError(t, err, "body must only contain a single JSON value")
	})
}
