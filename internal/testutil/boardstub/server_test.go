package boardstub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, s *Server, method, path, token string, form url.Values) (int, map[string]interface{}) {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	out := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func TestServer_AuthFlow(t *testing.T) {
	s := New(Options{})

	code, _ := do(t, s, http.MethodPost, "/api/register", "", url.Values{"name": {"Ann"}, "email": {"a@x.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusOK, code)

	code, body := do(t, s, http.MethodPost, "/api/register", "", url.Values{"name": {"Ann"}, "email": {"a@x.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Email already registered", body["error"])

	code, body = do(t, s, http.MethodPost, "/api/login", "", url.Values{"email": {"a@x.com"}, "password": {"bad"}})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", body["error"])

	code, body = do(t, s, http.MethodPost, "/api/login", "", url.Values{"email": {"a@x.com"}, "password": {"pw"}})
	require.Equal(t, http.StatusOK, code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	_, body = do(t, s, http.MethodGet, "/api/session", token, nil)
	assert.Equal(t, true, body["authenticated"])

	do(t, s, http.MethodPost, "/api/logout", token, nil)
	_, body = do(t, s, http.MethodGet, "/api/session", token, nil)
	assert.Equal(t, false, body["authenticated"])

	code, body = do(t, s, http.MethodPost, "/api/ads", token, url.Values{"title": {"t"}, "description": {"d"}})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Authentication required", body["error"])
}

func TestServer_ResponseRules(t *testing.T) {
	s := New(Options{})
	owner := s.AddUser("Owner", "o@x.com", "pw")
	other := s.AddUser("Other", "b@x.com", "pw")
	id := s.AddListing(owner.ID, "Bike", "Red", 10)
	ownerTok, otherTok := s.TokenFor(owner.ID), s.TokenFor(other.ID)
	respond := "/api/ads/" + itoa(id) + "/respond"

	code, body := do(t, s, http.MethodPost, respond, ownerTok, url.Values{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "You cannot respond to your own advertisement", body["error"])

	code, _ = do(t, s, http.MethodPost, respond, otherTok, url.Values{})
	assert.Equal(t, http.StatusOK, code)

	code, body = do(t, s, http.MethodPost, respond, otherTok, url.Values{})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "You have already responded to this advertisement", body["error"])

	code, body = do(t, s, http.MethodGet, "/api/ads/"+itoa(id)+"/responders", otherTok, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Only the owner can view responders", body["error"])

	code, body = do(t, s, http.MethodGet, "/api/ads/"+itoa(id)+"/responders", ownerTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["responders"], 1)

	_, body = do(t, s, http.MethodGet, "/api/ads", ownerTok, nil)
	ads := body["ads"].([]interface{})
	require.Len(t, ads, 1)
	ad := ads[0].(map[string]interface{})
	assert.Equal(t, true, ad["mine"])
	assert.Equal(t, float64(1), ad["responsesCount"])

	assert.Equal(t, 3, s.Calls("POST /api/ads/{id}/respond"))
}

func TestServer_DeleteRules(t *testing.T) {
	s := New(Options{SeedDemo: true})
	aliceTok := s.TokenFor(2)

	code, body := do(t, s, http.MethodDelete, "/api/ads/1", aliceTok, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "You can only delete your own advertisements", body["error"])

	code, _ = do(t, s, http.MethodDelete, "/api/ads/3", aliceTok, nil)
	assert.Equal(t, http.StatusOK, code)

	code, body = do(t, s, http.MethodDelete, "/api/ads/3", aliceTok, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Advertisement not found", body["error"])
}

func TestServer_UnknownEndpoint(t *testing.T) {
	code, body := do(t, New(Options{}), http.MethodGet, "/api/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Endpoint not found", body["error"])
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
