//go:build integration_test

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/stretchr/testify/require"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/users"
)

type session struct {
	token string
	dev   bool
}

func (s *IntegrationTestSuite) devSession() session {
	return session{dev: true}
}

func (s *IntegrationTestSuite) sessionFor(user *users.User) session {
	token, _, err := s.tokens.Issue(user)
	s.Require().NoError(err)
	return session{token: token}
}

// do sends a JSON request and decodes the response into out, if given.
func (s *IntegrationTestSuite) do(
	ctx context.Context,
	sess session,
	method, path string,
	body any,
	expectedStatus int,
	out any,
) {
	t := s.T()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess.dev {
		req.Header.Set("X-Dev-Token", "dev-bypass")
	}
	if sess.token != "" {
		req.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: sess.token})
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, resp.StatusCode, "%s %s: %s", method, path, string(respBytes))

	if out != nil {
		require.NoError(t, json.Unmarshal(respBytes, out), string(respBytes))
	}
}
