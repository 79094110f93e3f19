package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/prperemyshlev/storyboard-api/internal/apitest"
	"github.com/prperemyshlev/storyboard-api/internal/domain"
	"github.com/prperemyshlev/storyboard-api/internal/dto"
)

type AuthSuite struct {
	suite.Suite
	h     *apitest.Harness
	token *domain.AccessToken
}

func TestAuth(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) SetupTest() {
	s.h = apitest.New(s.T())

	s.h.LoadData(&domain.User{ID: 1, Username: "superuser", Email: "superuser@example.com", FullName: "Super User", IsSuperuser: true})
	s.token = s.h.BuildAccessToken(1, false)
	s.h.Authorize(s.token)
}

func (s *AuthSuite) TestMe() {
	var user domain.User
	_, err := s.h.GetJSON("/auth/me", &user, apitest.RequestOptions{})
	s.Require().NoError(err)

	s.Equal(int64(1), user.ID)
	s.Equal("superuser", user.Username)
	s.True(user.IsSuperuser)
	s.NotNil(user.LastLogin, "authenticating stamps last_login")
}

func (s *AuthSuite) TestExpiredToken() {
	expired := s.h.BuildAccessToken(1, true)

	resp, err := s.h.GetJSON("/auth/me", nil, apitest.RequestOptions{
		Headers: http.Header{"Authorization": {"Bearer " + expired.AccessToken}},
		Status:  http.StatusUnauthorized,
	})
	s.Require().NoError(err)

	var body dto.ErrorResponse
	s.Require().NoError(resp.JSON(&body))
	s.Contains(body.Message, "expired")
}

func (s *AuthSuite) TestUnknownToken() {
	_, err := s.h.GetJSON("/auth/me", nil, apitest.RequestOptions{
		Headers: http.Header{"Authorization": {"Bearer not-a-token"}},
		Status:  http.StatusUnauthorized,
	})
	s.NoError(err)
}

func (s *AuthSuite) TestTokenOfDeletedUser() {
	// tokens cascade with their user
	_, err := s.h.Postgres.DB.Exec(`DELETE FROM users WHERE id = 1`)
	s.Require().NoError(err)

	_, err = s.h.GetJSON("/auth/me", nil, apitest.RequestOptions{Status: http.StatusUnauthorized})
	s.NoError(err)
}

func (s *AuthSuite) TestRevoke() {
	other := s.h.BuildAccessToken(1, false)

	_, err := s.h.Delete("/auth/token", apitest.RequestOptions{Status: http.StatusNoContent})
	s.Require().NoError(err)

	_, err = s.h.GetJSON("/auth/me", nil, apitest.RequestOptions{Status: http.StatusUnauthorized})
	s.Require().NoError(err)

	var count int
	s.Require().NoError(s.h.Postgres.DB.QueryRow(
		`SELECT COUNT(*) FROM access_tokens WHERE access_token = $1`, s.token.AccessToken).Scan(&count))
	s.Zero(count)

	// other tokens of the same user keep working
	_, err = s.h.GetJSON("/auth/me", nil, apitest.RequestOptions{
		Headers: http.Header{"Authorization": {"Bearer " + other.AccessToken}},
	})
	s.NoError(err)
}
