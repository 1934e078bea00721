package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consultly/utils"
)

func authTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"actor": ActorID(c),
			"role":  c.GetString("actorRole"),
		})
	})
	r.GET("/provider-only", AuthMiddleware(), RequireRole("provider"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"actor": ActorID(c)})
	})
	return r
}

func doGet(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsIssuedToken(t *testing.T) {
	r := authTestRouter()

	token, err := utils.GenerateToken("client-1", "client", time.Hour)
	require.NoError(t, err)

	w := doGet(r, "/whoami", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"actor":"client-1"`)
	assert.Contains(t, w.Body.String(), `"role":"client"`)
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	r := authTestRouter()

	expired, err := utils.GenerateToken("client-1", "client", -time.Minute)
	require.NoError(t, err)

	cases := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
		{"expired", expired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doGet(r, "/whoami", tc.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := authTestRouter()

	provider, err := utils.GenerateToken("prov-1", "provider", time.Hour)
	require.NoError(t, err)
	client, err := utils.GenerateToken("client-1", "client", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doGet(r, "/provider-only", provider).Code)
	assert.Equal(t, http.StatusForbidden, doGet(r, "/provider-only", client).Code)
}
