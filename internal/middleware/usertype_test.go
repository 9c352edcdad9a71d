package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/innovation-hub-api/internal/models"
)

func serveWithActor(t *testing.T, actor *models.Actor, guard gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	router := gin.New()
	if actor != nil {
		router.Use(func(c *gin.Context) {
			c.Set(ContextActorKey, *actor)
		})
	}
	router.Use(guard)
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRequireTypesAllowsListedPopulation(t *testing.T) {
	actor := models.Actor{ID: "u-1", Type: models.UserTypeInnovator}
	recorder := serveWithActor(t, &actor, RequireTypes(models.UserTypeInnovator, models.UserTypeAdmin))
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRequireTypesBlocksOtherPopulations(t *testing.T) {
	actor := models.Actor{ID: "u-1", Type: models.UserTypeAccessor}
	recorder := serveWithActor(t, &actor, RequireTypes(models.UserTypeInnovator))
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRequireTypesWithoutActor(t *testing.T) {
	recorder := serveWithActor(t, nil, RequireTypes(models.UserTypeInnovator))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRequireAccessorRolesChecksRole(t *testing.T) {
	actor := models.Actor{
		ID:   "u-1",
		Type: models.UserTypeAccessor,
		Organisation: &models.OrganisationContext{
			MembershipID:   "m-1",
			Role:           models.RoleAccessor,
			OrganisationID: "org-1",
		},
	}
	recorder := serveWithActor(t, &actor, RequireAccessorRoles(models.RoleQualifyingAccessor))
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}

	actor.Organisation.Role = models.RoleQualifyingAccessor
	recorder = serveWithActor(t, &actor, RequireAccessorRoles(models.RoleQualifyingAccessor))
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRequireAccessorRolesBlocksMembershiplessAccessor(t *testing.T) {
	actor := models.Actor{ID: "u-1", Type: models.UserTypeAccessor}
	recorder := serveWithActor(t, &actor, RequireAccessorRoles(models.RoleQualifyingAccessor))
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestJWTAcceptsSignedToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const secret = "test-secret"

	claims := &models.JWTClaims{
		ExternalID: "ext-1",
		Email:      "ext-1@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	recorder := httptest.NewRecorder()
	router := gin.New()
	router.Use(JWT(secret))
	router.GET("/", func(c *gin.Context) {
		stored := c.MustGet(ContextClaimsKey).(*models.JWTClaims)
		if stored.ExternalID != "ext-1" {
			t.Fatalf("unexpected external id: %s", stored.ExternalID)
		}
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestJWTRejectsBadTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(JWT("test-secret"))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for _, header := range []string{"", "Token abc", "Bearer not-a-jwt"} {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: unexpected status %d", header, recorder.Code)
		}
	}
}
