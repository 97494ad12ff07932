package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type profileMap map[uuid.UUID]*models.User

func (p profileMap) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := p[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "middleware-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "academy.test",
	})
}

func tokenFor(t *testing.T, jwt *auth.JWTService, u *models.User) string {
	t.Helper()
	pair, err := jwt.GenerateTokenPair(u)
	require.NoError(t, err)
	return pair.AccessToken
}

func gatedRouter(m *AuthMiddleware, op appauth.Operation) *gin.Engine {
	r := gin.New()
	r.GET("/gated", m.JWTAuth(), m.Require(op), func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, string(p.Role))
	})
	return r
}

func do(r http.Handler, target, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAccessGate(t *testing.T) {
	jwt := newJWT()
	coach := &models.User{ID: uuid.New(), Email: "coach@academy.test", Role: models.RoleCoach}
	student := &models.User{ID: uuid.New(), Email: "student@academy.test", Role: models.RoleStudent}
	m := NewAuthMiddleware(jwt, profileMap{coach.ID: coach, student.ID: student}, zerolog.Nop())
	r := gatedRouter(m, appauth.OpTrainingCreate)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/gated", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/gated", "Bearer not-a-token").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/gated", "Bearer "+tokenFor(t, jwt, student)).Code)

	w := do(r, "/gated", "Bearer "+tokenFor(t, jwt, coach))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "coach", w.Body.String())

	w = do(r, "/gated?token="+tokenFor(t, jwt, coach), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGateUsesStoredRole(t *testing.T) {
	jwt := newJWT()
	user := &models.User{ID: uuid.New(), Email: "was-coach@academy.test", Role: models.RoleCoach}
	token := tokenFor(t, jwt, user)

	profiles := profileMap{user.ID: {ID: user.ID, Email: user.Email, Role: models.RoleStudent}}
	r := gatedRouter(NewAuthMiddleware(jwt, profiles, zerolog.Nop()), appauth.OpTrainingCreate)
	assert.Equal(t, http.StatusForbidden, do(r, "/gated", "Bearer "+token).Code)

	r = gatedRouter(NewAuthMiddleware(jwt, profileMap{}, zerolog.Nop()), appauth.OpTrainingCreate)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/gated", "Bearer "+token).Code)

	r = gatedRouter(NewAuthMiddleware(jwt, nil, zerolog.Nop()), appauth.OpTrainingCreate)
	assert.Equal(t, http.StatusOK, do(r, "/gated", "Bearer "+token).Code)
}

func TestRequireWithoutAuthIsUnauthorized(t *testing.T) {
	m := NewAuthMiddleware(newJWT(), nil, zerolog.Nop())
	r := gin.New()
	r.GET("/open", m.Require(appauth.OpAnalyticsView), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, do(r, "/open", "").Code)
}

func TestHandleAPIErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   dto.ErrorCode
	}{
		{apperrors.NewResourceNotFoundError("training not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.ErrDuplicateAssignment, http.StatusConflict, dto.ErrorCodeDuplicateAssignment},
		{apperrors.NewAlreadyExistsError("already registered"), http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{apperrors.NewCapacityError("training is full"), http.StatusConflict, dto.ErrorCodeCapacityExceeded},
		{apperrors.NewStateTransitionError("nope"), http.StatusConflict, dto.ErrorCodeInvalidStateChange},
		{fmt.Errorf("update: %w", apperrors.ErrStaleUpdate), http.StatusConflict, dto.ErrorCodeStaleUpdate},
		{apperrors.ErrAttendanceNotOpen, http.StatusUnprocessableEntity, dto.ErrorCodeAttendanceNotOpen},
		{apperrors.NewForbiddenError("no"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{apperrors.NewValidationError("title is required"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tc.err)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.status, StatusFor(tc.err))

			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}
}

func TestHandleAPIErrorSurfacesCustomMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, apperrors.NewValidationError("both date and time must be given"))

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "both date and time must be given", body.Error.Message)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(time.Second))
	r.GET("/", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		if !ok || time.Until(deadline) > time.Second {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	assert.Equal(t, http.StatusNoContent, do(r, "/", "").Code)
}

func TestRecoveryAnswers500(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()), RequestLogger(zerolog.Nop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	assert.Equal(t, http.StatusInternalServerError, do(r, "/boom", "").Code)
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators())

	type clock struct {
		At string `binding:"required,hhmm"`
	}
	assert.NoError(t, binding.Validator.ValidateStruct(&clock{At: "17:30"}))
	assert.Error(t, binding.Validator.ValidateStruct(&clock{At: "25:00"}))
}
