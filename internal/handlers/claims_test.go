package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Juadebfm/ecorewards-deploy/internal/auth"
	"github.com/Juadebfm/ecorewards-deploy/internal/middleware"
	"github.com/Juadebfm/ecorewards-deploy/internal/models"
	"github.com/Juadebfm/ecorewards-deploy/internal/repository"
	"github.com/Juadebfm/ecorewards-deploy/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// stubBackend backs the claim service with in-memory state so the
// HTTP layer can be exercised without a database.
type stubBackend struct {
	user    *models.User
	partner *models.Partner
	reward  *models.Reward
	qr      *models.QRCode
	claims  map[uuid.UUID]*models.RewardClaim
}

func newStubBackend() *stubBackend {
	partnerID := uuid.New()
	rewardID := uuid.New()
	return &stubBackend{
		user: &models.User{
			ID:       uuid.New(),
			Name:     "Ada",
			Email:    "ada@example.com",
			Role:     models.RoleUser,
			Points:   40,
			EcoLevel: models.EcoLevelBeginner,
			IsActive: true,
		},
		partner: &models.Partner{
			ID:                 partnerID,
			Name:               "Green Grocer",
			VerificationStatus: models.VerificationVerified,
			IsActive:           true,
		},
		reward: &models.Reward{
			ID:               rewardID,
			PartnerID:        partnerID,
			Title:            "Bring your own bag",
			Points:           25,
			MaxClaimsPerUser: 1,
			IsActive:         true,
		},
		qr: &models.QRCode{
			ID:        uuid.New(),
			Code:      "qr_test",
			PartnerID: partnerID,
			RewardID:  rewardID,
			IsActive:  true,
		},
		claims: map[uuid.UUID]*models.RewardClaim{},
	}
}

func (b *stubBackend) GetByCode(_ context.Context, code string) (*models.QRCode, error) {
	if code != b.qr.Code {
		return nil, repository.ErrQRCodeNotFound
	}
	out := *b.qr
	return &out, nil
}

func (b *stubBackend) RecordScan(_ context.Context, _, _ uuid.UUID) (*models.QRCode, error) {
	b.qr.ScanCount++
	out := *b.qr
	return &out, nil
}

func (b *stubBackend) GetByID(_ context.Context, id uuid.UUID) (*models.Reward, error) {
	if id != b.reward.ID {
		return nil, repository.ErrRewardNotFound
	}
	out := *b.reward
	return &out, nil
}

type stubPartners struct{ b *stubBackend }

func (s stubPartners) GetByID(_ context.Context, id uuid.UUID) (*models.Partner, error) {
	if id != s.b.partner.ID {
		return nil, repository.ErrPartnerNotFound
	}
	out := *s.b.partner
	return &out, nil
}

func (b *stubBackend) ActiveClaim(_ context.Context, userID, qrCodeID uuid.UUID) (*models.RewardClaim, error) {
	for _, c := range b.claims {
		if c.UserID == userID && c.QRCodeID == qrCodeID && c.Status != models.ClaimStatusReversed {
			out := *c
			return &out, nil
		}
	}
	return nil, nil
}

func (b *stubBackend) CountActiveClaims(_ context.Context, userID, rewardID uuid.UUID) (int, error) {
	count := 0
	for _, c := range b.claims {
		if c.UserID == userID && c.RewardID == rewardID && c.Status != models.ClaimStatusReversed {
			count++
		}
	}
	return count, nil
}

func (b *stubBackend) CreateClaim(_ context.Context, claim *models.RewardClaim) (*models.User, error) {
	claim.ClaimedAt = time.Now()
	stored := *claim
	b.claims[claim.ID] = &stored
	b.user.Points += claim.PointsAwarded
	b.user.EcoLevel = models.EcoLevelFor(b.user.Points)
	out := *b.user
	return &out, nil
}

func (b *stubBackend) ClaimByID(_ context.Context, id uuid.UUID) (*models.RewardClaim, error) {
	c, ok := b.claims[id]
	if !ok {
		return nil, repository.ErrClaimNotFound
	}
	out := *c
	return &out, nil
}

func (b *stubBackend) ReverseClaim(_ context.Context, claimID uuid.UUID, reason string) (*models.RewardClaim, *models.User, error) {
	c, ok := b.claims[claimID]
	if !ok {
		return nil, nil, repository.ErrClaimNotFound
	}
	if c.Status == models.ClaimStatusReversed {
		return nil, nil, repository.ErrAlreadyReversed
	}
	now := time.Now()
	c.Status = models.ClaimStatusReversed
	c.ReversedAt = &now
	notes := "Reversed: " + reason
	c.Notes = &notes
	b.user.Points -= c.PointsAwarded
	b.user.EcoLevel = models.EcoLevelFor(b.user.Points)
	claimOut := *c
	userOut := *b.user
	return &claimOut, &userOut, nil
}

func (b *stubBackend) SyncUser(_ context.Context, _ *models.User) error { return nil }

type claimTestEnv struct {
	router  *gin.Engine
	backend *stubBackend
	jwt     *auth.JWTService
}

func newClaimTestEnv(t *testing.T) *claimTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := newStubBackend()
	svc := service.NewClaimService(backend, backend, backend, stubPartners{backend}, backend)
	h := NewClaimHandler(svc)
	jwtSvc := auth.NewJWTService("test-secret", "ecorewards", time.Hour)

	r := gin.New()
	api := r.Group("/api")

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(jwtSvc))
	authed.POST("/qr/:code/claim", h.ClaimReward)

	admin := api.Group("")
	admin.Use(middleware.RequireAuth(jwtSvc), middleware.RequireAdmin())
	admin.POST("/claims/:id/reverse", h.ReverseClaim)

	return &claimTestEnv{router: r, backend: backend, jwt: jwtSvc}
}

func (e *claimTestEnv) do(t *testing.T, method, path, role string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if role != "" {
		token, err := e.jwt.GenerateToken(e.backend.user.ID, e.backend.user.Email, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestClaimRewardEndpoint(t *testing.T) {
	env := newClaimTestEnv(t)

	w := env.do(t, "POST", "/api/qr/qr_test/claim", models.RoleUser, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.ClaimResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 25, resp.Claim.PointsAwarded)
	require.Equal(t, 65, resp.User.TotalPoints)
	require.Equal(t, "Green Grocer", resp.Partner.Name)
}

func TestClaimRewardRequiresAuth(t *testing.T) {
	env := newClaimTestEnv(t)

	w := env.do(t, "POST", "/api/qr/qr_test/claim", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClaimRewardRejectsMalformedBody(t *testing.T) {
	env := newClaimTestEnv(t)

	token, err := env.jwt.GenerateToken(env.backend.user.ID, env.backend.user.Email, models.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/qr/qr_test/claim", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, env.backend.claims, "rejected body must not create a claim")
}

func TestClaimRewardRejectsInvalidProofURL(t *testing.T) {
	env := newClaimTestEnv(t)

	proofType := "receipt"
	proofURL := "not-a-url"
	body := models.ClaimRequest{Verification: &models.ClaimVerification{
		RequiresProof: true,
		ProofType:     &proofType,
		ProofURL:      &proofURL,
	}}

	w := env.do(t, "POST", "/api/qr/qr_test/claim", models.RoleUser, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, env.backend.claims)
}

func TestClaimRewardUnknownCode(t *testing.T) {
	env := newClaimTestEnv(t)

	w := env.do(t, "POST", "/api/qr/qr_nope/claim", models.RoleUser, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestClaimRewardUnavailableReason(t *testing.T) {
	env := newClaimTestEnv(t)
	env.backend.reward.IsActive = false

	w := env.do(t, "POST", "/api/qr/qr_test/claim", models.RoleUser, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, service.ReasonRewardInactive, body["error"])
}

func TestClaimRewardDuplicateIncludesExisting(t *testing.T) {
	env := newClaimTestEnv(t)

	w := env.do(t, "POST", "/api/qr/qr_test/claim", models.RoleUser, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, "POST", "/api/qr/qr_test/claim", models.RoleUser, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Reward already claimed", body["error"])
	require.Contains(t, body, "existing_claim")
}

func TestReverseClaimEndpoint(t *testing.T) {
	env := newClaimTestEnv(t)

	w := env.do(t, "POST", "/api/qr/qr_test/claim", models.RoleUser, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp models.ClaimResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	path := "/api/claims/" + resp.Claim.ID.String() + "/reverse"
	body := models.ReverseClaimRequest{Reason: "partner reported fraudulent scan"}

	w = env.do(t, "POST", path, models.RoleAdmin, body)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 40, env.backend.user.Points)

	// Second reversal is rejected
	w = env.do(t, "POST", path, models.RoleAdmin, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReverseClaimRequiresAdmin(t *testing.T) {
	env := newClaimTestEnv(t)

	path := "/api/claims/" + uuid.NewString() + "/reverse"
	body := models.ReverseClaimRequest{Reason: "partner reported fraudulent scan"}

	w := env.do(t, "POST", path, models.RoleUser, body)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestReverseClaimValidatesReason(t *testing.T) {
	env := newClaimTestEnv(t)

	path := "/api/claims/" + uuid.NewString() + "/reverse"

	w := env.do(t, "POST", path, models.RoleAdmin, models.ReverseClaimRequest{Reason: "short"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, "POST", path, models.RoleAdmin, models.ReverseClaimRequest{Reason: "long enough reason here"})
	require.Equal(t, http.StatusNotFound, w.Code)
}
