package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"corebank/internal/adapter/http/handler"
	redisStore "corebank/internal/adapter/storage/redis"
	"corebank/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminUser     = "admin"
	adminPassword = "integration-secret"
)

type testEnv struct {
	router      *gin.Engine
	accountRepo *inMemoryAccountRepo
	txRepo      *inMemoryTransactionRepo
	token       string
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := service.NewSHA256PinVerifier()
	require.NoError(t, err)
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("integration-jwt-secret", time.Hour, "corebank")

	adminHash, err := hashSvc.Hash(adminPassword)
	require.NoError(t, err)

	accountRepo := newInMemoryAccountRepo()
	txRepo := newInMemoryTransactionRepo()
	transactor := newSerialTransactor()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := zerolog.Nop()
	router := handler.SetupRouter(handler.RouterDeps{
		ProcessingSvc:  service.NewProcessingService(accountRepo, txRepo, verifier, transactor, log),
		QuerySvc:       service.NewQueryService(accountRepo, txRepo),
		AccountSvc:     service.NewAccountService(accountRepo, verifier),
		AuthSvc:        service.NewAuthService(adminUser, adminHash, hashSvc, tokenSvc),
		TokenSvc:       tokenSvc,
		RateLimitStore: redisStore.NewRateLimitStore(client),
		Logger:         log,
	})

	env := &testEnv{router: router, accountRepo: accountRepo, txRepo: txRepo}
	env.token = env.login(t)
	return env
}

func (e *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	w := e.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": adminUser,
		"password": adminPassword,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func (e *testEnv) provision(t *testing.T, cardNumber, holder, pin string, balance int64) {
	t.Helper()
	w := e.do(http.MethodPost, "/api/v1/cards", map[string]any{
		"card_number":     cardNumber,
		"holder_name":     holder,
		"pin":             pin,
		"initial_balance": balance,
	}, e.token)
	require.Equal(t, http.StatusCreated, w.Code, "provision failed: %s", w.Body.String())
}

func (e *testEnv) process(t *testing.T, cardNumber, pin string, amount any, kind string) map[string]any {
	t.Helper()
	w := e.do(http.MethodPost, "/api/v1/process", map[string]any{
		"card_number": cardNumber,
		"pin":         pin,
		"amount":      amount,
		"type":        kind,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, "process failed: %s", w.Body.String())

	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

const (
	cardA = "4000111122223333"
	cardB = "4000999988887777"
)

func TestWithdrawalLifecycle(t *testing.T) {
	env := setupEnv(t)
	env.provision(t, cardA, "Jordan Pike", "1234", 1000)

	// Successful withdrawal
	data := env.process(t, cardA, "1234", 300, "withdraw")
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "Withdrawal successful", data["message"])
	assert.Equal(t, float64(700), data["balance"])

	// Over-balance withdrawal leaves the balance untouched
	data = env.process(t, cardA, "1234", 5000, "withdraw")
	assert.Equal(t, false, data["success"])
	assert.Equal(t, "Insufficient balance", data["message"])
	assert.Equal(t, float64(700), data["balance"])

	// Top-up
	data = env.process(t, cardA, "1234", 50, "topup")
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "Top-up successful", data["message"])
	assert.Equal(t, float64(750), data["balance"])
}

func TestRejectionOutcomes(t *testing.T) {
	env := setupEnv(t)
	env.provision(t, cardA, "Jordan Pike", "1234", 700)

	t.Run("wrong pin", func(t *testing.T) {
		data := env.process(t, cardA, "0000", 50, "withdraw")
		assert.Equal(t, false, data["success"])
		assert.Equal(t, "Invalid credential", data["message"])
		assert.Equal(t, float64(700), data["balance"])
	})

	t.Run("unknown card", func(t *testing.T) {
		data := env.process(t, cardB, "1234", 50, "withdraw")
		assert.Equal(t, false, data["success"])
		assert.Equal(t, "Account not found", data["message"])
		val, present := data["balance"]
		assert.True(t, present)
		assert.Nil(t, val, "no balance for an unknown account")
	})

	t.Run("invalid type", func(t *testing.T) {
		data := env.process(t, cardA, "1234", 50, "transfer")
		assert.Equal(t, false, data["success"])
		assert.Equal(t, "Invalid type", data["message"])
	})

	t.Run("negative amount", func(t *testing.T) {
		data := env.process(t, cardA, "1234", -10, "topup")
		assert.Equal(t, false, data["success"])
		assert.Equal(t, "Amount must be > 0", data["message"])
	})

	// Every attempt above must be in the log, including the unknown card.
	w := env.do(http.MethodGet, "/api/v1/transactions", nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 4, "one record per attempt")

	byCard := map[string]int{}
	for _, rec := range resp.Data {
		byCard[rec["card_number"].(string)]++
		assert.Equal(t, "FAILED", rec["status"])
	}
	assert.Equal(t, 1, byCard[cardB], "unknown-card attempt is recorded under the requested number")
}

func TestCardDetailsAndHistory(t *testing.T) {
	env := setupEnv(t)
	env.provision(t, cardA, "Jordan Pike", "1234", 1000)

	env.process(t, cardA, "1234", 300, "withdraw")
	env.process(t, cardA, "0000", 10, "withdraw")

	w := env.do(http.MethodGet, "/api/v1/cards/"+cardA, nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			HolderName   string           `json:"holder_name"`
			Balance      float64          `json:"balance"`
			Transactions []map[string]any `json:"transactions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Jordan Pike", resp.Data.HolderName)
	assert.Equal(t, float64(700), resp.Data.Balance)
	require.Len(t, resp.Data.Transactions, 2)
	assert.Equal(t, "FAILED", resp.Data.Transactions[0]["status"], "newest record first")
	assert.Equal(t, "SUCCESS", resp.Data.Transactions[1]["status"])
}

func TestQueryEndpointsRequireAuth(t *testing.T) {
	env := setupEnv(t)

	for _, path := range []string{
		"/api/v1/cards/" + cardA,
		"/api/v1/transactions",
	} {
		w := env.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "path %s must require a token", path)
	}

	w := env.do(http.MethodPost, "/api/v1/cards", map[string]any{
		"card_number": cardA, "holder_name": "X", "pin": "1234",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": adminUser,
		"password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "SEC_001")
}

func TestProvisionDuplicateCard(t *testing.T) {
	env := setupEnv(t)
	env.provision(t, cardA, "Jordan Pike", "1234", 1000)

	w := env.do(http.MethodPost, "/api/v1/cards", map[string]any{
		"card_number": cardA, "holder_name": "Someone Else", "pin": "9999",
	}, env.token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CARD_002")
}

func TestProcessValidation(t *testing.T) {
	env := setupEnv(t)

	// Malformed card number never reaches the processor.
	w := env.do(http.MethodPost, "/api/v1/process", map[string]any{
		"card_number": "not-a-card",
		"pin":         "1234",
		"amount":      10,
		"type":        "withdraw",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	all, err := env.txRepo.ListAll(t.Context())
	require.NoError(t, err)
	assert.Empty(t, all, "validation failures produce no record")
}

func TestUppercaseTypeIsNormalized(t *testing.T) {
	env := setupEnv(t)
	env.provision(t, cardA, "Jordan Pike", "1234", 100)

	data := env.process(t, cardA, "1234", 40, "WITHDRAW")
	assert.Equal(t, true, data["success"])
	assert.Equal(t, float64(60), data["balance"])
}

func TestHealthEndpoint(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestLoginRateLimit(t *testing.T) {
	env := setupEnv(t)

	// The login group allows 10 per minute; the setup already spent one.
	var last *httptest.ResponseRecorder
	for i := 0; i < 10; i++ {
		last = env.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
			"username": adminUser,
			"password": "wrong",
		}, "")
	}
	require.NotNil(t, last)
	assert.Equal(t, http.StatusTooManyRequests, last.Code, fmt.Sprintf("body: %s", last.Body.String()))
	assert.Contains(t, last.Body.String(), "RATE_001")
}
