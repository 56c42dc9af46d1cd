package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"corebank/internal/adapter/http/dto"
	"corebank/internal/core/domain"
	"corebank/internal/core/ports"
	"corebank/internal/core/ports/mocks"
	"corebank/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testCard = "4000111122223333"

func postJSON(t *testing.T, w *httptest.ResponseRecorder, path string, payload any) *gin.Context {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func dataField(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

// --- Processing Handler Tests ---

func TestProcess_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockSvc := mocks.NewMockProcessingService(ctrl)
	h := NewProcessingHandler(mockSvc)

	newBalance := decimal.NewFromInt(700)
	mockSvc.EXPECT().Process(gomock.Any(), ports.ProcessRequest{
		CardNumber: testCard,
		PIN:        "1234",
		Amount:     decimal.NewFromInt(300),
		Type:       "withdraw",
	}).Return(&ports.ProcessResult{
		Success:       true,
		Message:       "Withdrawal successful",
		Balance:       &newBalance,
		TransactionID: 41,
	}, nil)

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/api/v1/process", dto.ProcessRequest{
		CardNumber: testCard,
		PIN:        "1234",
		Amount:     decimal.NewFromInt(300),
		Type:       "withdraw",
	})

	h.Process(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "Withdrawal successful", data["message"])
	assert.Equal(t, float64(700), data["balance"])
	assert.Equal(t, float64(41), data["transaction_id"])
}

func TestProcess_NormalizesType(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockSvc := mocks.NewMockProcessingService(ctrl)
	h := NewProcessingHandler(mockSvc)

	balance := decimal.NewFromInt(750)
	mockSvc.EXPECT().Process(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, req ports.ProcessRequest) (*ports.ProcessResult, error) {
			assert.Equal(t, "topup", req.Type, "handler lowercases and trims the type")
			return &ports.ProcessResult{Success: true, Message: "Top-up successful", Balance: &balance, TransactionID: 42}, nil
		})

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/api/v1/process", map[string]any{
		"card_number": testCard,
		"pin":         "1234",
		"amount":      50,
		"type":        "  TOPUP ",
	})

	h.Process(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProcess_RejectionIsStillOK(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockSvc := mocks.NewMockProcessingService(ctrl)
	h := NewProcessingHandler(mockSvc)

	mockSvc.EXPECT().Process(gomock.Any(), gomock.Any()).Return(&ports.ProcessResult{
		Success:       false,
		Message:       "Account not found",
		Balance:       nil,
		TransactionID: 45,
	}, nil)

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/api/v1/process", dto.ProcessRequest{
		CardNumber: "4999000011112222",
		PIN:        "1234",
		Amount:     decimal.NewFromInt(10),
		Type:       "withdraw",
	})

	h.Process(c)

	assert.Equal(t, http.StatusOK, w.Code, "domain rejections are outcomes, not HTTP errors")
	data := dataField(t, w)
	assert.Equal(t, false, data["success"])
	assert.Equal(t, "Account not found", data["message"])
	val, present := data["balance"]
	assert.True(t, present, "balance key must render as explicit null")
	assert.Nil(t, val)
}

func TestProcess_NegativeAmountReachesService(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockSvc := mocks.NewMockProcessingService(ctrl)
	h := NewProcessingHandler(mockSvc)

	balance := decimal.NewFromInt(700)
	mockSvc.EXPECT().Process(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, req ports.ProcessRequest) (*ports.ProcessResult, error) {
			assert.True(t, req.Amount.Equal(decimal.NewFromInt(-10)), "amount passes through unclamped")
			return &ports.ProcessResult{Success: false, Message: "Amount must be > 0", Balance: &balance, TransactionID: 47}, nil
		})

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/api/v1/process", map[string]any{
		"card_number": testCard,
		"pin":         "1234",
		"amount":      -10,
		"type":        "topup",
	})

	h.Process(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProcess_BadCardNumber(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockSvc := mocks.NewMockProcessingService(ctrl)
	h := NewProcessingHandler(mockSvc)

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/api/v1/process", map[string]any{
		"card_number": "5000111122223333", // wrong issuer prefix
		"pin":         "1234",
		"amount":      10,
		"type":        "withdraw",
	})

	h.Process(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VAL_001")
}

func TestProcess_StorageUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockSvc := mocks.NewMockProcessingService(ctrl)
	h := NewProcessingHandler(mockSvc)

	mockSvc.EXPECT().Process(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrStorageUnavailable(assert.AnError))

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/api/v1/process", dto.ProcessRequest{
		CardNumber: testCard,
		PIN:        "1234",
		Amount:     decimal.NewFromInt(10),
		Type:       "withdraw",
	})

	h.Process(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_001")
}

// --- Auth Handler Tests ---

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(12 * time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "admin", "s3cret").Return("jwt-token", expiry, nil)

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/api/v1/auth/login", dto.LoginRequest{Username: "admin", Password: "s3cret"})

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "jwt-token", data["token"])
	assert.Equal(t, float64(expiry.Unix()), data["expiry"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", time.Time{}, apperror.ErrInvalidCredentials())

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/api/v1/auth/login", dto.LoginRequest{Username: "admin", Password: "wrong"})

	h.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_MissingFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewAuthHandler(mocks.NewMockAuthService(ctrl))

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/api/v1/auth/login", map[string]any{})

	h.Login(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Card Handler Tests ---

func TestGetCard_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockQuery := mocks.NewMockQueryService(ctrl)
	h := NewCardHandler(mockQuery, mocks.NewMockAccountService(ctrl))

	mockQuery.EXPECT().GetCardDetails(gomock.Any(), testCard).Return(&ports.CardDetails{
		CardNumber: testCard,
		HolderName: "Jordan Pike",
		Balance:    decimal.NewFromInt(700),
		Transactions: []domain.Transaction{
			{ID: 2, CardNumber: testCard, Type: "withdraw", Amount: decimal.NewFromInt(300),
				Status: domain.TransactionStatusSuccess, Reason: "Withdrawal successful", CreatedAt: time.Now().UTC()},
		},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/cards/"+testCard, nil)
	c.Params = gin.Params{{Key: "card_number", Value: testCard}}

	h.GetCard(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "Jordan Pike", data["holder_name"])
	txs := data["transactions"].([]interface{})
	assert.Len(t, txs, 1)
}

func TestGetCard_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockQuery := mocks.NewMockQueryService(ctrl)
	h := NewCardHandler(mockQuery, mocks.NewMockAccountService(ctrl))

	mockQuery.EXPECT().GetCardDetails(gomock.Any(), "4999000011112222").
		Return(nil, apperror.ErrNotFound("Card"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/cards/4999000011112222", nil)
	c.Params = gin.Params{{Key: "card_number", Value: "4999000011112222"}}

	h.GetCard(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "CARD_001")
}

func TestListTransactions_Filtered(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockQuery := mocks.NewMockQueryService(ctrl)
	h := NewCardHandler(mockQuery, mocks.NewMockAccountService(ctrl))

	mockQuery.EXPECT().ListTransactions(gomock.Any(), testCard).
		Return([]domain.Transaction{{ID: 7, CardNumber: testCard, CreatedAt: time.Now().UTC()}}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/transactions?card_number="+testCard, nil)

	h.ListTransactions(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListTransactions_FullLog(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockQuery := mocks.NewMockQueryService(ctrl)
	h := NewCardHandler(mockQuery, mocks.NewMockAccountService(ctrl))

	mockQuery.EXPECT().ListTransactions(gomock.Any(), "").
		Return([]domain.Transaction{{ID: 9, CreatedAt: time.Now().UTC()}, {ID: 8, CreatedAt: time.Now().UTC()}}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)

	h.ListTransactions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	items := resp["data"].([]interface{})
	assert.Len(t, items, 2)
}

func TestProvision_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAccount := mocks.NewMockAccountService(ctrl)
	h := NewCardHandler(mocks.NewMockQueryService(ctrl), mockAccount)

	mockAccount.EXPECT().Provision(gomock.Any(), ports.ProvisionRequest{
		CardNumber:     testCard,
		HolderName:     "Jordan Pike",
		PIN:            "1234",
		InitialBalance: decimal.NewFromInt(1000),
	}).Return(&domain.Account{
		CardNumber: testCard,
		HolderName: "Jordan Pike",
		Balance:    decimal.NewFromInt(1000),
		CreatedAt:  time.Now().UTC(),
	}, nil)

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/api/v1/cards", dto.ProvisionRequest{
		CardNumber:     testCard,
		HolderName:     "Jordan Pike",
		PIN:            "1234",
		InitialBalance: decimal.NewFromInt(1000),
	})

	h.Provision(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	assert.Equal(t, testCard, data["card_number"])
}

func TestProvision_Conflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAccount := mocks.NewMockAccountService(ctrl)
	h := NewCardHandler(mocks.NewMockQueryService(ctrl), mockAccount)

	mockAccount.EXPECT().Provision(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrCardExists())

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/api/v1/cards", dto.ProvisionRequest{
		CardNumber: testCard,
		HolderName: "Jordan Pike",
		PIN:        "1234",
	})

	h.Provision(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CARD_002")
}
