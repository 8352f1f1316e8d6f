package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	appaccounting "github.com/smbledger/backend/internal/application/accounting"
	"github.com/smbledger/backend/internal/domain/accounting"
	"github.com/smbledger/backend/internal/infrastructure/persistence"
	"github.com/smbledger/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupLedgerRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&accounting.Account{},
		&accounting.Journal{},
		&accounting.GeneralJournal{},
		&accounting.JournalEntryLine{},
	))

	ledgerService := appaccounting.NewLedgerService(
		persistence.NewGormAccountRepository(db),
		persistence.NewGormJournalRepository(db),
		persistence.NewGormGeneralJournalRepository(db),
	)

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewAccountHandler(ledgerService).RegisterRoutes(api)
	NewJournalHandler(ledgerService).RegisterRoutes(api)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func createAccount(t *testing.T, engine *gin.Engine, code, name, accountType string) string {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/api/v1/accounts", gin.H{
		"code": code, "name": name, "type": accountType,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]any)
	return data["id"].(string)
}

func TestAccountHandler_Create(t *testing.T) {
	engine := setupLedgerRouter(t)

	t.Run("creates an account", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/accounts", gin.H{
			"code": "1000", "name": "Cash", "type": "BANK",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "1000", data["code"])
		assert.Equal(t, "BANK", data["type"])
	})

	t.Run("rejects a duplicate code", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/accounts", gin.H{
			"code": "1000", "name": "Cash again", "type": "BANK",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/accounts", gin.H{"code": "2000"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	})
}

func TestAccountHandler_GetAndList(t *testing.T) {
	engine := setupLedgerRouter(t)
	id := createAccount(t, engine, "4000", "Sales", "INCOME")
	createAccount(t, engine, "1000", "Cash", "BANK")

	t.Run("returns one account by id", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/v1/accounts/"+id, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "Sales", data["name"])
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/v1/accounts/11111111-2222-3333-4444-555555555555", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	})

	t.Run("malformed id is a 400", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/v1/accounts/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("lists accounts with a total", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/v1/accounts", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		assert.NotNil(t, resp.Meta)
		assert.Equal(t, 2, resp.Meta.Total)
	})
}

func TestAccountHandler_UpdateAndMove(t *testing.T) {
	engine := setupLedgerRouter(t)
	parentID := createAccount(t, engine, "5000", "Expenses", "EXPENSE")
	childID := createAccount(t, engine, "5100", "Rent", "EXPENSE")

	t.Run("renames an account", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPatch, "/api/v1/accounts/"+childID, gin.H{
			"name": "Office rent",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "Office rent", data["name"])
	})

	t.Run("empty patch is a 400", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPatch, "/api/v1/accounts/"+childID, gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("reparents an account", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPut, fmt.Sprintf("/api/v1/accounts/%s/parent", childID), gin.H{
			"parent_id": parentID,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, parentID, data["parent_id"])
	})

	t.Run("reparenting under a descendant is refused", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPut, fmt.Sprintf("/api/v1/accounts/%s/parent", parentID), gin.H{
			"parent_id": childID,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, "CYCLE_DETECTED", resp.Error.Code)
	})

	t.Run("cannot delete an account with sub-accounts", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodDelete, "/api/v1/accounts/"+parentID, nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, "INVALID_STATE", resp.Error.Code)
	})

	t.Run("deletes a leaf account", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodDelete, "/api/v1/accounts/"+childID, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
