package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backoffice/internal/config"
	"backoffice/internal/devapi"
	"backoffice/internal/domain/model"
	"backoffice/internal/infra/adminapi"
	infradb "backoffice/internal/infra/db"
	infraRepo "backoffice/internal/infra/repository"
	"backoffice/internal/infra/session"
	"backoffice/internal/server"
)

const testSecret = "e2e-secret"

type wizardBody struct {
	ID           string           `json:"id"`
	StepName     string           `json:"stepName"`
	SelectedUser *model.User      `json:"selectedUser"`
	Items        []model.CartItem `json:"items"`
	ItemCount    int              `json:"itemCount"`
	Total        model.Money      `json:"total"`
}

type env struct {
	api      *echo.Echo
	upstream string
	token    string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := infradb.OpenSQLite("")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func mintToken(t *testing.T, sub string, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

// devapi（上流）+ redis + 監査ログDB をつないだウィザードサービス
func newEnv(t *testing.T) env {
	t.Helper()

	upDB := openSQLite(t)
	require.NoError(t, infradb.MigrateUpstream(upDB))
	svc := devapi.NewServiceFromDB(upDB, nil)
	_, err := svc.Seed(context.Background())
	require.NoError(t, err)
	up := echo.New()
	devapi.NewHandler(svc, nil).RegisterRoutes(up)
	upSrv := httptest.NewServer(up)
	t.Cleanup(upSrv.Close)

	auditDB := openSQLite(t)
	require.NoError(t, infradb.MigrateAudit(auditDB))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.Config{JWTSecret: testSecret, RollbackOnItemFailure: true}
	api := server.NewAPI(cfg, zap.NewNop(), server.APIDeps{
		Upstream: adminapi.NewClient(upSrv.URL, adminapi.WithTimeout(5*time.Second)),
		Sessions: session.NewWizardRedisRepository(rdb, time.Hour),
		Audit:    infraRepo.NewAuditLogGormRepository(auditDB),
	})

	return env{api: api, upstream: upSrv.URL, token: mintToken(t, "1", "ADMIN")}
}

func (e env) do(t *testing.T, method string, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return e.doWithToken(t, method, path, body, e.token)
}

func (e env) doWithToken(t *testing.T, method string, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.api.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestE2E_AuthAndHealth(t *testing.T) {
	e := newEnv(t)

	rec := e.doWithToken(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec = e.doWithToken(t, http.MethodPost, "/admin/order-wizards", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.doWithToken(t, http.MethodPost, "/admin/order-wizards", nil, mintToken(t, "2", "USER"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestE2E_CreateOrderThroughWizard(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/admin/order-wizards", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	base := "/admin/order-wizards/" + decode[wizardBody](t, rec).ID

	//1: 会員
	rec = e.do(t, http.MethodGet, base+"/users?keyword=tanaka", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[struct {
		Items []model.User `json:"items"`
	}](t, rec)
	require.Len(t, users.Items, 1)

	rec = e.do(t, http.MethodPut, base+"/user", map[string]string{"userNo": users.Items[0].No})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "SelectingProducts", decode[wizardBody](t, rec).StepName)

	//空カートでは進めない
	rec = e.do(t, http.MethodPost, base+"/next", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	//2: 商品
	rec = e.do(t, http.MethodGet, base+"/products?keyword=tea", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode[struct {
		Items []model.Product `json:"items"`
	}](t, rec)
	require.Len(t, products.Items, 1)

	rec = e.do(t, http.MethodPost, base+"/cart/items", map[string]any{"productNo": products.Items[0].No, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, base+"/cart/items", map[string]any{"productNo": "P0002", "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	w := decode[wizardBody](t, rec)
	require.Equal(t, 2, w.ItemCount)

	var coffeeNo string
	for _, it := range w.Items {
		if it.ProductNo == "P0002" {
			coffeeNo = it.No
		}
	}
	require.NotEmpty(t, coffeeNo)

	//0にすると消える
	rec = e.do(t, http.MethodPatch, base+"/cart/items/"+coffeeNo, map[string]any{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	w = decode[wizardBody](t, rec)
	assert.Equal(t, 1, w.ItemCount)
	assert.True(t, w.Total.Equal(model.MoneyFromInt(100)), w.Total.String())

	rec = e.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ConfirmingOrder", decode[wizardBody](t, rec).StepName)

	//3: 送信
	rec = e.do(t, http.MethodPost, base+"/submit", map[string]string{"shipAddress": "123 Main St", "remark": "e2e"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[struct {
		OrderNo       string      `json:"orderNo"`
		ItemCount     int         `json:"itemCount"`
		Total         model.Money `json:"total"`
		RefreshOrders bool        `json:"refreshOrders"`
		Wizard        wizardBody  `json:"wizard"`
	}](t, rec)
	require.NotEmpty(t, out.OrderNo)
	assert.Equal(t, 1, out.ItemCount)
	assert.True(t, out.Total.Equal(model.MoneyFromInt(100)))
	assert.True(t, out.RefreshOrders)
	assert.Equal(t, "SelectingUser", out.Wizard.StepName)

	//上流に注文と明細ができている
	resp, err := http.Get(e.upstream + "/order/" + out.OrderNo)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	var detail struct {
		Data devapi.OrderDetail `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	assert.Equal(t, "123 Main St", detail.Data.Order.ShipAddress)
	assert.Equal(t, model.OrderStatusOrdered, detail.Data.Order.OrderStatus)
	require.Len(t, detail.Data.Items, 1)
	assert.Equal(t, int64(2), detail.Data.Items[0].Quantity)
	assert.Equal(t, model.OrderItemStatusPending, detail.Data.Items[0].Status)

	//監査ログ
	rec = e.do(t, http.MethodGet, "/admin/audit-logs?order_no="+out.OrderNo, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	logs := decode[struct {
		Items []model.AuditLog `json:"items"`
	}](t, rec)
	require.Len(t, logs.Items, 1)
	assert.Equal(t, model.AuditActionCreateOrder, logs.Items[0].Action)
	assert.Equal(t, int64(1), logs.Items[0].ActorUserID)

	//送信後は同じウィザードで再送できない
	rec = e.do(t, http.MethodPost, base+"/submit", map[string]string{"shipAddress": "123 Main St"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
