package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	storehttp "github.com/iyhunko/hifi-storefront/internal/http"
	"github.com/iyhunko/hifi-storefront/internal/http/controller"
	"github.com/iyhunko/hifi-storefront/internal/http/middleware"
	"github.com/iyhunko/hifi-storefront/internal/kvstore"
	"github.com/iyhunko/hifi-storefront/internal/media"
	"github.com/iyhunko/hifi-storefront/internal/metrics"
	"github.com/iyhunko/hifi-storefront/internal/repository/kv"
	"github.com/iyhunko/hifi-storefront/internal/service"
	"github.com/iyhunko/hifi-storefront/internal/session"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct{}

func (stubAuthenticator) Authenticate(_ context.Context, email, password string) (string, error) {
	if email == "eve.holt@reqres.in" && password == "cityslicka" {
		return "QpwL5tke4Pnpja7X4", nil
	}
	return "", errors.New("user not found")
}

func newServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := kvstore.NewMemoryStore()
	repos := kv.New(store)
	gate := session.NewGate(store, stubAuthenticator{})
	catalog := service.NewCatalogService(repos.Products, repos.Orders, repos.Events)

	return storehttp.InitRouter(gin.New(), middleware.New(gate), storehttp.Controllers{
		General:  controller.New(),
		Sessions: controller.NewSessionController(gate),
		Products: controller.NewProductController(catalog),
		Orders:   controller.NewOrderController(catalog),
		Images:   controller.NewImageController(media.NewLocalPicker(t.TempDir())),
	})
}

func do(t *testing.T, server *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, server *gin.Engine) {
	t.Helper()
	w := do(t, server, http.MethodPost, "/session", `{"email":"eve.holt@reqres.in","password":"cityslicka"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestPing(t *testing.T) {
	w := do(t, newServer(t), http.MethodGet, "/ping", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestSessionLifecycle(t *testing.T) {
	server := newServer(t)

	w := do(t, server, http.MethodGet, "/session", "")
	assert.JSONEq(t, `{"active":false}`, w.Body.String())

	w = do(t, server, http.MethodGet, "/products", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, server, http.MethodPost, "/session", `{"email":"eve.holt@reqres.in","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"`+session.LoginFailedMessage+`"}`, w.Body.String())

	w = do(t, server, http.MethodPost, "/session", `{"email":"","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, server, http.MethodPost, "/session", `{"email":"eve.holt@reqres.in","password":"cityslicka"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"token":"QpwL5tke4Pnpja7X4"}`, w.Body.String())

	w = do(t, server, http.MethodGet, "/session", "")
	assert.JSONEq(t, `{"active":true}`, w.Body.String())

	w = do(t, server, http.MethodDelete, "/session", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, server, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginMetrics(t *testing.T) {
	server := newServer(t)
	failed := metrics.Logins.WithLabelValues("failed")
	succeeded := metrics.Logins.WithLabelValues("succeeded")
	failedBefore := testutil.ToFloat64(failed)
	succeededBefore := testutil.ToFloat64(succeeded)

	// blank credentials never reach the authenticator
	w := do(t, server, http.MethodPost, "/session", `{"email":" ","password":"x"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, failedBefore, testutil.ToFloat64(failed))

	w = do(t, server, http.MethodPost, "/session", `{"email":"eve.holt@reqres.in","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))

	login(t, server)
	assert.Equal(t, succeededBefore+1, testutil.ToFloat64(succeeded))
}

func TestCatalogEndpoints(t *testing.T) {
	server := newServer(t)
	login(t, server)

	// create
	w := do(t, server, http.MethodPost, "/products", `{"name":"Amp","price":100,"imageUri":"file://a"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var amp struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Price string `json:"price"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &amp))
	assert.Equal(t, "100", amp.Price)

	w = do(t, server, http.MethodPost, "/products", `{"name":"amp","price":"50","imageUri":"file://b"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, server, http.MethodPost, "/products", `{"name":"Speaker","price":"80"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"imageUri is required"}`, w.Body.String())

	w = do(t, server, http.MethodPost, "/products", `{"name":"Speaker","price":"80","imageUri":"file://s"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// list and search
	var page controller.ListProductsResponse
	w = do(t, server, http.MethodGet, "/products?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Amp", page.Products[0].Name)
	assert.Equal(t, 2, page.Total)
	require.NotEmpty(t, page.NextPageToken)

	w = do(t, server, http.MethodGet, "/products?limit=1&token="+page.NextPageToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	page = controller.ListProductsResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Speaker", page.Products[0].Name)
	assert.Equal(t, 2, page.Total)
	assert.Empty(t, page.NextPageToken)

	w = do(t, server, http.MethodGet, "/products?q=SPEAK", "")
	page = controller.ListProductsResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Products, 1)
	assert.Equal(t, 1, page.Total)

	w = do(t, server, http.MethodGet, "/products?q=turntable", "")
	assert.JSONEq(t, `{"products":[],"total":0}`, w.Body.String())

	w = do(t, server, http.MethodGet, "/products?token=garbage", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// orders
	w = do(t, server, http.MethodPost, "/orders", `{"productId":424242}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	body, err := json.Marshal(map[string]int64{"productId": amp.ID})
	require.NoError(t, err)
	w = do(t, server, http.MethodPost, "/orders", string(body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, server, http.MethodGet, "/orders", "")
	var orders struct {
		Orders []struct {
			ProductID int64 `json:"productId"`
		} `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders.Orders, 1)
	assert.Equal(t, amp.ID, orders.Orders[0].ProductID)

	// cascade
	w = do(t, server, http.MethodDelete, "/products/"+strconv.FormatInt(amp.ID, 10), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, server, http.MethodGet, "/products/"+strconv.FormatInt(amp.ID, 10), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, server, http.MethodGet, "/orders", "")
	assert.JSONEq(t, `{"orders":[]}`, w.Body.String())

	w = do(t, server, http.MethodDelete, "/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, server, http.MethodDelete, "/orders/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadImage(t *testing.T) {
	server := newServer(t)
	login(t, server)

	upload := func(content []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile("image", "amp.png")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/images", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)
		return w
	}

	png := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52}
	w := upload(png)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp["imageUri"], "file://"))

	w = upload([]byte("plain text"))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, "/images", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
