package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"qrcode-platform/internal/analytics"
	"qrcode-platform/internal/config"
	"qrcode-platform/internal/middleware"
	"qrcode-platform/internal/model"
	"qrcode-platform/internal/registry"
	"qrcode-platform/internal/shortcode"
	"qrcode-platform/internal/testutil"
	"qrcode-platform/internal/tracking"
	auth "qrcode-platform/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	invalidURL  = "https://app.example.com/error/invalid-qr"
	inactiveURL = "https://app.example.com/error/inactive-qr"
	iPhoneUA    = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
)

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	registry *registry.Registry
	tracker  *tracking.Tracker
}

// setupTest 为集成测试初始化一个干净的环境：内存数据库、不连接 Redis、已启动的追踪器
func setupTest(t *testing.T) *testEnv {
	t.Helper()
	return setupTestWith(t, Middlewares{})
}

func setupTestWith(t *testing.T, mw Middlewares) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	logger := testutil.Logger(t)
	reg := registry.New(db, nil, time.Minute, logger)

	trackingCfg := config.Tracking{
		Workers:            2,
		QueueSize:          64,
		TaskTimeoutSeconds: 5,
		InvalidQRURL:       invalidURL,
		InactiveQRURL:      inactiveURL,
		CountryHeader:      "CF-IPCountry",
	}
	tracker := tracking.NewTracker(db, tracking.NewAggregator(db, reg, logger), trackingCfg, logger)
	tracker.Start()
	t.Cleanup(tracker.Stop)

	// 生成器不启动后台填充，GetCode 走同步生成
	generator := shortcode.NewGenerator(reg, logger)

	router := gin.New()
	RegisterRoutes(router, Handlers{
		Health:    NewHealthHandler(db, nil),
		Track:     NewTrackHandler(reg, tracker, trackingCfg, logger),
		ScanStats: NewScanStatsHandler(tracking.NewStats(db), logger),
		Analytics: NewAnalyticsHandler(analytics.NewService(db, reg, logger), reg, logger),
		QRCode:    NewQRCodeHandler(reg, generator, "http://qr.test/", logger),
		Store:     NewStoreHandler(reg, logger),
	}, mw)

	return &testEnv{router: router, db: db, registry: reg, tracker: tracker}
}

func (e *testEnv) do(method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seed(t *testing.T, id, target string, status model.QRStatus) {
	t.Helper()
	code := &model.QRCode{ID: id, StoreHash: "store1", Name: "海报 " + id, Style: model.DefaultStyle(), Status: status}
	code.SetDestination(model.CustomDestination{Link: target}, "")
	require.NoError(t, e.registry.Create(context.Background(), code))
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestTrack_RedirectOutcomes(t *testing.T) {
	env := setupTest(t)
	env.seed(t, "live", "https://shop.example/p/42", model.QRStatusActive)
	env.seed(t, "paused", "https://shop.example/p/43", model.QRStatusInactive)
	env.seed(t, "gone", "https://shop.example/p/44", model.QRStatusDeleted)

	tests := []struct {
		name     string
		id       string
		location string
	}{
		{"有效二维码跳转到目标", "live", "https://shop.example/p/42"},
		{"停用二维码跳转到停用页", "paused", inactiveURL},
		{"已删除二维码跳转到停用页", "gone", inactiveURL},
		{"不存在的二维码跳转到无效页", "missing", invalidURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodGet, "/track/"+tt.id, nil, nil)
			assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))
		})
	}

	env.tracker.Stop()
	var events []model.ScanEvent
	require.NoError(t, env.db.Find(&events).Error)
	require.Len(t, events, 1, "只有成功跳转才记录扫码")
	assert.Equal(t, "live", events[0].QRCodeID)
}

func TestTrack_RedirectDoesNotDependOnPersistence(t *testing.T) {
	env := setupTest(t)
	env.seed(t, "live", "https://shop.example/p/42", model.QRStatusActive)

	// 追踪器停止后事件会被丢弃，跳转不受影响
	env.tracker.Stop()
	w := env.do(http.MethodGet, "/track/live", nil, nil)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "https://shop.example/p/42", w.Header().Get("Location"))

	var count int64
	require.NoError(t, env.db.Model(&model.ScanEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTrack_ScenarioThreeMobileScans(t *testing.T) {
	env := setupTest(t)

	w := env.do(http.MethodPost, "/qr-codes/custom", map[string]any{
		"store_hash": "store1",
		"name":       "商品 42",
		"url":        "https://shop.example/p/42",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[QRCodeResponse](t, w)
	id := created.QRCode.ID
	assert.Equal(t, "http://qr.test/track/"+id, created.TrackingURL)

	for i := 0; i < 3; i++ {
		w := env.do(http.MethodGet, "/track/"+id, nil, map[string]string{"User-Agent": iPhoneUA})
		require.Equal(t, http.StatusTemporaryRedirect, w.Code)
		assert.Equal(t, "https://shop.example/p/42", w.Header().Get("Location"))
	}
	env.tracker.Stop()
	today := tracking.DayOf(time.Now().Unix())

	w = env.do(http.MethodGet, "/scan-stats/"+id, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ScanStatsResponse](t, w)
	assert.EqualValues(t, 3, resp.Stats.TotalScans)
	assert.Equal(t, map[string]int64{today: 3}, resp.Stats.DailyScans)
	assert.Equal(t, map[string]int64{"mobile": 3}, resp.Stats.DeviceBreakdown)
	assert.Equal(t, "store1", resp.Stats.StoreHash)

	code, err := env.registry.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.EqualValues(t, 3, code.ScanCount)
}

func TestTrack_MalformedUserAgentStillRecorded(t *testing.T) {
	env := setupTest(t)
	env.seed(t, "live", "https://shop.example/p/42", model.QRStatusActive)

	w := env.do(http.MethodGet, "/track/live", nil, map[string]string{
		"User-Agent":      "}}}not a user agent{{{",
		"X-Forwarded-For": "203.0.113.9, 10.0.0.1",
		"CF-IPCountry":    "us",
	})
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	env.tracker.Stop()

	var ev model.ScanEvent
	require.NoError(t, env.db.Where("qr_code_id = ?", "live").First(&ev).Error)
	assert.Equal(t, "unknown", ev.DeviceType)
	assert.Equal(t, "unknown", ev.Browser)
	assert.Equal(t, "unknown", ev.OS)
	assert.Empty(t, ev.Referrer)
	assert.Equal(t, "203.0.113.9", ev.IPAddress)
	assert.Equal(t, "US", ev.Country)
	assert.NotEmpty(t, ev.SessionID)
}

func TestTrack_UnknownCountryHeaderIgnored(t *testing.T) {
	env := setupTest(t)
	env.seed(t, "live", "https://shop.example/p/42", model.QRStatusActive)

	env.do(http.MethodGet, "/track/live", nil, map[string]string{"CF-IPCountry": "XX", "Referer": "https://social.example/post"})
	env.tracker.Stop()

	var ev model.ScanEvent
	require.NoError(t, env.db.Where("qr_code_id = ?", "live").First(&ev).Error)
	assert.Empty(t, ev.Country)
	assert.Equal(t, "https://social.example/post", ev.Referrer)
	assert.NotEmpty(t, ev.IPAddress)
}

func TestScanStats_Get(t *testing.T) {
	env := setupTest(t)

	w := env.do(http.MethodGet, "/scan-stats/nothing", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"stats":{
		"qr_code_id":"nothing","store_hash":"unknown","total_scans":0,"conversions":0,"last_updated":0,
		"daily_scans":{},"device_breakdown":{},"location_breakdown":{},"browser_breakdown":{}
	}}`, w.Body.String())
}

func TestScanStats_List(t *testing.T) {
	env := setupTest(t)
	env.seed(t, "a", "https://shop.example/a", model.QRStatusActive)
	env.seed(t, "b", "https://shop.example/b", model.QRStatusActive)
	for _, id := range []string{"a", "b", "b"} {
		env.do(http.MethodGet, "/track/"+id, nil, nil)
	}
	env.tracker.Stop()

	w := env.do(http.MethodGet, "/scan-stats?store_hash=store1&time_period=7days", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ListScanStatsResponse](t, w)
	assert.EqualValues(t, 2, resp.Count)
	require.Len(t, resp.Stats, 2)
	assert.Equal(t, "b", resp.Stats[0].QRCodeID)
	assert.EqualValues(t, 2, resp.Stats[0].TotalScans)

	w = env.do(http.MethodGet, "/scan-stats?store_hash=store1&limit=1&offset=1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[ListScanStatsResponse](t, w)
	assert.EqualValues(t, 2, resp.Count)
	require.Len(t, resp.Stats, 1)
	assert.Equal(t, "a", resp.Stats[0].QRCodeID)

	w = env.do(http.MethodGet, "/scan-stats?store_hash=empty", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"stats":[],"count":0}`, w.Body.String())

	for _, path := range []string{"/scan-stats", "/scan-stats?store_hash=s&limit=abc", "/scan-stats?store_hash=s&limit=1000", "/scan-stats?store_hash=s&offset=-1"} {
		assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, path, nil, nil).Code, path)
	}
}

func TestAnalytics_EmptyAndIdempotent(t *testing.T) {
	env := setupTest(t)

	w := env.do(http.MethodGet, "/analytics/overview?store_hash=store1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"total_scans":0,"avg_daily_scans":0,"top_device":"No data","top_location":"No data",
		"series":[],"top_qr_codes":[],"device_breakdown":{}
	}`, w.Body.String())

	env.seed(t, "a", "https://shop.example/a", model.QRStatusActive)
	env.do(http.MethodGet, "/track/a", nil, map[string]string{"User-Agent": iPhoneUA, "CF-IPCountry": "DE"})
	env.tracker.Stop()

	now := time.Now().Unix()
	path := "/analytics/overview?store_hash=store1&period=custom&from_timestamp=" + itoa(now-86400) + "&to_timestamp=" + itoa(now+86400)
	first := env.do(http.MethodGet, path, nil, nil)
	second := env.do(http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())

	report := decode[analytics.Report](t, first)
	assert.EqualValues(t, 1, report.TotalScans)
	assert.Equal(t, "mobile", report.TopDevice)
	assert.Equal(t, "DE", report.TopLocation)
	assert.Equal(t, []analytics.CodeCount{{QRCodeID: "a", Name: "海报 a", Count: 1}}, report.TopQRCodes)
}

func TestAnalytics_Errors(t *testing.T) {
	env := setupTest(t)
	env.seed(t, "a", "https://shop.example/a", model.QRStatusActive)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/analytics/overview", nil, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/analytics/overview?store_hash=s&period=custom", nil, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/analytics/overview?store_hash=s&from_timestamp=20&to_timestamp=10", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/analytics/qrcode/missing", nil, nil).Code)

	w := env.do(http.MethodGet, "/analytics/qrcode/a?period=30d", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[analytics.Report](t, w)
	assert.Equal(t, []analytics.CodeCount{{QRCodeID: "a", Name: "海报 a", Count: 0}}, report.TopQRCodes)
}

func TestQRCode_CreateVariants(t *testing.T) {
	env := setupTest(t)

	w := env.do(http.MethodPut, "/stores/abc", map[string]any{"domain": "shop.example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	tests := []struct {
		name   string
		path   string
		body   map[string]any
		target string
		typ    model.QRType
	}{
		{"商品", "/qr-codes/product", map[string]any{"store_hash": "abc", "name": "p", "product_id": 42}, "https://shop.example.com/products.php?product_id=42", model.QRTypeProduct},
		{"加购", "/qr-codes/product", map[string]any{"store_hash": "abc", "name": "p", "product_id": 42, "add_to_cart": true}, "https://shop.example.com/cart.php?action=add&product_id=42", model.QRTypeCart},
		{"分类", "/qr-codes/category", map[string]any{"store_hash": "abc", "name": "c", "category_id": 7}, "https://shop.example.com/categories.php?category_id=7", model.QRTypeCategory},
		{"首页", "/qr-codes/homepage", map[string]any{"store_hash": "abc", "name": "h"}, "https://shop.example.com", model.QRTypeHomepage},
		{"优惠券", "/qr-codes/coupon", map[string]any{"store_hash": "abc", "name": "k", "coupon_code": "WELCOME10"}, "https://shop.example.com/cart.php?coupon=WELCOME10", model.QRTypeCoupon},
		{"未登记店铺", "/qr-codes/homepage", map[string]any{"store_hash": "zzz", "name": "h"}, "https://store-zzz.mybigcommerce.com", model.QRTypeHomepage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, tt.path, tt.body, nil)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
			resp := decode[QRCodeResponse](t, w)
			assert.Equal(t, tt.target, resp.QRCode.TargetURL)
			assert.Equal(t, tt.typ, resp.QRCode.Type)
			assert.True(t, resp.QRCode.Active)
			assert.Len(t, resp.QRCode.ID, shortcode.CodeLength)
		})
	}

	w = env.do(http.MethodPost, "/qr-codes/test", nil, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[QRCodeResponse](t, w)
	assert.Equal(t, "https://example.com", resp.QRCode.TargetURL)
	assert.Equal(t, model.QRTypeTest, resp.QRCode.Type)
	assert.Equal(t, "test-store", resp.QRCode.StoreHash)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/qr-codes/product", map[string]any{"store_hash": "abc", "name": "p"}, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/qr-codes/custom", map[string]any{"store_hash": "abc", "name": "x", "url": "ftp://files.example"}, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/qr-codes/test?url=not-a-url", nil, nil).Code)
}

func TestQRCode_Lifecycle(t *testing.T) {
	env := setupTest(t)
	env.seed(t, "a", "https://shop.example/a", model.QRStatusActive)
	env.seed(t, "b", "https://shop.example/b", model.QRStatusActive)

	w := env.do(http.MethodGet, "/qr-codes/a", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://qr.test/track/a", decode[QRCodeResponse](t, w).TrackingURL)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/qr-codes/missing", nil, nil).Code)

	w = env.do(http.MethodPut, "/qr-codes/a", map[string]any{"name": "新名称", "active": false}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode[QRCodeView](t, w)
	assert.Equal(t, "新名称", view.Name)
	assert.Equal(t, model.QRStatusInactive, view.Status)
	assert.False(t, view.Active)
	// 缓存失效后跳转立即生效
	assert.Equal(t, inactiveURL, env.do(http.MethodGet, "/track/a", nil, nil).Header().Get("Location"))

	w = env.do(http.MethodGet, "/qr-codes/list/store1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[ListQRCodesResponse](t, w)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "b", list.QRCodes[0].ID)

	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/qr-codes/b", nil, nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/qr-codes/b?hard_delete=true", nil, nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/qr-codes/b", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/qr-codes/missing", nil, nil).Code)

	w = env.do(http.MethodPut, "/qr-codes/b", map[string]any{"active": true}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// 逻辑删除：记录仍在
	code, err := env.registry.FindByID(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, model.QRStatusDeleted, code.Status)
}

func TestHealthCheck(t *testing.T) {
	env := setupTest(t)
	w := env.do(http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "disabled", body["cache"])
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func TestTrack_NotRateLimited(t *testing.T) {
	env := setupTestWith(t, Middlewares{
		RateLimit: middleware.RateLimit(&config.Limit{Enabled: true, Requests: 1, Burst: 1}),
	})
	env.seed(t, "a", "https://shop.example/a", model.QRStatusActive)

	// 没有配置任何跳过路径，扫码跳转依然不受限流影响
	for i := 0; i < 5; i++ {
		w := env.do(http.MethodGet, "/track/a", nil, map[string]string{"User-Agent": iPhoneUA})
		require.Equal(t, http.StatusTemporaryRedirect, w.Code)
		assert.Equal(t, "https://shop.example/a", w.Header().Get("Location"))
	}
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", nil, nil).Code)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/scan-stats?store_hash=store1", nil, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, env.do(http.MethodGet, "/scan-stats?store_hash=store1", nil, nil).Code)
}

type authEnv struct {
	*testEnv
	tokens *auth.TokenManager
}

func setupAuthTest(t *testing.T) *authEnv {
	t.Helper()
	tokens := auth.NewManager("test-secret", "qrcode-test", 1)
	env := setupTestWith(t, Middlewares{
		Auth:  middleware.AuthMiddleware(tokens),
		Admin: middleware.AdminMiddleware(),
	})
	return &authEnv{testEnv: env, tokens: tokens}
}

func (e *authEnv) bearer(t *testing.T, role, storeHash string) map[string]string {
	t.Helper()
	token, err := e.tokens.GenerateToken(1, "user-"+role, role, storeHash)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestDashboard_RequiresToken(t *testing.T) {
	env := setupAuthTest(t)
	env.seed(t, "a", "https://shop.example/a", model.QRStatusActive)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/scan-stats?store_hash=store1", nil, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/qr-codes/a", nil, nil).Code)
	// 扫码跳转始终公开
	assert.Equal(t, http.StatusTemporaryRedirect, env.do(http.MethodGet, "/track/a", nil, nil).Code)
}

func TestDashboard_MerchantLimitedToOwnStore(t *testing.T) {
	env := setupAuthTest(t)
	env.seed(t, "a", "https://shop.example/a", model.QRStatusActive)
	require.NoError(t, env.db.Create(model.EmptyScanStats("a", "store1")).Error)

	own := env.bearer(t, model.RoleMerchant, "store1")
	other := env.bearer(t, model.RoleMerchant, "store2")

	reads := []string{
		"/scan-stats?store_hash=store1",
		"/scan-stats/a",
		"/analytics/overview?store_hash=store1",
		"/analytics/qrcode/a",
		"/qr-codes/a",
		"/qr-codes/list/store1",
	}
	for _, path := range reads {
		assert.Equal(t, http.StatusOK, env.do(http.MethodGet, path, nil, own).Code, path)
		assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, path, nil, other).Code, path)
	}

	create := map[string]any{"store_hash": "store1", "name": "首页"}
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/qr-codes/homepage", create, other).Code)
	assert.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/qr-codes/homepage", create, own).Code)

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPut, "/qr-codes/a", map[string]any{"active": false}, other).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodDelete, "/qr-codes/a?hard_delete=true", nil, other).Code)
	code, err := env.registry.FindByID(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, model.QRStatusActive, code.Status)

	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/qr-codes/a", nil, own).Code)

	// 管理员不受店铺限制
	admin := env.bearer(t, model.RoleAdmin, "")
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/scan-stats?store_hash=store2", nil, admin).Code)
}

func TestDashboard_AdminOnlyRoutes(t *testing.T) {
	env := setupAuthTest(t)
	merchant := env.bearer(t, model.RoleMerchant, "store1")
	admin := env.bearer(t, model.RoleAdmin, "")
	store := map[string]any{"domain": "shop.example"}

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/qr-codes/test", nil, merchant).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPut, "/stores/store1", store, merchant).Code)

	assert.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/qr-codes/test", nil, admin).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodPut, "/stores/store1", store, admin).Code)
}

func TestRegister_DuplicateKeyTranslated(t *testing.T) {
	db := testutil.NewDB(t)
	first := model.User{Username: "merchant", Email: "m@example.com", Role: model.RoleMerchant, IsActive: true, PasswordHash: "x"}
	require.NoError(t, db.Create(&first).Error)

	dup := model.User{Username: "merchant", Email: "other@example.com", Role: model.RoleMerchant, IsActive: true, PasswordHash: "x"}
	assert.ErrorIs(t, db.Create(&dup).Error, gorm.ErrDuplicatedKey)
}

func TestQRCode_ListPaged(t *testing.T) {
	env := setupTest(t)
	env.seed(t, "a", "https://shop.example/a", model.QRStatusActive)
	env.seed(t, "b", "https://shop.example/b", model.QRStatusActive)

	w := env.do(http.MethodGet, "/qr-codes/list/store1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[ListQRCodesResponse](t, w).Count)

	w = env.do(http.MethodGet, "/qr-codes/list/store1?limit=1&offset=1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[ListQRCodesResponse](t, w).QRCodes, 1)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/qr-codes/list/store1?limit=0", nil, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/qr-codes/list/store1?offset=-1", nil, nil).Code)
}
