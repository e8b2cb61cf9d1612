package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"qrcode-platform/internal/model"
	"qrcode-platform/internal/registry"
	"qrcode-platform/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func int64Ptr(v int64) *int64 { return &v }

func TestResolveWindow(t *testing.T) {
	now := time.Date(2026, 10, 17, 15, 30, 0, 0, time.UTC)
	day := int64(secondsPerDay)

	tests := []struct {
		name     string
		period   string
		from, to *int64
		want     Window
		wantErr  bool
	}{
		{"默认7天", "", nil, nil, Window{now.Unix() - 7*day, now.Unix()}, false},
		{"7d", "7d", nil, nil, Window{now.Unix() - 7*day, now.Unix()}, false},
		{"30d", "30d", nil, nil, Window{now.Unix() - 30*day, now.Unix()}, false},
		{"90d", "90d", nil, nil, Window{now.Unix() - 90*day, now.Unix()}, false},
		{"未知周期按7天", "1y", nil, nil, Window{now.Unix() - 7*day, now.Unix()}, false},
		{"custom", "custom", int64Ptr(100), int64Ptr(200), Window{100, 200}, false},
		{"仅时间戳", "", int64Ptr(100), int64Ptr(200), Window{100, 200}, false},
		{"预设周期忽略时间戳", "30d", int64Ptr(100), int64Ptr(200), Window{now.Unix() - 30*day, now.Unix()}, false},
		{"custom缺少to按7天", "custom", int64Ptr(100), nil, Window{now.Unix() - 7*day, now.Unix()}, false},
		{"custom无时间戳按7天", "custom", nil, nil, Window{now.Unix() - 7*day, now.Unix()}, false},
		{"from晚于to", "custom", int64Ptr(300), int64Ptr(200), Window{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveWindow(tt.period, tt.from, tt.to, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidWindow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fixture struct {
	db       *gorm.DB
	registry *registry.Registry
	svc      *Service
	seq      int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	reg := registry.New(db, nil, time.Minute, testutil.Logger(t))
	return &fixture{db: db, registry: reg, svc: NewService(db, reg, testutil.Logger(t))}
}

func (f *fixture) code(t *testing.T, id, store, name string) {
	t.Helper()
	code := &model.QRCode{ID: id, StoreHash: store, Name: name, Style: model.DefaultStyle()}
	code.SetDestination(model.HomepageDestination{}, "https://shop.example")
	require.NoError(t, f.registry.Create(context.Background(), code))
}

func (f *fixture) event(t *testing.T, id, store string, ts int64, device, country string) {
	t.Helper()
	f.seq++
	ev := &model.ScanEvent{
		ID:         fmt.Sprintf("ev-%04d", f.seq),
		QRCodeID:   id,
		StoreHash:  store,
		Timestamp:  ts,
		DeviceType: device,
		Browser:    "Chrome",
		OS:         "Android",
		Country:    country,
	}
	require.NoError(t, f.db.Create(ev).Error)
}

func TestOverview_EmptyWindow(t *testing.T) {
	f := newFixture(t)
	report, err := f.svc.Overview(context.Background(), "store1", Window{From: 0, To: 7 * secondsPerDay})
	require.NoError(t, err)

	assert.Zero(t, report.TotalScans)
	assert.Zero(t, report.AvgDailyScans)
	assert.Equal(t, NoData, report.TopDevice)
	assert.Equal(t, NoData, report.TopLocation)
	assert.Empty(t, report.Series)
	assert.NotNil(t, report.Series)
	assert.Empty(t, report.TopQRCodes)
	assert.Empty(t, report.DeviceBreakdown)
}

func TestOverview_Store(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 10, 1, 10, 0, 0, 0, time.Local).Unix()
	f.code(t, "a", "store1", "海报A")
	f.code(t, "b", "store1", "海报B")

	f.event(t, "a", "store1", base, "mobile", "US")
	f.event(t, "b", "store1", base+60, "desktop", "DE")
	f.event(t, "b", "store1", base+secondsPerDay, "mobile", "DE")
	f.event(t, "gone", "store1", base+secondsPerDay+60, "desktop", "")
	// 窗口外与其他店铺的事件不计入
	f.event(t, "a", "store1", base-secondsPerDay, "tablet", "FR")
	f.event(t, "x", "store2", base, "tablet", "FR")

	w := Window{From: base, To: base + 4*secondsPerDay}
	report, err := f.svc.Overview(context.Background(), "store1", w)
	require.NoError(t, err)

	assert.EqualValues(t, 4, report.TotalScans)
	assert.Equal(t, 1.0, report.AvgDailyScans)
	// mobile 与 desktop 同为 2，先出现的 mobile 胜出
	assert.Equal(t, "mobile", report.TopDevice)
	assert.Equal(t, "DE", report.TopLocation)
	assert.Equal(t, map[string]int64{"mobile": 2, "desktop": 2}, report.DeviceBreakdown)
	assert.Equal(t, []SeriesPoint{{Date: "2026-10-01", Count: 2}, {Date: "2026-10-02", Count: 2}}, report.Series)
	assert.Equal(t, []CodeCount{
		{QRCodeID: "b", Name: "海报B", Count: 2},
		{QRCodeID: "a", Name: "海报A", Count: 1},
		{QRCodeID: "gone", Name: "Unknown QR Code (gone)", Count: 1},
	}, report.TopQRCodes)
}

func TestOverview_Idempotent(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 10, 1, 10, 0, 0, 0, time.Local).Unix()
	f.code(t, "a", "store1", "A")
	f.event(t, "a", "store1", base, "mobile", "US")
	f.event(t, "a", "store1", base+10, "tablet", "")

	w := Window{From: base - secondsPerDay, To: base + 2*secondsPerDay}
	first, err := f.svc.Overview(context.Background(), "store1", w)
	require.NoError(t, err)
	second, err := f.svc.Overview(context.Background(), "store1", w)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOverview_ZeroLengthWindow(t *testing.T) {
	f := newFixture(t)
	f.event(t, "a", "store1", 1000, "mobile", "")

	report, err := f.svc.Overview(context.Background(), "store1", Window{From: 1000, To: 1000})
	require.NoError(t, err)
	assert.EqualValues(t, 1, report.TotalScans)
	assert.Zero(t, report.AvgDailyScans)
}

func TestOverviewForCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 10, 0, 0, 0, time.Local).Unix()
	f.code(t, "a", "store1", "海报A")
	f.code(t, "b", "store1", "海报B")
	f.event(t, "a", "store1", base, "mobile", "")
	f.event(t, "a", "store1", base+5, "tablet", "JP")
	f.event(t, "b", "store1", base+6, "desktop", "")

	w := Window{From: base, To: base + 7*secondsPerDay}
	report, err := f.svc.OverviewForCode(ctx, "a", w)
	require.NoError(t, err)
	assert.EqualValues(t, 2, report.TotalScans)
	assert.Equal(t, 0.3, report.AvgDailyScans)
	assert.Equal(t, "mobile", report.TopDevice)
	assert.Equal(t, "JP", report.TopLocation)
	assert.Equal(t, []CodeCount{{QRCodeID: "a", Name: "海报A", Count: 2}}, report.TopQRCodes)

	report, err = f.svc.OverviewForCode(ctx, "b", Window{From: 0, To: 10})
	require.NoError(t, err)
	assert.Zero(t, report.TotalScans)
	assert.Equal(t, NoData, report.TopDevice)
	assert.Equal(t, []CodeCount{{QRCodeID: "b", Name: "海报B", Count: 0}}, report.TopQRCodes)

	_, err = f.svc.OverviewForCode(ctx, "missing", w)
	assert.ErrorIs(t, err, registry.ErrNotFound)
}
