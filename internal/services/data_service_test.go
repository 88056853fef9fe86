package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderlens/internal/config"
	"orderlens/internal/dataset"
	"orderlens/internal/exporter"
)

const testCSV = "주문번호,상품코드,상품명,주문일,결제금액(상품별),공급가,주문자연락처,주문경로,주소,주문수량\n" +
	"O1,P1,감귤 3kg 대과,2026-01-05,30000,18000,010-1111-2222,스마트스토어,서울특별시 강남구,2\n" +
	"O2,P2,한라봉 2kg,2026-02-01,20000,12000,010-3333-4444,자사몰,제주특별자치도 제주시,1\n"

func newTestService(t *testing.T) (*DataService, string) {
	t.Helper()

	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "orders.csv"), []byte(testCSV), 0o644))

	cfg := config.Default()
	cfg.Pipeline.DataDir = dataDir
	cfg.Export.OutputDir = t.TempDir()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDataService(cfg, logger, nil), dataDir
}

func TestDatasetCachesUntilSourceChanges(t *testing.T) {
	service, dataDir := newTestService(t)
	ctx := context.Background()

	first, err := service.Dataset(ctx)
	require.NoError(t, err)
	assert.Len(t, first.Lines, 2)

	// No source change: the same derivation is served.
	second, err := service.Dataset(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)

	// A new file changes the signature and triggers a rebuild.
	extra := "주문번호,상품코드,상품명,주문일,결제금액(상품별)\nO3,P3,천혜향 5kg,2026-02-10,25000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "zz_more.csv"), []byte(extra), 0o644))

	third, err := service.Dataset(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Len(t, third.Lines, 3)
	assert.NotEqual(t, first.Signature, third.Signature)
}

func TestQueryRederivesOverSubset(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	full, err := service.Query(ctx, dataset.Filter{})
	require.NoError(t, err)
	assert.Len(t, full.Lines, 2)

	view, err := service.Query(ctx, dataset.Filter{Channels: []string{"자사몰"}})
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "O2", view.Lines[0].OrderID)
	require.Len(t, view.Profiles, 1)
	assert.Equal(t, "010-3333-4444", view.Profiles[0].CustomerID)

	// The cached full dataset is untouched by filtered queries.
	again, err := service.Dataset(ctx)
	require.NoError(t, err)
	assert.Len(t, again.Lines, 2)
	assert.Len(t, again.Profiles, 2)
}

func TestExportWritesDatedFile(t *testing.T) {
	service, _ := newTestService(t)

	path, err := service.Export(context.Background(), exporter.EncodingEUCKR, dataset.Filter{})
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "sales_dashboard_final_")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestExportHonorsFilter(t *testing.T) {
	service, _ := newTestService(t)

	path, err := service.Export(context.Background(), exporter.EncodingUTF8BOM,
		dataset.Filter{Channels: []string{"자사몰"}})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(raw)
	assert.Contains(t, content, "한라봉 2kg")
	assert.NotContains(t, content, "감귤 3kg 대과")
}

func TestCustomersAndProducts(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	profiles, err := service.Customers(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 2)

	products, err := service.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestRefreshRebuildsWithoutSourceChange(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	first, err := service.Dataset(ctx)
	require.NoError(t, err)

	refreshed, err := service.Refresh(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, refreshed)
	assert.Equal(t, first.Signature, refreshed.Signature)
	assert.True(t, refreshed.Capabilities.HasCustomerID)
}
