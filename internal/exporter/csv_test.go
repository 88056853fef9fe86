package exporter

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"orderlens/pkg/contracts/domain"
)

func sampleRow() domain.EnrichedOrderLine {
	r := domain.EnrichedOrderLine{}
	r.OrderID = "O1"
	r.ProductCode = "P1"
	r.ProductName = "감귤 3kg 대과"
	r.Address = "서울특별시 강남구"
	r.Quantity = 2
	r.PaidAmount = 30000
	r.OrderedAt = time.Date(2026, 1, 5, 14, 30, 0, 0, time.UTC)
	r.GrossProfit = 12000
	r.PriceBand = "10,000원대"
	r.WeightTag = "3kg"
	r.GradeTag = "대과"
	r.Region = "서울특별시"
	r.CustomerType = domain.CustomerTypeNew
	r.RFMSegment = domain.SegmentVIP
	r.ChurnRisk = domain.ChurnActive
	r.AnchorProduct = "감귤 3kg 대과"
	r.LeadTimeDays = -1
	r.PurchaseInterval = -1
	return r
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "sales_dashboard_final_20260831.csv", ExportFilename(now))
}

func TestWriteEnrichedEUCKRRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewCSVWriter(&buf, EncodingEUCKR)
	require.NoError(t, err)

	require.NoError(t, WriteEnriched(w, []domain.EnrichedOrderLine{sampleRow()}))

	// The raw bytes must not be UTF-8 Korean.
	assert.NotContains(t, buf.String(), "감귤")

	decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), buf.Bytes())
	require.NoError(t, err)
	content := string(decoded)

	assert.Contains(t, content, "감귤 3kg 대과")
	assert.Contains(t, content, "서울특별시 강남구")
	assert.Contains(t, content, "10,000원대")
	assert.True(t, strings.HasPrefix(content, "order_id,"))
}

func TestWriteEnrichedUTF8BOM(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewCSVWriter(&buf, EncodingUTF8BOM)
	require.NoError(t, err)

	require.NoError(t, WriteEnriched(w, []domain.EnrichedOrderLine{sampleRow()}))

	raw := buf.Bytes()
	assert.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(raw), "감귤 3kg 대과")
}

func TestNewCSVWriterUnknownEncoding(t *testing.T) {
	_, err := NewCSVWriter(&bytes.Buffer{}, Encoding("latin-1"))
	assert.Error(t, err)
}

func TestWriteProfiles(t *testing.T) {
	profiles := []domain.CustomerProfile{
		{
			CustomerID:    "010-1234-5678",
			RecencyDays:   3,
			Frequency:     4,
			Monetary:      120000,
			RScore:        5,
			FScore:        4,
			MScore:        4,
			RFMTotal:      13,
			Segment:       domain.SegmentVIP,
			FirstMonth:    "2025-11",
			ChurnRisk:     domain.ChurnActive,
			AnchorProduct: "감귤 3kg",
		},
	}

	var buf bytes.Buffer
	w, err := NewCSVWriter(&buf, EncodingUTF8BOM)
	require.NoError(t, err)
	require.NoError(t, WriteProfiles(w, profiles))

	content := buf.String()
	assert.Contains(t, content, "010-1234-5678")
	assert.Contains(t, content, domain.SegmentVIP)
	assert.Contains(t, content, "2025-11")
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	ds := &domain.Dataset{Lines: []domain.EnrichedOrderLine{sampleRow()}}
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	path, err := ExportToFile(ds, dir, EncodingEUCKR, now)
	require.NoError(t, err)
	assert.Contains(t, path, "sales_dashboard_final_20260831.csv")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExportToFileEmptyDataset(t *testing.T) {
	_, err := ExportToFile(&domain.Dataset{}, t.TempDir(), EncodingEUCKR, time.Now())
	assert.Error(t, err)
}
