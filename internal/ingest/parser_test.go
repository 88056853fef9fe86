package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullHeader = "주문번호,상품코드,상품명,주문일,입금일,배송준비 처리일,주문자연락처,주문경로,셀러명,회원구분,결제금액(상품별),공급가,주문취소 금액(상품별),쿠폰 사용금액(통합),포인트 사용금액(통합),주소,주문수량"

func TestParseCSVFullSchema(t *testing.T) {
	content := fullHeader + "\n" +
		"20260105-001,P100,감귤 3kg 대과,2026-01-05 14:30:00,2026-01-05 14:35:00,2026-01-06 09:00:00,010-1234-5678,스마트스토어,제주셀러,일반회원,\"30,000\",\"18,000\",0,\"2,000\",\"1,000\",서울특별시 강남구 테헤란로 123,2\n"

	lines, caps, err := ParseCSV(content, "orders.csv")
	require.NoError(t, err)
	require.Len(t, lines, 1)

	line := lines[0]
	assert.Equal(t, "20260105-001", line.OrderID)
	assert.Equal(t, "P100", line.ProductCode)
	assert.Equal(t, "감귤 3kg 대과", line.ProductName)
	assert.Equal(t, "010-1234-5678", line.CustomerID)
	assert.Equal(t, "스마트스토어", line.Channel)
	assert.Equal(t, "제주셀러", line.Seller)
	assert.Equal(t, "일반회원", line.MemberType)
	assert.Equal(t, time.Date(2026, 1, 5, 14, 30, 0, 0, time.UTC), line.OrderedAt)
	assert.Equal(t, 30000.0, line.PaidAmount)
	assert.Equal(t, 18000.0, line.SupplyCost)
	assert.Equal(t, 2000.0, line.CouponAmount)
	assert.Equal(t, 1000.0, line.PointAmount)
	assert.Equal(t, "서울특별시 강남구 테헤란로 123", line.Address)
	assert.Equal(t, int64(2), line.Quantity)
	assert.Equal(t, "orders.csv", line.SourceFile)

	assert.True(t, caps.HasCustomerID)
	assert.True(t, caps.HasCoupon)
	assert.True(t, caps.HasPoints)
	assert.True(t, caps.HasReadyDate)
}

func TestParseCSVMinimalSchema(t *testing.T) {
	content := "주문번호,상품코드,상품명,주문일,결제금액(상품별)\n" +
		"O1,P1,한라봉 2kg,2026-02-01,15000\n"

	lines, caps, err := ParseCSV(content, "minimal.csv")
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.False(t, caps.HasCustomerID)
	assert.False(t, caps.HasCoupon)
	assert.False(t, caps.HasPoints)
	assert.False(t, caps.HasReadyDate)

	assert.Empty(t, lines[0].CustomerID)
	assert.Zero(t, lines[0].CouponAmount)
	assert.True(t, lines[0].ReadyAt.IsZero())
}

func TestParseCSVMissingRequiredColumns(t *testing.T) {
	content := "상품명,결제금액(상품별)\n감귤,10000\n"

	_, _, err := ParseCSV(content, "bad.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required columns not found")
}

func TestParseCSVBOMHeader(t *testing.T) {
	content := "\uFEFF" + "주문번호,상품코드,상품명,주문일,결제금액(상품별)\nO1,P1,감귤,2026-01-05,10000\n"

	lines, _, err := ParseCSV(content, "bom.csv")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "O1", lines[0].OrderID)
}

func TestParseCSVSkipsBlankKeyRows(t *testing.T) {
	content := "주문번호,상품코드,상품명,주문일,결제금액(상품별)\n" +
		"O1,P1,감귤,2026-01-05,10000\n" +
		",,,,\n" +
		"O2,P2,한라봉,2026-01-06,12000\n"

	lines, _, err := ParseCSV(content, "gaps.csv")
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestParseCSVShortRows(t *testing.T) {
	// Rows may be shorter than the header; absent cells read as empty.
	content := "주문번호,상품코드,상품명,주문일,결제금액(상품별)\n" +
		"O1,P1\n"

	lines, _, err := ParseCSV(content, "short.csv")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "O1", lines[0].OrderID)
	assert.Empty(t, lines[0].ProductName)
	assert.True(t, lines[0].OrderedAt.IsZero())
	assert.Zero(t, lines[0].PaidAmount)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{name: "datetime", value: "2026-01-05 14:30:00", want: time.Date(2026, 1, 5, 14, 30, 0, 0, time.UTC)},
		{name: "date only", value: "2026-01-05", want: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
		{name: "slash separated", value: "2026/01/05", want: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
		{name: "dot separated", value: "2026.01.05", want: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
		{name: "empty", value: "", want: time.Time{}},
		{name: "garbage coerces to zero", value: "next tuesday", want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDate(tt.value))
		})
	}
}

func TestParseAmount(t *testing.T) {
	assert.Equal(t, 30000.0, parseAmount("30,000"))
	assert.Equal(t, 1234.5, parseAmount("1234.5"))
	assert.Equal(t, 0.0, parseAmount(""))
	assert.Equal(t, 0.0, parseAmount("n/a"))
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, int64(3), parseQuantity("3"))
	assert.Equal(t, int64(3), parseQuantity("3.0"))
	assert.Equal(t, int64(1200), parseQuantity("1,200"))
	assert.Equal(t, int64(0), parseQuantity(""))
	assert.Equal(t, int64(0), parseQuantity("many"))
}
