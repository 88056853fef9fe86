package ingest

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"orderlens/pkg/contracts/domain"
)

// Source column headers. The schema is fixed by the shop admin export; only
// the columns marked optional may be absent.
const (
	colOrderID     = "주문번호"
	colProductCode = "상품코드"
	colProductName = "상품명"
	colOrderDate   = "주문일"
	colPayDate     = "입금일"
	colReadyDate   = "배송준비 처리일" // optional
	colCustomerID  = "주문자연락처"   // optional
	colChannel     = "주문경로"
	colSeller      = "셀러명"
	colMemberType  = "회원구분"
	colPaidAmount  = "결제금액(상품별)"
	colSupplyCost  = "공급가"
	colCancelled   = "주문취소 금액(상품별)"
	colCoupon      = "쿠폰 사용금액(통합)" // optional
	colPoints      = "포인트 사용금액(통합)" // optional
	colAddress     = "주소"
	colQuantity    = "주문수량"
)

// dateFormats are tried in order when parsing date columns. Values matching
// none of them coerce to the zero time rather than failing the row.
var dateFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"2006.01.02",
}

// columnMap holds the index of each schema column in a file's header row,
// -1 when the column is absent.
type columnMap struct {
	orderID     int
	productCode int
	productName int
	orderDate   int
	payDate     int
	readyDate   int
	customerID  int
	channel     int
	seller      int
	memberType  int
	paidAmount  int
	supplyCost  int
	cancelled   int
	coupon      int
	points      int
	address     int
	quantity    int
}

// mapColumns resolves header names to column indices. An error means the
// file does not carry the required schema and should be skipped.
func mapColumns(header []string) (columnMap, error) {
	m := columnMap{
		orderID: -1, productCode: -1, productName: -1, orderDate: -1,
		payDate: -1, readyDate: -1, customerID: -1, channel: -1,
		seller: -1, memberType: -1, paidAmount: -1, supplyCost: -1,
		cancelled: -1, coupon: -1, points: -1, address: -1, quantity: -1,
	}

	for i, col := range header {
		name := strings.TrimSpace(strings.TrimPrefix(col, "\uFEFF"))
		switch name {
		case colOrderID:
			m.orderID = i
		case colProductCode:
			m.productCode = i
		case colProductName:
			m.productName = i
		case colOrderDate:
			m.orderDate = i
		case colPayDate:
			m.payDate = i
		case colReadyDate:
			m.readyDate = i
		case colCustomerID:
			m.customerID = i
		case colChannel:
			m.channel = i
		case colSeller:
			m.seller = i
		case colMemberType:
			m.memberType = i
		case colPaidAmount:
			m.paidAmount = i
		case colSupplyCost:
			m.supplyCost = i
		case colCancelled:
			m.cancelled = i
		case colCoupon:
			m.coupon = i
		case colPoints:
			m.points = i
		case colAddress:
			m.address = i
		case colQuantity:
			m.quantity = i
		}
	}

	missing := m.missingRequired()
	if len(missing) > 0 {
		return m, fmt.Errorf("required columns not found: %s", strings.Join(missing, ", "))
	}

	return m, nil
}

func (m columnMap) missingRequired() []string {
	var missing []string
	required := map[string]int{
		colOrderID:     m.orderID,
		colProductCode: m.productCode,
		colProductName: m.productName,
		colOrderDate:   m.orderDate,
		colPaidAmount:  m.paidAmount,
	}
	for name, idx := range required {
		if idx == -1 {
			missing = append(missing, name)
		}
	}
	return missing
}

// capabilities derives the feature-availability flags from the mapped
// columns. Stages downstream consult these instead of re-probing headers.
func (m columnMap) capabilities() domain.Capabilities {
	return domain.Capabilities{
		HasCustomerID: m.customerID != -1,
		HasCoupon:     m.coupon != -1,
		HasPoints:     m.points != -1,
		HasReadyDate:  m.readyDate != -1,
	}
}

// ParseCSV parses decoded CSV content into order lines tagged with their
// source file name.
func ParseCSV(content, sourceFile string) ([]domain.OrderLine, domain.Capabilities, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, domain.Capabilities{}, fmt.Errorf("failed to read CSV: %w", err)
	}

	return parseRecords(records, sourceFile)
}

// parseRecords converts a header row plus data rows into order lines.
// Shared between the CSV and Excel readers.
func parseRecords(records [][]string, sourceFile string) ([]domain.OrderLine, domain.Capabilities, error) {
	if len(records) == 0 {
		return nil, domain.Capabilities{}, fmt.Errorf("file has no header row")
	}

	cols, err := mapColumns(records[0])
	if err != nil {
		return nil, domain.Capabilities{}, err
	}
	caps := cols.capabilities()

	lines := make([]domain.OrderLine, 0, len(records)-1)
	for _, row := range records[1:] {
		orderID := cell(row, cols.orderID)
		productCode := cell(row, cols.productCode)
		if orderID == "" && productCode == "" {
			continue
		}

		lines = append(lines, domain.OrderLine{
			OrderID:         orderID,
			ProductCode:     productCode,
			ProductName:     cell(row, cols.productName),
			CustomerID:      cell(row, cols.customerID),
			Channel:         cell(row, cols.channel),
			Seller:          cell(row, cols.seller),
			MemberType:      cell(row, cols.memberType),
			OrderedAt:       parseDate(cell(row, cols.orderDate)),
			PaidAt:          parseDate(cell(row, cols.payDate)),
			ReadyAt:         parseDate(cell(row, cols.readyDate)),
			PaidAmount:      parseAmount(cell(row, cols.paidAmount)),
			SupplyCost:      parseAmount(cell(row, cols.supplyCost)),
			CancelledAmount: parseAmount(cell(row, cols.cancelled)),
			CouponAmount:    parseAmount(cell(row, cols.coupon)),
			PointAmount:     parseAmount(cell(row, cols.points)),
			Address:         cell(row, cols.address),
			Quantity:        parseQuantity(cell(row, cols.quantity)),
			SourceFile:      sourceFile,
		})
	}

	return lines, caps, nil
}

// cell returns the trimmed value at index idx, or "" when the column is
// absent or the row is short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseDate tries each accepted format; unparseable values coerce to the
// zero time, the pipeline's null marker for dates.
func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseAmount parses a numeric cell, tolerating thousands separators.
// Missing or malformed values default to 0.
func parseAmount(value string) float64 {
	if value == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseQuantity(value string) int64 {
	if value == "" {
		return 0
	}
	v, err := strconv.ParseInt(strings.ReplaceAll(value, ",", ""), 10, 64)
	if err != nil {
		// Some exports write quantities as "3.0".
		if f, ferr := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64); ferr == nil {
			return int64(f)
		}
		return 0
	}
	return v
}
