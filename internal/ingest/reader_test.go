package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

func toEUCKR(t *testing.T, s string) []byte {
	t.Helper()
	encoded, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	require.NoError(t, err)
	return encoded
}

func TestDecodeBytesEUCKR(t *testing.T) {
	content := "주문번호,상품명\nO1,감귤 3kg\n"

	decoded, err := decodeBytes(toEUCKR(t, content))
	require.NoError(t, err)
	assert.Equal(t, content, decoded)
}

func TestDecodeBytesUTF8BOM(t *testing.T) {
	content := "주문번호,상품명\nO1,한라봉\n"
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte(content)...)

	decoded, err := decodeBytes(raw)
	require.NoError(t, err)
	// The BOM is stripped, not passed through to the parser.
	assert.Equal(t, content, decoded)
}

func TestDecodeBytesPlainUTF8(t *testing.T) {
	// Korean UTF-8 without a BOM decodes "successfully" under EUC-KR into
	// different hangul, so only byte sequences EUC-KR cannot represent
	// fall through to the UTF-8 branch. An emoji forces that fallthrough.
	content := "주문번호,메모\nO1,😀 감귤\n"

	decoded, err := decodeBytes([]byte(content))
	require.NoError(t, err)
	assert.Equal(t, content, decoded)
}

func TestDecodeBytesASCII(t *testing.T) {
	// Pure ASCII is identical under both encodings.
	content := "order,product\n1,apple\n"

	decoded, err := decodeBytes([]byte(content))
	require.NoError(t, err)
	assert.Equal(t, content, decoded)
}

func TestDecodeBytesInvalid(t *testing.T) {
	// 0xFF is invalid in both EUC-KR and UTF-8.
	_, err := decodeBytes([]byte{0xFF, 0xFE, 0xFF, 0x00, 0xFF})
	assert.Error(t, err)
}

func TestDecodeBytesBOMWithInvalidBody(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, 0xFF, 0xFE)
	_, err := decodeBytes(raw)
	assert.Error(t, err)
}
