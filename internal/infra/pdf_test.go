package infra

import (
	"os"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/saadullahkhan123123/saeedautobackend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "short name", truncateLabel("short name", 22))

	long := truncateLabel("a very long product name indeed", 22)
	assert.Equal(t, 22, len([]rune(long)))
	assert.Equal(t, "a very long product n…", long)

	// Multi-byte runes at the cut boundary must not be split.
	urdu := truncateLabel("کور آسٹر پریمیم موٹرسائیکل سیٹ", 22)
	assert.True(t, utf8.ValidString(urdu))
	assert.Equal(t, 22, len([]rune(urdu)))
}

func TestGenerateSlipPDF(t *testing.T) {
	dir := t.TempDir()
	now := time.Now().UTC()
	slip := &model.Slip{
		SlipNumber:    "SLP-20260315-0001",
		PaymentMethod: "cash",
		Subtotal:      decimal.NewFromInt(900),
		TotalAmount:   decimal.NewFromInt(900),
		Status:        model.StatusPaid,
		CreatedAt:     now,
		Lines: []model.ProductLine{{
			Name:           "آسٹر کور پریمیم لمبا نام والی پروڈکٹ",
			ProductType:    model.TypeCover,
			Quantity:       10,
			UnitPrice:      decimal.NewFromInt(90),
			DiscountAmount: decimal.NewFromInt(100),
			DiscountType:   model.DiscountBulk,
			TotalPrice:     decimal.NewFromInt(900),
		}},
	}

	path, err := GenerateSlipPDF(slip, dir)
	require.NoError(t, err)
	assert.Equal(t, SlipPDFPath(slip.SlipNumber, dir), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
