package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/saadullahkhan123123/saeedautobackend/internal/apierror"
	"github.com/saadullahkhan123123/saeedautobackend/internal/dto"
	"github.com/saadullahkhan123123/saeedautobackend/internal/model"
	"github.com/saadullahkhan123123/saeedautobackend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildItemSvc() (service.ItemService, *stubItemRepo) {
	items := newStubItemRepo()
	return service.NewItemService(items), items
}

func TestCreateItem_GeneratesSKU(t *testing.T) {
	svc, _ := buildItemSvc()

	item, err := svc.Create(context.Background(), dto.CreateItemRequest{
		ProductType: model.TypeCover,
		CoverType:   str("Aster Cover"),
		Quantity:    25,
		Price:       decP(100),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(item.SKU, "COV-"), "got %q", item.SKU)
	assert.Equal(t, 25, item.Quantity)
	// BasePrice defaults to the selling price
	assert.True(t, item.BasePrice.Equal(dec(100)))
	assert.True(t, item.Active())
}

func TestCreateItem_PrefixPerType(t *testing.T) {
	svc, _ := buildItemSvc()

	plate, err := svc.Create(context.Background(), dto.CreateItemRequest{
		ProductType: model.TypePlate,
		PlateType:   str("Single"),
		BikeName:    str("70"),
		Price:       decP(50),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(plate.SKU, "PLT-"), "got %q", plate.SKU)

	form, err := svc.Create(context.Background(), dto.CreateItemRequest{
		ProductType: model.TypeForm,
		FormCompany: str("AG"),
		FormType:    str("Soft"),
		Price:       decP(30),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(form.SKU, "FRM-"), "got %q", form.SKU)
}

func TestCreateItem_NormalizesAndDedupesSKU(t *testing.T) {
	svc, _ := buildItemSvc()

	first, err := svc.Create(context.Background(), dto.CreateItemRequest{
		SKU:         "  cov-custom1 ",
		ProductType: model.TypeCover,
		CoverType:   str("Aster Cover"),
		Price:       decP(100),
	})
	require.NoError(t, err)
	assert.Equal(t, "COV-CUSTOM1", first.SKU)

	_, err = svc.Create(context.Background(), dto.CreateItemRequest{
		SKU:         "COV-CUSTOM1",
		ProductType: model.TypeCover,
		CoverType:   str("Calendar Cover"),
		Price:       decP(100),
	})
	assertCode(t, err, apierror.CodeValidation)
}

func TestCreateItem_DuplicateAttributes(t *testing.T) {
	svc, _ := buildItemSvc()

	_, err := svc.Create(context.Background(), dto.CreateItemRequest{
		ProductType: model.TypeCover,
		CoverType:   str("Aster Cover"),
		Price:       decP(100),
	})
	require.NoError(t, err)

	// Same shape again: ambiguous for sales-line resolution, rejected.
	_, err = svc.Create(context.Background(), dto.CreateItemRequest{
		ProductType: model.TypeCover,
		CoverType:   str("Aster Cover"),
		Price:       decP(110),
	})
	assertCode(t, err, apierror.CodeValidation)
}

func TestCreateItem_MissingAttrs(t *testing.T) {
	svc, _ := buildItemSvc()

	_, err := svc.Create(context.Background(), dto.CreateItemRequest{
		ProductType: model.TypeCover,
		Price:       decP(100),
	})
	assertCode(t, err, apierror.CodeValidation)
}

func TestCreateItem_MissingPrice(t *testing.T) {
	svc, _ := buildItemSvc()

	_, err := svc.Create(context.Background(), dto.CreateItemRequest{
		ProductType: model.TypeCover,
		CoverType:   str("Aster Cover"),
	})
	assertCode(t, err, apierror.CodeValidation)
}

func TestAdjustQuantity(t *testing.T) {
	svc, items := buildItemSvc()
	item := seedCover(items, "COV-ADJ001", "Aster Cover", 10, 100)

	updated, err := svc.AdjustQuantity(context.Background(), item.ID, dto.AdjustQuantityRequest{
		Delta: 15, Reason: "restock",
	})
	require.NoError(t, err)
	assert.Equal(t, 25, updated.Quantity)

	updated, err = svc.AdjustQuantity(context.Background(), item.ID, dto.AdjustQuantityRequest{
		Delta: -5, Reason: "damaged",
	})
	require.NoError(t, err)
	assert.Equal(t, 20, updated.Quantity)
}

func TestAdjustQuantity_BelowZero(t *testing.T) {
	svc, items := buildItemSvc()
	item := seedCover(items, "COV-ADJ002", "Aster Cover", 3, 100)

	_, err := svc.AdjustQuantity(context.Background(), item.ID, dto.AdjustQuantityRequest{Delta: -4})
	assertCode(t, err, apierror.CodeInsufficientStock)
	assert.Equal(t, 3, items.items[item.ID].Quantity)
}

func TestAdjustQuantity_ZeroDelta(t *testing.T) {
	svc, items := buildItemSvc()
	item := seedCover(items, "COV-ADJ003", "Aster Cover", 3, 100)

	_, err := svc.AdjustQuantity(context.Background(), item.ID, dto.AdjustQuantityRequest{Delta: 0})
	assertCode(t, err, apierror.CodeValidation)
}

func TestUpdateItem_PartialPatch(t *testing.T) {
	svc, items := buildItemSvc()
	item := seedCover(items, "COV-UPD001", "Aster Cover", 10, 100)

	name := "Premium Aster"
	minLevel := 8
	updated, err := svc.Update(context.Background(), item.ID, dto.UpdateItemRequest{
		ItemName:      &name,
		Price:         decP(120),
		MinStockLevel: &minLevel,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Name)
	assert.Equal(t, "Premium Aster", *updated.Name)
	assert.True(t, updated.Price.Equal(dec(120)))
	assert.Equal(t, 8, updated.MinStockLevel)
	// Untouched fields survive
	assert.True(t, updated.BasePrice.Equal(dec(100)))
	assert.Equal(t, 10, updated.Quantity)
}

func TestDeleteAndReactivateItem(t *testing.T) {
	svc, items := buildItemSvc()
	item := seedCover(items, "COV-DEL001", "Aster Cover", 10, 100)

	require.NoError(t, svc.Delete(context.Background(), item.ID))
	assert.False(t, items.items[item.ID].Active())

	restored, err := svc.Reactivate(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, restored.Active())
}

func TestGetItem_NotFound(t *testing.T) {
	svc, _ := buildItemSvc()
	_, err := svc.Get(context.Background(), uuid.New())
	assertCode(t, err, apierror.CodeNotFound)
}

func TestListLowStock(t *testing.T) {
	svc, items := buildItemSvc()
	seedCover(items, "COV-LS0001", "Aster Cover", 3, 100)    // at/below min (5)
	seedCover(items, "COV-LS0002", "Calendar Cover", 50, 100)

	low, err := svc.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "COV-LS0001", low[0].SKU)
}

func TestWipeItems(t *testing.T) {
	svc, items := buildItemSvc()
	seedCover(items, "COV-WIP001", "Aster Cover", 3, 100)
	seedCover(items, "COV-WIP002", "Calendar Cover", 5, 100)

	resp, err := svc.Wipe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Deleted)
	assert.Empty(t, items.items)
}
