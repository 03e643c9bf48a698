package handler

import (
	"net/http"

	_ "github.com/saadullahkhan123123/saeedautobackend/internal/apierror"
	"github.com/saadullahkhan123123/saeedautobackend/internal/dto"
	"github.com/saadullahkhan123123/saeedautobackend/internal/service"

	"github.com/gin-gonic/gin"
)

type ItemsHandler struct{ svc service.ItemService }

func NewItemsHandler(svc service.ItemService) *ItemsHandler { return &ItemsHandler{svc: svc} }

// CreateItem godoc
// @Summary      Create a catalog item
// @Description  Registers a stock item. SKU is generated from the product type when absent; basePrice defaults to price.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateItemRequest true "Item detail"
// @Success      201  {object} model.Item
// @Failure      400  {object} apierror.Response
// @Router       /v1/items [post]
func (h *ItemsHandler) CreateItem(c *gin.Context) {
	var req dto.CreateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	item, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetItem godoc
// @Summary      Get an item by id
// @Tags         items
// @Produce      json
// @Param        id path string true "Item UUID"
// @Success      200 {object} model.Item
// @Failure      404 {object} apierror.Response
// @Router       /v1/items/{id} [get]
func (h *ItemsHandler) GetItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ListItems godoc
// @Summary      List items
// @Description  Paginated item list with name/SKU search and product type filter. Active items only unless active=all/false.
// @Tags         items
// @Produce      json
// @Param        search      query string false "Name or SKU fragment"
// @Param        productType query string false "Cover | Form | Plate"
// @Param        active      query string false "false | all (default: active only)"
// @Param        page        query int    false "Page (default 1)"
// @Param        limit       query int    false "Page size (default 50)"
// @Success      200 {object} dto.ItemListResponse
// @Failure      400 {object} apierror.Response
// @Router       /v1/items [get]
func (h *ItemsHandler) ListItems(c *gin.Context) {
	var filter dto.ItemFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListLowStock godoc
// @Summary      List items at or below their minimum stock level
// @Tags         items
// @Produce      json
// @Success      200 {array} model.Item
// @Router       /v1/items/low-stock [get]
func (h *ItemsHandler) ListLowStock(c *gin.Context) {
	items, err := h.svc.ListLowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// UpdateItem godoc
// @Summary      Update an item
// @Description  Partial update of name, prices and stock levels. Quantity changes go through the adjust endpoint.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id   path string                true "Item UUID"
// @Param        body body dto.UpdateItemRequest true "Fields to change"
// @Success      200  {object} model.Item
// @Failure      404  {object} apierror.Response
// @Router       /v1/items/{id} [put]
func (h *ItemsHandler) UpdateItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	item, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// AdjustQuantity godoc
// @Summary      Adjust an item's quantity
// @Description  Applies a signed stock delta under the non-negative guard; a delta driving quantity below zero fails with InsufficientStock.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id   path string                   true "Item UUID"
// @Param        body body dto.AdjustQuantityRequest true "Delta and reason"
// @Success      200  {object} model.Item
// @Failure      400  {object} apierror.Response
// @Router       /v1/items/{id}/adjust [post]
func (h *ItemsHandler) AdjustQuantity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AdjustQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	item, err := h.svc.AdjustQuantity(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem godoc
// @Summary      Deactivate an item
// @Description  Soft delete: the item disappears from active listings and resolution but its history remains.
// @Tags         items
// @Param        id path string true "Item UUID"
// @Success      204
// @Failure      404 {object} apierror.Response
// @Router       /v1/items/{id} [delete]
func (h *ItemsHandler) DeleteItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReactivateItem godoc
// @Summary      Reactivate a soft-deleted item
// @Tags         items
// @Produce      json
// @Param        id path string true "Item UUID"
// @Success      200 {object} model.Item
// @Failure      404 {object} apierror.Response
// @Router       /v1/items/{id}/reactivate [post]
func (h *ItemsHandler) ReactivateItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.svc.Reactivate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// WipeItems godoc
// @Summary      Delete all items
// @Description  Destructive bulk wipe of the catalog, intended for re-imports. Returns the number of rows removed.
// @Tags         items
// @Produce      json
// @Success      200 {object} dto.WipeItemsResponse
// @Router       /v1/items [delete]
func (h *ItemsHandler) WipeItems(c *gin.Context) {
	resp, err := h.svc.Wipe(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
