package handler

import (
	"net/http"
	"os"

	"github.com/saadullahkhan123123/saeedautobackend/internal/apierror"
	"github.com/saadullahkhan123123/saeedautobackend/internal/dto"
	"github.com/saadullahkhan123123/saeedautobackend/internal/infra"
	"github.com/saadullahkhan123123/saeedautobackend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SlipsHandler struct {
	svc            service.SlipService
	pdfStoragePath string
}

func NewSlipsHandler(svc service.SlipService, pdfStoragePath string) *SlipsHandler {
	return &SlipsHandler{svc: svc, pdfStoragePath: pdfStoragePath}
}

// CreateSlip godoc
// @Summary      Create a sale slip
// @Description  Creates a slip atomically: resolves each product, prices it, decrements stock and records the matching income entry.
// @Tags         slips
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateSlipRequest true "Slip detail"
// @Success      201  {object} dto.SlipResponse
// @Failure      400  {object} apierror.Response
// @Failure      503  {object} apierror.Response
// @Router       /v1/slips [post]
func (h *SlipsHandler) CreateSlip(c *gin.Context) {
	var req dto.CreateSlipRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetSlip godoc
// @Summary      Get a slip by id
// @Tags         slips
// @Produce      json
// @Param        id path string true "Slip UUID"
// @Success      200 {object} dto.SlipResponse
// @Failure      404 {object} apierror.Response
// @Router       /v1/slips/{id} [get]
func (h *SlipsHandler) GetSlip(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListSlips godoc
// @Summary      List slips
// @Description  Paginated slip list, filterable by date (YYYY-MM-DD) and status.
// @Tags         slips
// @Produce      json
// @Param        date   query string false "Date YYYY-MM-DD"
// @Param        status query string false "Pending | Paid | Cancelled | all"
// @Param        page   query int    false "Page (default 1)"
// @Param        limit  query int    false "Page size (default 50)"
// @Success      200    {object} dto.SlipListResponse
// @Failure      400    {object} apierror.Response
// @Router       /v1/slips [get]
func (h *SlipsHandler) ListSlips(c *gin.Context) {
	var filter dto.SlipFilter
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

// CancelSlip godoc
// @Summary      Cancel a slip
// @Description  Marks the slip cancelled, deactivates its income records and restores stock (best-effort per line). Cancelling twice fails.
// @Tags         slips
// @Accept       json
// @Produce      json
// @Param        id   path string true "Slip UUID"
// @Param        body body dto.CancelSlipRequest false "Cancellation reason"
// @Success      200  {object} dto.CancelSlipResponse
// @Failure      400  {object} apierror.Response
// @Failure      404  {object} apierror.Response
// @Router       /v1/slips/cancel/{id} [patch]
func (h *SlipsHandler) CancelSlip(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.CancelSlipRequest
	// Body is optional for cancellation; ignore binding errors on empty bodies.
	_ = c.ShouldBindJSON(&req)

	resp, err := h.svc.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateSlip godoc
// @Summary      Update a slip
// @Description  Partial update. A products patch restores old stock and re-reserves the new lines in one transaction.
// @Tags         slips
// @Accept       json
// @Produce      json
// @Param        id   path string                true "Slip UUID"
// @Param        body body dto.UpdateSlipRequest true "Fields to change"
// @Success      200  {object} dto.SlipResponse
// @Failure      400  {object} apierror.Response
// @Failure      404  {object} apierror.Response
// @Router       /v1/slips/{id} [put]
func (h *SlipsHandler) UpdateSlip(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateSlipRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteSlip godoc
// @Summary      Delete a slip
// @Description  Restores stock (best-effort), deactivates income records, then removes the slip permanently.
// @Tags         slips
// @Produce      json
// @Param        id path string true "Slip UUID"
// @Success      200 {object} dto.DeleteSlipResponse
// @Failure      404 {object} apierror.Response
// @Router       /v1/slips/{id} [delete]
func (h *SlipsHandler) DeleteSlip(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadReceipt godoc
// @Summary      Download the slip's PDF receipt
// @Description  Serves the pre-generated PDF; generates it on the fly when the worker has not produced it yet.
// @Tags         slips
// @Produce      application/pdf
// @Param        id path string true "Slip UUID"
// @Success      200 {file} file
// @Failure      404 {object} apierror.Response
// @Router       /v1/slips/{id}/receipt [get]
func (h *SlipsHandler) DownloadReceipt(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	path := infra.SlipPDFPath(resp.SlipNumber, h.pdfStoragePath)
	if _, statErr := os.Stat(path); statErr != nil {
		// Worker hasn't produced it yet (or the file was cleaned up).
		respondError(c, apierror.NotFound("receipt"))
		return
	}
	c.FileAttachment(path, "receipt_"+resp.SlipNumber+".pdf")
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.Response{Error: "validation failed", Details: "invalid id, expected UUID"})
		return uuid.Nil, false
	}
	return id, true
}
