package http

import (
	"maps"
	"net/http"

	domain "gccp-api/internal/domain/contract"
	"gccp-api/internal/usecase/contract"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ContractHandler struct {
	uc  *contract.Usecase
	log *zap.Logger
}

func NewContractHandler(uc *contract.Usecase, log *zap.Logger) *ContractHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContractHandler{uc: uc, log: log}
}

// ListContracts: GET /contracts?{id,document_number,state,issue_date}[&page&page_size]
func (h *ContractHandler) ListContracts(c echo.Context) error {
	params := maps.Clone(c.QueryParams())
	pr, paged := takePage(params)

	page := domain.Page{}
	if paged {
		page = pr.toPage()
	}
	res, err := h.uc.List(c.Request().Context(), params, page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if !paged {
		return c.JSON(http.StatusOK, res.Items)
	}
	return c.JSON(http.StatusOK, pr.response(res.Items, res.Total))
}

func (h *ContractHandler) CreateContract(c echo.Context) error {
	var req contract.ContractInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	dto, err := h.uc.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

// UpdateContract: PUT /contracts with the id in the body. Absent fields keep
// their stored values.
func (h *ContractHandler) UpdateContract(c echo.Context) error {
	var req contract.ContractInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	dto, err := h.uc.Update(c.Request().Context(), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ContractHandler) DeleteContract(c echo.Context) error {
	contractID := c.Param("id")
	if contractID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing id path param"})
	}
	if err := h.uc.Delete(c.Request().Context(), contractID); err != nil {
		return writeError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Summary: GET /contracts_summary accepts the same filters as ListContracts.
func (h *ContractHandler) Summary(c echo.Context) error {
	dto, err := h.uc.Summary(c.Request().Context(), c.QueryParams())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
