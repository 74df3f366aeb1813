package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/doctran/doctran/internal/pkg/errcode"
	"github.com/doctran/doctran/internal/pkg/response"
	"github.com/doctran/doctran/internal/service"
)

type UnitHandler struct {
	units *service.UnitService
}

func NewUnitHandler(units *service.UnitService) *UnitHandler {
	return &UnitHandler{units: units}
}

type createUnitsRequest struct {
	Texts     []string `json:"texts"`
	Overwrite bool     `json:"overwrite"`
}

func (h *UnitHandler) Create(c *gin.Context) {
	var req createUnitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	units, err := h.units.CreateUnits(c.Request.Context(), c.Param("id"), req.Texts, req.Overwrite)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, units)
}

func (h *UnitHandler) List(c *gin.Context) {
	units, err := h.units.ListUnits(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, units)
}
