package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/termine-api/internal/dto"
	"github.com/BruksfildServices01/termine-api/internal/httpresp"
	"github.com/BruksfildServices01/termine-api/internal/middleware"
	"github.com/BruksfildServices01/termine-api/internal/models"
)

type MeHandler struct{}

func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	httpresp.OK(c, meResponse(middleware.CurrentUser(c)))
}

func meResponse(u *models.User) dto.MeResponse {
	return dto.MeResponse{
		UserName: u.UserName,
		Role:     u.Role,
		Coupons:  u.Coupons,
	}
}
