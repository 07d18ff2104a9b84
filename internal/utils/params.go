package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func GetProjectID(ctx *gin.Context) (uint, error) {
	return parseIDParam(ctx, "project_id")
}

func GetTicketID(ctx *gin.Context) (uint, error) {
	return parseIDParam(ctx, "ticket_id")
}

func GetUserID(ctx *gin.Context) (uint, error) {
	return parseIDParam(ctx, "user_id")
}

func parseIDParam(ctx *gin.Context, name string) (uint, error) {
	idStr := ctx.Param(name)

	if idStr == "" {
		return 0, errors.New("missing " + name + " parameter")
	}

	id, err := strconv.ParseUint(idStr, 10, 32)

	if err != nil {
		return 0, errors.New("invalid " + name + " parameter")
	}

	return uint(id), nil
}
