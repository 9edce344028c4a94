package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PingController проверка доступности хранилищ.
type PingController struct {
	conn ConnectionChecker
}

func NewPingController(conn ConnectionChecker) *PingController {
	return &PingController{conn: conn}
}

// Ping обрабатывает GET /ping.
//
// В случае успеха возвращает:
//   - HTTP 200 OK с телом "pong"
//
// Если хоть одно хранилище не отвечает за DefaultRequestTimeout:
//   - HTTP 503 Service Unavailable
func (c *PingController) Ping(ctx *gin.Context) {
	if c.conn == nil {
		ctx.String(http.StatusOK, "pong")
		return
	}
	pingCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()
	if err := c.conn.CheckConnection(pingCtx); err != nil {
		_ = ctx.Error(fmt.Errorf("ping error: %w", err))
		ctx.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Storage unavailable", Code: "STORAGE_UNAVAILABLE"})
		return
	}
	ctx.String(http.StatusOK, "pong")
}
