package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fsdevblog/urlkeeper/internal/controllers/middlewares"
	"github.com/gin-gonic/gin"
)

const (
	DefaultRequestTimeout = 3 * time.Second
)

// respondError отвечает ошибкой. Браузер перенаправляется на redirectTo с кодом ошибки
// в query, остальные клиенты получают JSON. Пустой redirectTo означает JSON для всех.
// Ошибки 5xx прикрепляются к контексту и попадают в лог.
func respondError(ctx *gin.Context, err error, redirectTo string) {
	he := classifyError(err)
	if he.status >= http.StatusInternalServerError {
		_ = ctx.Error(err)
	}

	if redirectTo != "" && middlewares.WantsHTML(ctx) {
		ctx.Redirect(http.StatusSeeOther, withQuery(redirectTo, "code", he.code))
		return
	}
	ctx.JSON(he.status, ErrorResponse{Error: he.message, Code: he.code})
}

// respondSuccess отвечает на успешный запрос. Браузер перенаправляется на redirectTo
// с сообщением в query, остальные клиенты получают body со статусом status.
func respondSuccess(ctx *gin.Context, status int, body any, redirectTo, message string) {
	if redirectTo != "" && middlewares.WantsHTML(ctx) {
		target := redirectTo
		if message != "" {
			target = withQuery(redirectTo, "message", message)
		}
		ctx.Redirect(http.StatusSeeOther, target)
		return
	}
	ctx.JSON(status, body)
}

func withQuery(path, key, value string) string {
	return path + "?" + url.Values{key: []string{value}}.Encode()
}

// bindRequest разбирает JSON или форму в зависимости от Content-Type.
func bindRequest(ctx *gin.Context, obj any) error {
	if err := ctx.ShouldBind(obj); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, err.Error())
	}
	return nil
}
