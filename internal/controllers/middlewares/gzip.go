package middlewares

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// nolint:gochecknoglobals
var gzipWriters = sync.Pool{
	New: func() any { return gzip.NewWriter(io.Discard) },
}

// gzipWriter обертка над gin.ResponseWriter для сжатия ответов в формате gzip.
// gzip поток открывается при первой записи тела, ответы без тела уходят как есть.
type gzipWriter struct {
	gin.ResponseWriter
	writer *gzip.Writer
}

// Write реализует интерфейс io.Writer.
// При первом вызове выставляет заголовки сжатия и берет gzip.Writer из пула.
//
// Параметры:
//   - data: данные для записи
//
// Возвращает:
//   - int: количество записанных байт
//   - error: ошибка записи
func (g *gzipWriter) Write(data []byte) (int, error) {
	if g.writer == nil {
		h := g.Header()
		h.Set("Content-Encoding", "gzip")
		h.Add("Vary", "Accept-Encoding")
		h.Del("Content-Length")

		g.writer, _ = gzipWriters.Get().(*gzip.Writer)
		g.writer.Reset(g.ResponseWriter)
	}
	return g.writer.Write(data) //nolint:wrapcheck
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.Write([]byte(s))
}

// close дописывает gzip footer и возвращает writer в пул. Без записи ничего не делает.
func (g *gzipWriter) close() error {
	if g.writer == nil {
		return nil
	}
	err := g.writer.Close()
	gzipWriters.Put(g.writer)
	g.writer = nil
	return err //nolint:wrapcheck
}

// GzipMiddleware создает middleware для автоматического сжатия ответов
// и распаковки запросов в формате gzip.
//
// Для ответов:
//   - Сжимает ответ, если клиент прислал gzip в Accept-Encoding
//   - Заголовки Content-Encoding: gzip и Vary: Accept-Encoding выставляются только для ответов с телом
//
// Для запросов:
//   - Обрабатывает только POST, PUT, PATCH запросы
//   - При Content-Encoding: gzip распаковывает тело, битый gzip дает 400
//
// Возвращает:
//   - gin.HandlerFunc: middleware функция
func GzipMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !readGzip(ctx) {
			return
		}
		if !strings.Contains(ctx.Request.Header.Get("Accept-Encoding"), "gzip") {
			ctx.Next()
			return
		}

		gzw := &gzipWriter{ResponseWriter: ctx.Writer}
		ctx.Writer = gzw
		defer func() {
			if closeErr := gzw.close(); closeErr != nil {
				_ = ctx.Error(fmt.Errorf("close gzip writer: %w", closeErr))
			}
		}()
		ctx.Next()
	}
}

// readGzip распаковывает тело запроса, если оно сжато.
// Возвращает false, если запрос уже отклонен.
//
// Параметры:
//   - ctx: контекст Gin
func readGzip(ctx *gin.Context) bool {
	if !slices.Contains([]string{http.MethodPost, http.MethodPut, http.MethodPatch}, ctx.Request.Method) {
		return true
	}
	if !strings.Contains(ctx.Request.Header.Get("Content-Encoding"), "gzip") {
		return true
	}

	gzReader, gzErr := gzip.NewReader(ctx.Request.Body)
	if gzErr != nil {
		_ = ctx.Error(fmt.Errorf("read gzip: %w", gzErr))
		ctx.AbortWithStatus(http.StatusBadRequest)
		return false
	}
	defer func() {
		if closeErr := gzReader.Close(); closeErr != nil {
			_ = ctx.Error(fmt.Errorf("close gzip reader: %w", closeErr))
		}
	}()
	bodyBytes, err := io.ReadAll(gzReader)
	if err != nil {
		_ = ctx.Error(fmt.Errorf("read gzip: %w", err))
		ctx.AbortWithStatus(http.StatusBadRequest)
		return false
	}

	ctx.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	ctx.Request.Header.Del("Content-Encoding")
	ctx.Request.ContentLength = int64(len(bodyBytes))
	return true
}
