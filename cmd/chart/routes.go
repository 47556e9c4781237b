package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"solana-price-chart/internal/observability"
)

type themeRequest struct {
	Dark *bool `json:"dark" binding:"required"`
}

type tokenRequest struct {
	Mint string `json:"mint" binding:"required"`
	Pool string `json:"pool"`
}

// Router builds the HTTP surface.
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), a.requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(observability.Handler()))
	r.GET("/status", a.handleStatus)
	r.GET("/chart", a.handleChart)
	r.POST("/theme", a.handleTheme)
	r.POST("/token", a.handleToken)

	return r
}

func (a *App) handleStatus(c *gin.Context) {
	view, err := a.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (a *App) handleChart(c *gin.Context) {
	snap, ok := a.Snapshot()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "chart not rendered yet"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (a *App) handleTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.SetDark(c.Request.Context(), *req.Dark); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dark": *req.Dark})
}

func (a *App) handleToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.Open(c.Request.Context(), req.Mint, req.Pool); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"mint": req.Mint})
}

func (a *App) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
