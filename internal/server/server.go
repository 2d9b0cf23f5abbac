// Package server exposes comparisons over HTTP: a JSON API, PNG charts and
// an MCP endpoint for tool-calling clients.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pable/go-rushing-metrics/internal/chart"
	"github.com/pable/go-rushing-metrics/internal/export"
	"github.com/pable/go-rushing-metrics/internal/filter"
	"github.com/pable/go-rushing-metrics/internal/model"
)

// Comparer is the query side of session.Session.
type Comparer interface {
	Seasons(ctx context.Context) ([]int, error)
	Teams(ctx context.Context) ([]string, error)
	Compare(ctx context.Context, sel model.Selection, topK int) (model.Comparison, error)
}

// Defaults fill in query parameters the caller leaves out.
type Defaults struct {
	TeamOne string
	TeamTwo string
	Top     int
}

// Server routes HTTP requests to a Comparer.
type Server struct {
	router   *gin.Engine
	sess     Comparer
	defaults Defaults
}

var charts = map[string]func(io.Writer, model.Comparison) error{
	"shares.png":                chart.Shares,
	"differences.png":           chart.Differences,
	"cumulative.png":            chart.Cumulative,
	"cumulative-difference.png": chart.CumulativeDifference,
}

// New builds the router. debug keeps gin in debug mode.
func New(sess Comparer, defaults Defaults, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		router:   gin.New(),
		sess:     sess,
		defaults: defaults,
	}
	s.router.Use(gin.Logger(), gin.Recovery())
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until the listener fails.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	{
		api.GET("/seasons", s.listSeasons)
		api.GET("/teams", s.listTeams)
		api.GET("/compare", s.compare)
		api.GET("/charts/:name", s.renderChart)
	}

	mcpHandler := gin.WrapH(newMCPHandler(s.sess, s.defaults))
	s.router.Any("/mcp", mcpHandler)
}

func errorResponse(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

// statusFor maps selection errors to 400 and everything else to 500.
func statusFor(err error) int {
	var bad badRequest
	switch {
	case errors.Is(err, model.ErrSameTeam), errors.Is(err, model.ErrEmptyTeam), errors.As(err, &bad):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func (s *Server) listSeasons(c *gin.Context) {
	seasons, err := s.sess.Seasons(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seasons": seasons})
}

func (s *Server) listTeams(c *gin.Context) {
	teams, err := s.sess.Teams(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}
	if exclude := c.Query("exclude"); exclude != "" {
		teams = filter.TeamOptions(teams, exclude)
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

// selection reads season, team_one, team_two and top from the query
// string. A missing season means the newest one.
func (s *Server) selection(c *gin.Context) (model.Selection, int, error) {
	sel := model.Selection{
		TeamOne: c.DefaultQuery("team_one", s.defaults.TeamOne),
		TeamTwo: c.DefaultQuery("team_two", s.defaults.TeamTwo),
	}

	top := s.defaults.Top
	if v := c.Query("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return sel, 0, badRequest{fmt.Sprintf("invalid top %q", v)}
		}
		top = n
	}

	if v := c.Query("season"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return sel, 0, badRequest{fmt.Sprintf("invalid season %q", v)}
		}
		sel.Season = n
		return sel, top, nil
	}

	seasons, err := s.sess.Seasons(c.Request.Context())
	if err != nil {
		return sel, 0, err
	}
	if len(seasons) == 0 {
		return sel, 0, badRequest{"no seasons available"}
	}
	sel.Season = seasons[0]
	return sel, top, nil
}

func (s *Server) comparison(c *gin.Context) (model.Comparison, bool) {
	sel, top, err := s.selection(c)
	if err != nil {
		errorResponse(c, statusFor(err), err)
		return model.Comparison{}, false
	}
	cmp, err := s.sess.Compare(c.Request.Context(), sel, top)
	if err != nil {
		errorResponse(c, statusFor(err), err)
		return model.Comparison{}, false
	}
	return cmp, true
}

func (s *Server) compare(c *gin.Context) {
	cmp, ok := s.comparison(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, export.NewDocument(cmp))
}

func (s *Server) renderChart(c *gin.Context) {
	render, ok := charts[c.Param("name")]
	if !ok {
		errorResponse(c, http.StatusNotFound, fmt.Errorf("unknown chart %q", c.Param("name")))
		return
	}
	cmp, ok := s.comparison(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, cmp); err != nil {
		if errors.Is(err, chart.ErrNoData) {
			errorResponse(c, http.StatusNotFound, err)
			return
		}
		errorResponse(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
