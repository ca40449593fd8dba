package main

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// WebServer serves the tables as read-only JSON for an external front end
type WebServer struct {
	engine  *Engine
	addr    string
	origins []string
	router  *gin.Engine
}

// NewWebServer creates a new web server instance. With no origins every
// origin may call the API; otherwise only the listed ones.
func NewWebServer(engine *Engine, addr string, origins ...string) *WebServer {
	ws := &WebServer{
		engine:  engine,
		addr:    addr,
		origins: origins,
	}
	ws.router = ws.routes()
	return ws
}

// APIResponse wraps every JSON response
type APIResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// APIHousingQuote is the rent returned by /api/housing
type APIHousingQuote struct {
	Percentile float64     `json:"percentile"`
	Requested  int         `json:"requested_bedrooms"`
	Tier       int         `json:"tier"`
	Rent       float64     `json:"rent"`
	Stats      SampleStats `json:"stats"`
}

// APIArchetypeDetail combines one archetype's rows from both tables
type APIArchetypeDetail struct {
	Archetype Archetype    `json:"archetype"`
	Breakdown BreakdownRow `json:"breakdown"`
	Summary   SummaryRow   `json:"summary"`
}

func (ws *WebServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), cors.New(ws.corsConfig()))

	api := r.Group("/api")
	api.GET("/archetypes", ws.handleArchetypes)
	api.GET("/archetypes/:label", ws.handleArchetype)
	api.GET("/breakdown", ws.handleBreakdown)
	api.GET("/summary", ws.handleSummary)
	api.GET("/housing", ws.handleHousing)
	api.GET("/sensitivity", ws.handleSensitivity)
	api.GET("/report.pdf", ws.handleReportPDF)
	r.GET("/report", ws.handleReportHTML)
	return r
}

func (ws *WebServer) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Accept", "Content-Type"},
		ExposeHeaders: []string{"Content-Disposition", "Content-Length", "X-Report-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(ws.origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = ws.origins
	}
	return cfg
}

// Handler returns the HTTP handler, for tests and embedding
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// Start listens on the configured address and serves until the listener fails
func (ws *WebServer) Start() error {
	listener, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return err
	}

	actualAddr := listener.Addr().String()
	url := fmt.Sprintf("http://%s", actualAddr)
	if strings.HasPrefix(actualAddr, "[::]:") || strings.HasPrefix(actualAddr, "0.0.0.0:") {
		port := actualAddr[strings.LastIndex(actualAddr, ":")+1:]
		url = fmt.Sprintf("http://localhost:%s", port)
	}

	log.Printf("Starting web server on %s", actualAddr)
	log.Printf("API available at %s/api/summary", url)

	server := &http.Server{
		Handler:           ws.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server.Serve(listener)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[http] %s %s -> %d (%s)", c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}

// percentileParam reads q, falling back to the configured default
func (ws *WebServer) percentileParam(c *gin.Context) (float64, error) {
	raw := c.Query("q")
	if raw == "" {
		return ws.engine.Config().Report.GetPercentile(), nil
	}
	return ParsePercentile(raw)
}

func (ws *WebServer) handleArchetypes(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: ws.engine.Registry().All()})
}

func (ws *WebServer) handleArchetype(c *gin.Context) {
	label := c.Param("label")
	q, err := ws.percentileParam(c)
	if err != nil {
		sendJSONError(c, http.StatusBadRequest, err)
		return
	}
	log.Printf("[api.archetype] label=%q q=%.2f", label, q)

	a, err := ws.engine.Registry().Lookup(label)
	if err != nil {
		sendJSONError(c, statusForError(err), err)
		return
	}
	breakdown, summary, err := ws.engine.ComputeTables(q, FilingAuto, true)
	if err != nil {
		sendJSONError(c, statusForError(err), err)
		return
	}
	brow, err := breakdown.Lookup(a.Label)
	if err != nil {
		sendJSONError(c, statusForError(err), err)
		return
	}
	srow, err := summary.Lookup(a.Label)
	if err != nil {
		sendJSONError(c, statusForError(err), err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: APIArchetypeDetail{Archetype: a, Breakdown: brow, Summary: srow}})
}

func (ws *WebServer) handleBreakdown(c *gin.Context) {
	q, err := ws.percentileParam(c)
	if err != nil {
		sendJSONError(c, http.StatusBadRequest, err)
		return
	}
	filing, err := ParseFilingMode(c.Query("filing"))
	if err != nil {
		sendJSONError(c, http.StatusBadRequest, err)
		return
	}
	includeTax := c.DefaultQuery("tax", "true") != "false"
	log.Printf("[api.breakdown] q=%.2f filing=%s tax=%t", q, filing, includeTax)

	table, err := ws.engine.ComputeBreakdownWithOptions(q, filing, includeTax)
	if err != nil {
		sendJSONError(c, statusForError(err), err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: table})
}

func (ws *WebServer) handleSummary(c *gin.Context) {
	q, err := ws.percentileParam(c)
	if err != nil {
		sendJSONError(c, http.StatusBadRequest, err)
		return
	}
	log.Printf("[api.summary] q=%.2f", q)

	table, err := ws.engine.ComputeSummary(q)
	if err != nil {
		sendJSONError(c, statusForError(err), err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: table})
}

func (ws *WebServer) handleHousing(c *gin.Context) {
	q, err := ws.percentileParam(c)
	if err != nil {
		sendJSONError(c, http.StatusBadRequest, err)
		return
	}
	bedrooms, err := strconv.Atoi(c.DefaultQuery("bedrooms", "1"))
	if err != nil {
		sendJSONError(c, http.StatusBadRequest, fmt.Errorf("invalid bedrooms: %w", err))
		return
	}
	log.Printf("[api.housing] q=%.2f bedrooms=%d", q, bedrooms)

	tier, err := HousingTier(bedrooms)
	if err != nil {
		sendJSONError(c, statusForError(err), err)
		return
	}
	model := ws.engine.Model()
	rent, err := model.HousingQuantile(q, tier)
	if err != nil {
		sendJSONError(c, statusForError(err), err)
		return
	}
	stats, err := model.Describe(Housing, tier)
	if err != nil {
		sendJSONError(c, statusForError(err), err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: APIHousingQuote{
		Percentile: q,
		Requested:  bedrooms,
		Tier:       tier,
		Rent:       rent,
		Stats:      stats,
	}})
}

func (ws *WebServer) handleSensitivity(c *gin.Context) {
	var percentiles []float64
	if raw := c.Query("percentiles"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			q, err := ParsePercentile(strings.TrimSpace(part))
			if err != nil {
				sendJSONError(c, http.StatusBadRequest, err)
				return
			}
			percentiles = append(percentiles, q)
		}
	}
	log.Printf("[api.sensitivity] percentiles=%v", percentiles)

	analysis, err := ws.engine.SensitivitySweep(percentiles)
	if err != nil {
		sendJSONError(c, statusForError(err), err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: analysis})
}

func (ws *WebServer) handleReportPDF(c *gin.Context) {
	q, err := ws.percentileParam(c)
	if err != nil {
		sendJSONError(c, http.StatusBadRequest, err)
		return
	}
	filing, err := ParseFilingMode(c.Query("filing"))
	if err != nil {
		sendJSONError(c, http.StatusBadRequest, err)
		return
	}

	pdf, reportID, err := GenerateLivingWagePDFReport(ws.engine, q, filing, true)
	if err != nil {
		sendJSONError(c, statusForError(err), err)
		return
	}
	log.Printf("[api.report.pdf] q=%.2f report=%s bytes=%d", q, reportID, len(pdf))

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="living-wage-p%02.0f.pdf"`, q*100))
	c.Header("X-Report-ID", reportID)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (ws *WebServer) handleReportHTML(c *gin.Context) {
	q, err := ws.percentileParam(c)
	if err != nil {
		sendJSONError(c, http.StatusBadRequest, err)
		return
	}
	sweep := c.Query("sweep") == "true" || c.Query("sweep") == "1"

	report, err := BuildHTMLReport(ws.engine, q, FilingAuto, true, sweep)
	if err != nil {
		sendJSONError(c, statusForError(err), err)
		return
	}
	var buf bytes.Buffer
	if err := report.Render(&buf); err != nil {
		sendJSONError(c, http.StatusInternalServerError, fmt.Errorf("render error: %w", err))
		return
	}
	c.Header("X-Report-ID", report.ID)
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// statusForError maps engine errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrUnknownArchetype):
		return http.StatusNotFound
	case errors.Is(err, ErrQuantileOutOfRange), errors.Is(err, ErrInvalidBedroomCount):
		return http.StatusBadRequest
	case errors.Is(err, ErrSolverNonConvergence):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// sendJSONError sends a JSON error response
func sendJSONError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, APIResponse{
		Success: false,
		Error:   err.Error(),
	})
}
