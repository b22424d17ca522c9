package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rohankatakam/chaindash/internal/broadcast"
	"github.com/rohankatakam/chaindash/internal/dashboard"
	"github.com/rohankatakam/chaindash/internal/explorer"
	"github.com/rohankatakam/chaindash/internal/graph"
)

// Health reports graph connectivity: 200 when connected, 503 otherwise
func (s *Server) Health(c *gin.Context) {
	status := s.deps.Health.HealthCheck(c.Request.Context())
	code := http.StatusOK
	if status != graph.StatusConnected {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status})
}

func (s *Server) Schema(c *gin.Context) {
	sc, err := s.deps.Schema.Schema(c.Request.Context())
	if err != nil {
		s.fail(c, "schema", err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

func (s *Server) Properties(c *gin.Context) {
	props, err := s.deps.Schema.Properties(c.Request.Context())
	if err != nil {
		s.fail(c, "properties", err)
		return
	}
	if props == nil {
		props = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"properties": props})
}

func (s *Server) Years(c *gin.Context) {
	years, err := s.deps.Schema.Years(c.Request.Context())
	if err != nil {
		s.fail(c, "years", err)
		return
	}
	if years == nil {
		years = []int{}
	}
	c.JSON(http.StatusOK, gin.H{"years": years})
}

// Graph returns the filtered subgraph for the explorer
func (s *Server) Graph(c *gin.Context) {
	years, err := yearsParam(c, "years")
	if err != nil {
		s.fail(c, "graph", err)
		return
	}
	limit, err := intParam(c, "limit")
	if err != nil {
		s.fail(c, "graph", err)
		return
	}

	data, err := s.deps.Graph.Fetch(c.Request.Context(), explorer.Request{
		Labels:        listParam(c, "labels"),
		Relationships: listParam(c, "relationships"),
		Years:         years,
		Quarter:       c.Query("quarter"),
		Limit:         limit,
	})
	if err != nil {
		s.fail(c, "graph", err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func periodRequest(c *gin.Context) (dashboard.Request, error) {
	year, err := intParam(c, "year")
	if err != nil {
		return dashboard.Request{}, err
	}
	return dashboard.Request{Year: year, Quarter: c.Query("quarter")}, nil
}

// DashboardMetrics aggregates dimensions, insights and outcomes through the
// configured source
func (s *Server) DashboardMetrics(c *gin.Context) {
	req, err := periodRequest(c)
	if err != nil {
		s.fail(c, "dashboard_metrics", err)
		return
	}
	metrics, err := s.deps.Dashboard.Metrics(c.Request.Context(), req)
	if err != nil {
		s.fail(c, "dashboard_metrics", err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func (s *Server) ChainCounts(c *gin.Context) {
	req, err := periodRequest(c)
	if err != nil {
		s.fail(c, "chain_counts", err)
		return
	}
	counts, err := s.deps.Chain.Counts(c.Request.Context(), req.Filter())
	if err != nil {
		s.fail(c, "chain_counts", err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (s *Server) ChainDiagnostics(c *gin.Context) {
	diag, err := s.deps.Chain.Diagnostics(c.Request.Context())
	if err != nil {
		s.fail(c, "chain_diagnostics", err)
		return
	}
	c.JSON(http.StatusOK, diag)
}

func (s *Server) ChainIntegrity(c *gin.Context) {
	req, err := periodRequest(c)
	if err != nil {
		s.fail(c, "chain_integrity", err)
		return
	}
	integrity, err := s.deps.Chain.Integrity(c.Request.Context(), req.Filter())
	if err != nil {
		s.fail(c, "chain_integrity", err)
		return
	}
	c.JSON(http.StatusOK, integrity)
}

type updateSummaryRequest struct {
	Summary *string `json:"summary"`
}

// UpdateSummary broadcasts a new summary to every open stream
func (s *Server) UpdateSummary(c *gin.Context) {
	var body updateSummaryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "request body must be JSON with a summary field")
		return
	}
	if body.Summary == nil || strings.TrimSpace(*body.Summary) == "" {
		badRequest(c, "summary is required")
		return
	}

	msg := broadcast.Message{Type: broadcast.TypeSummary, Content: *body.Summary}
	if err := s.publisher.Publish(c.Request.Context(), msg); err != nil {
		s.fail(c, "update_summary", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "subscribers": s.hub.Count()})
}
