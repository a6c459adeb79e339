package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Masaki-Aoki-soft/walkroute"
	"github.com/gin-gonic/gin"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

type server struct {
	planner *walkroute.Planner
}

// CalcRequest accepts both JSON and form bodies. Form field names follow the map page
type CalcRequest struct {
	Start        int64   `json:"start" form:"param1" binding:"required"`
	Goal         int64   `json:"goal" form:"param2" binding:"required"`
	WalkingSpeed float64 `json:"walkingSpeed" form:"walkingSpeed"`
}

// WaitTimeRequest carries route as '<u>-<v>.geojson' lines (or plain 'u-v' items) and reference signal
type WaitTimeRequest struct {
	ReferenceEdge string   `json:"referenceEdge" binding:"required"`
	UserPref      string   `json:"userPref"`
	Edges         []string `json:"edges"`
	WalkingSpeed  float64  `json:"walkingSpeed"`
}

func registerRoutes(r *gin.Engine, srv *server) {
	r.POST("/calc", srv.handleCalc)
	r.POST("/calculate-wait-time", srv.handleWaitTime)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
}

// plannerFor returns planner for requested walking speed. Zero speed means configured one
func (srv *server) plannerFor(speed float64) (*walkroute.Planner, error) {
	if speed == 0 || speed == srv.planner.Configuration().WalkingSpeed {
		return srv.planner, nil
	}
	return srv.planner.WithWalkingSpeed(speed)
}

func (srv *server) handleCalc(c *gin.Context) {
	var req CalcRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	planner, err := srv.plannerFor(req.WalkingSpeed)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan, err := planner.Plan(osm.NodeID(req.Start), osm.NodeID(req.Goal))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, walkroute.ErrUnknownNode) || errors.Is(err, walkroute.ErrSameEndpoints) {
			status = http.StatusBadRequest
		}
		slog.Warn("calc failed", "start", req.Start, "goal", req.Goal, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, walkroute.NewRouteOutputs(plan.Routes))
}

func (srv *server) handleWaitTime(c *gin.Context) {
	var req WaitTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reference, err := walkroute.ParseEdgeKey(req.ReferenceEdge)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items := req.Edges
	if len(items) == 0 {
		items = strings.Split(req.UserPref, "\n")
	}
	keys := make([]walkroute.EdgeKey, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		key, err := walkroute.ParseEdgeKey(item)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty route"})
		return
	}
	planner, err := srv.plannerFor(req.WalkingSpeed)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wait, err := planner.ReferenceWait(keys, reference)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalWaitTime": wait / 60.0})
}
