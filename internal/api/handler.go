// Package api exposes path planning and agent control over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/udisondev/gridnav/internal/agent"
	"github.com/udisondev/gridnav/internal/geo"
	"github.com/udisondev/gridnav/internal/pathfind"
	"github.com/udisondev/gridnav/internal/planner"
)

// maxBatch caps the number of requests in one batch call.
const maxBatch = 256

var errInvalidRequest = errors.New("invalid request")

type Handler struct {
	Planner *planner.Service
	Agents  *agent.TickManager
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(accessLog())

	api := s.Group("/api")
	api.POST("/path", h.planPath)
	api.POST("/path/batch", h.planBatch)
	api.GET("/world", h.world)
	api.GET("/world/render", h.renderWorld)

	agents := api.Group("/agents")
	agents.GET("", h.listAgents)
	agents.GET("/:id", h.getAgent)
	agents.POST("/:id/move", h.moveAgent)
	agents.POST("/:id/stop", h.stopAgent)

	s.GET("/healthz", h.healthz)
}

func (h Handler) planPath(c context.Context, ctx *app.RequestContext) {
	var body pathRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	req, err := toPlannerRequest(body)
	if err != nil {
		writeError(ctx, err)
		return
	}

	res, err := h.Planner.Plan(c, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, newPathResponse(res))
}

func (h Handler) planBatch(c context.Context, ctx *app.RequestContext) {
	var body batchRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if len(body.Requests) > maxBatch {
		writeError(ctx, fmt.Errorf("%w: at most %d requests per batch", errInvalidRequest, maxBatch))
		return
	}

	reqs := make([]planner.Request, len(body.Requests))
	for i, r := range body.Requests {
		req, err := toPlannerRequest(r)
		if err != nil {
			writeError(ctx, fmt.Errorf("request %d: %w", i, err))
			return
		}
		reqs[i] = req
	}

	results, err := h.Planner.PlanBatch(c, reqs)
	if err != nil {
		writeError(ctx, err)
		return
	}

	resp := batchResponse{Results: make([]pathResponse, len(results))}
	for i, res := range results {
		resp.Results[i] = newPathResponse(res)
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) world(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, newWorldResponse(h.Planner.World().Snapshot()))
}

// renderWorld draws the world as ASCII. With sx, sy, tx, ty it also plans
// and overlays a path.
func (h Handler) renderWorld(c context.Context, ctx *app.RequestContext) {
	snap := h.Planner.World().Snapshot()
	bounds, ok := snap.Bounds()
	if !ok {
		writeErrorBody(ctx, consts.StatusNotFound, "world_not_loaded", "world has no bounded layers")
		return
	}

	var cells []geo.Cell
	if ctx.Query("sx") != "" {
		coords, err := queryFloats(ctx, "sx", "sy", "tx", "ty")
		if err != nil {
			writeError(ctx, err)
			return
		}
		res, err := h.Planner.Plan(c, planner.Request{
			Strategy: ctx.Query("strategy"),
			Start:    geo.Vec2{X: coords[0], Y: coords[1]},
			Target:   geo.Vec2{X: coords[2], Y: coords[3]},
		})
		if err != nil {
			writeError(ctx, err)
			return
		}
		cells = res.Cells()
		ctx.Response.Header.Set("X-Path-Result", res.Reason().String())
	}

	ctx.Data(consts.StatusOK, "text/plain; charset=utf-8", []byte(pathfind.Render(snap, bounds, cells)))
}

func (h Handler) listAgents(c context.Context, ctx *app.RequestContext) {
	ids := h.Agents.IDs()
	slices.Sort(ids)

	resp := agentsResponse{Agents: make([]agentResponse, 0, len(ids))}
	for _, id := range ids {
		f, err := h.Agents.Follower(id)
		if err != nil {
			continue
		}
		resp.Agents = append(resp.Agents, newAgentResponse(f))
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) getAgent(c context.Context, ctx *app.RequestContext) {
	f, err := h.Agents.Follower(ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, newAgentResponse(f))
}

func (h Handler) moveAgent(c context.Context, ctx *app.RequestContext) {
	f, err := h.Agents.Follower(ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}

	var body moveRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.Target == nil {
		writeError(ctx, fmt.Errorf("%w: target is required", errInvalidRequest))
		return
	}

	res := f.MoveTo(body.Target.geo())
	ctx.JSON(consts.StatusOK, newPathResponse(res))
}

func (h Handler) stopAgent(c context.Context, ctx *app.RequestContext) {
	f, err := h.Agents.Follower(ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	f.Stop()
	ctx.JSON(consts.StatusOK, newAgentResponse(f))
}

func (h Handler) healthz(c context.Context, ctx *app.RequestContext) {
	w := h.Planner.World()
	stats := h.Planner.Stats()
	ctx.JSON(consts.StatusOK, map[string]any{
		"status":       "ok",
		"world_loaded": w.IsLoaded(),
		"fingerprint":  w.Fingerprint(),
		"agents":       h.Agents.Count(),
		"cache": map[string]any{
			"hits":    stats.Hits,
			"misses":  stats.Misses,
			"entries": stats.Entries,
		},
	})
}

func toPlannerRequest(r pathRequest) (planner.Request, error) {
	if r.Start == nil || r.Target == nil {
		return planner.Request{}, fmt.Errorf("%w: start and target are required", errInvalidRequest)
	}
	return planner.Request{
		Strategy: r.Strategy,
		Start:    r.Start.geo(),
		Target:   r.Target.geo(),
	}, nil
}

func queryFloats(ctx *app.RequestContext, keys ...string) ([]float64, error) {
	out := make([]float64, len(keys))
	for i, k := range keys {
		v, err := strconv.ParseFloat(ctx.Query(k), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: query %s: %v", errInvalidRequest, k, err)
		}
		out[i] = v
	}
	return out, nil
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, errInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, pathfind.ErrUnknownStrategy):
		writeErrorBody(ctx, consts.StatusBadRequest, "unknown_strategy", err.Error())
	case errors.Is(err, agent.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "agent_not_found", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "canceled", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
