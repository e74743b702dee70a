package api

import (
	"github.com/udisondev/gridnav/internal/agent"
	"github.com/udisondev/gridnav/internal/geo"
	"github.com/udisondev/gridnav/internal/pathfind"
)

type vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v vec2) geo() geo.Vec2 { return geo.Vec2{X: v.X, Y: v.Y} }

func fromGeo(p geo.Vec2) vec2 { return vec2{X: p.X, Y: p.Y} }

func fromPath(path []geo.Vec2) []vec2 {
	out := make([]vec2, len(path))
	for i, p := range path {
		out[i] = fromGeo(p)
	}
	return out
}

type pathRequest struct {
	Strategy string `json:"strategy,omitempty"`
	Start    *vec2  `json:"start"`
	Target   *vec2  `json:"target"`
}

type pathResponse struct {
	OK       bool    `json:"ok"`
	Strategy string  `json:"strategy"`
	Path     []vec2  `json:"path"`
	Length   float64 `json:"length"`
	Expanded int     `json:"expanded"`
	Reason   string  `json:"reason,omitempty"`
	Message  string  `json:"message,omitempty"`
}

func newPathResponse(res pathfind.Result) pathResponse {
	resp := pathResponse{
		OK:       res.OK(),
		Strategy: res.Strategy(),
		Path:     fromPath(res.Path()),
		Length:   res.Length(),
		Expanded: res.Expanded(),
	}
	if !res.OK() {
		resp.Reason = res.Reason().String()
		resp.Message = res.Message()
	}
	return resp
}

type batchRequest struct {
	Requests []pathRequest `json:"requests"`
}

type batchResponse struct {
	Results []pathResponse `json:"results"`
}

type moveRequest struct {
	Target *vec2 `json:"target"`
}

type agentResponse struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	Strategy  string `json:"strategy"`
	Position  vec2   `json:"position"`
	Waypoints []vec2 `json:"waypoints"`
}

func newAgentResponse(f *agent.Follower) agentResponse {
	return agentResponse{
		ID:        f.ID(),
		State:     f.State().String(),
		Strategy:  f.Strategy(),
		Position:  fromGeo(f.Position()),
		Waypoints: fromPath(f.Waypoints()),
	}
}

type agentsResponse struct {
	Agents []agentResponse `json:"agents"`
}

type boundsDTO struct {
	MinX int32 `json:"min_x"`
	MinY int32 `json:"min_y"`
	MaxX int32 `json:"max_x"`
	MaxY int32 `json:"max_y"`
}

type worldResponse struct {
	Loaded      bool       `json:"loaded"`
	Fingerprint string     `json:"fingerprint"`
	Layers      []string   `json:"layers"`
	Bounds      *boundsDTO `json:"bounds,omitempty"`
	Strategies  []string   `json:"strategies"`
}

func newWorldResponse(snap *geo.Snapshot) worldResponse {
	resp := worldResponse{
		Loaded:      len(snap.Names()) > 0,
		Fingerprint: snap.Fingerprint(),
		Layers:      snap.Names(),
		Strategies:  pathfind.Strategies(),
	}
	if resp.Layers == nil {
		resp.Layers = []string{}
	}
	if b, ok := snap.Bounds(); ok {
		resp.Bounds = &boundsDTO{MinX: b.Min.X, MinY: b.Min.Y, MaxX: b.Max.X, MaxY: b.Max.Y}
	}
	return resp
}
