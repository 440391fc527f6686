package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/canvas-heightmap/internal/heightmap"
	"github.com/ironsheep/canvas-heightmap/internal/imaging"
	"github.com/ironsheep/canvas-heightmap/internal/pixels"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "heightmap_use").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Source and surface
	case "heightmap_use":
		return s.handleUse(args)
	case "heightmap_draw":
		return s.handleDraw(args)
	case "heightmap_dimensions":
		return s.dimensions(), nil

	// Flat views
	case "heightmap_flat_array":
		return s.handleFlatArray(args)
	case "heightmap_flat_channel_array":
		return s.handleFlatChannelArray(args)
	case "heightmap_flat_average_array":
		return s.handleFlatAverageArray(args)
	case "heightmap_flat_rgba_array":
		return s.handleFlatRGBAArray(args)

	// Grid views
	case "heightmap_channel_array":
		return s.handleChannelArray(args)
	case "heightmap_average_array":
		return s.handleAverageArray(args)
	case "heightmap_rgba_array":
		return s.handleRGBAArray(args)

	// Helpers
	case "heightmap_sample":
		return s.handleSample(args)
	case "heightmap_preview":
		return s.handlePreview(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// byteValues widens bytes to ints so they marshal as a JSON number array
// rather than a base64 string.
func byteValues(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

func byteRows(rows [][]byte) [][]int {
	out := make([][]int, len(rows))
	for i, row := range rows {
		out[i] = byteValues(row)
	}
	return out
}

// === Source and Surface Handlers ===

type useArgs struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

func (s *Server) handleUse(args json.RawMessage) (interface{}, error) {
	var a useArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var ref string
	switch {
	case a.Path != "" && a.URL != "":
		return nil, fmt.Errorf("provide either path or url, not both")
	case a.Path != "":
		ref = a.Path
	case a.URL != "":
		ref = a.URL
	default:
		return nil, fmt.Errorf("%w: path or url is required", heightmap.ErrUnknownSourceType)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Source.Timeout())
	defer cancel()

	if _, err := s.hm.Use(ctx, heightmap.URL(ref)); err != nil {
		return nil, err
	}
	return s.hm.Info(), nil
}

type drawArgs struct {
	Smooth *float64 `json:"smooth"`
}

type dimensionsResult struct {
	State  string `json:"state"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *Server) handleDraw(args json.RawMessage) (interface{}, error) {
	var a drawArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts := imaging.RenderOptions{Smooth: s.cfg.Render.Smooth}
	if a.Smooth != nil {
		if *a.Smooth < 0 {
			return nil, fmt.Errorf("smooth must be >= 0, got %v", *a.Smooth)
		}
		opts.Smooth = *a.Smooth
	}
	if _, err := s.hm.DrawWith(opts); err != nil {
		return nil, err
	}
	return s.dimensions(), nil
}

func (s *Server) dimensions() *dimensionsResult {
	return &dimensionsResult{
		State:  s.hm.State().String(),
		Width:  s.hm.Width(),
		Height: s.hm.Height(),
	}
}

// === Extraction Handlers ===

type regionArgs struct {
	Region *pixels.RegionSpec `json:"region,omitempty"`
}

type channelArgs struct {
	Channel string             `json:"channel"`
	Region  *pixels.RegionSpec `json:"region,omitempty"`
}

type flatResult struct {
	Region pixels.Region `json:"region"`
	Length int           `json:"length"`
	Values interface{}   `json:"values"`
}

type gridResult struct {
	Region pixels.Region `json:"region"`
	Rows   int           `json:"rows"`
	Values interface{}   `json:"values"`
}

// region resolves an optional spec against the rendered extent.
func (s *Server) region(spec *pixels.RegionSpec) *pixels.Region {
	r := spec.Resolve(s.hm.Width(), s.hm.Height())
	return &r
}

func (s *Server) parseRegion(args json.RawMessage) (*pixels.Region, error) {
	var a regionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.region(a.Region), nil
}

func (s *Server) parseChannel(args json.RawMessage) (pixels.Channel, *pixels.Region, error) {
	var a channelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return 0, nil, err
	}
	ch, err := pixels.ParseChannel(a.Channel)
	if err != nil {
		return 0, nil, err
	}
	return ch, s.region(a.Region), nil
}

func (s *Server) handleFlatArray(args json.RawMessage) (interface{}, error) {
	r, err := s.parseRegion(args)
	if err != nil {
		return nil, err
	}
	buf, err := s.hm.FlatArray(r)
	if err != nil {
		return nil, err
	}
	return &flatResult{Region: *r, Length: len(buf), Values: byteValues(buf)}, nil
}

func (s *Server) handleFlatChannelArray(args json.RawMessage) (interface{}, error) {
	ch, r, err := s.parseChannel(args)
	if err != nil {
		return nil, err
	}
	vals, err := s.hm.FlatChannelArray(ch, r)
	if err != nil {
		return nil, err
	}
	return &flatResult{Region: *r, Length: len(vals), Values: byteValues(vals)}, nil
}

func (s *Server) handleFlatAverageArray(args json.RawMessage) (interface{}, error) {
	r, err := s.parseRegion(args)
	if err != nil {
		return nil, err
	}
	vals, err := s.hm.FlatAverageArray(r)
	if err != nil {
		return nil, err
	}
	return &flatResult{Region: *r, Length: len(vals), Values: byteValues(vals)}, nil
}

func (s *Server) handleFlatRGBAArray(args json.RawMessage) (interface{}, error) {
	r, err := s.parseRegion(args)
	if err != nil {
		return nil, err
	}
	vals, err := s.hm.FlatRGBAArray(r)
	if err != nil {
		return nil, err
	}
	return &flatResult{Region: *r, Length: len(vals), Values: vals}, nil
}

func (s *Server) handleChannelArray(args json.RawMessage) (interface{}, error) {
	ch, r, err := s.parseChannel(args)
	if err != nil {
		return nil, err
	}
	rows, err := s.hm.ChannelArray(ch, r)
	if err != nil {
		return nil, err
	}
	return &gridResult{Region: *r, Rows: len(rows), Values: byteRows(rows)}, nil
}

func (s *Server) handleAverageArray(args json.RawMessage) (interface{}, error) {
	r, err := s.parseRegion(args)
	if err != nil {
		return nil, err
	}
	rows, err := s.hm.AverageArray(r)
	if err != nil {
		return nil, err
	}
	return &gridResult{Region: *r, Rows: len(rows), Values: byteRows(rows)}, nil
}

func (s *Server) handleRGBAArray(args json.RawMessage) (interface{}, error) {
	r, err := s.parseRegion(args)
	if err != nil {
		return nil, err
	}
	rows, err := s.hm.RGBAArray(r)
	if err != nil {
		return nil, err
	}
	return &gridResult{Region: *r, Rows: len(rows), Values: rows}, nil
}

// === Helper Handlers ===

type sampleArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type sampleResult struct {
	X       int         `json:"x"`
	Y       int         `json:"y"`
	RGBA    pixels.RGBA `json:"rgba"`
	Average int         `json:"average"`
}

func (s *Server) handleSample(args json.RawMessage) (interface{}, error) {
	var a sampleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p, err := s.hm.Sample(a.X, a.Y)
	if err != nil {
		return nil, err
	}
	return &sampleResult{X: a.X, Y: a.Y, RGBA: p, Average: int(p.Average())}, nil
}

type previewArgs struct {
	Region *pixels.RegionSpec `json:"region,omitempty"`
	Scale  float64            `json:"scale"`
}

func (s *Server) handlePreview(args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	rows, err := s.hm.AverageArray(s.region(a.Region))
	if err != nil {
		return nil, err
	}
	return imaging.Preview(rows, a.Scale)
}
