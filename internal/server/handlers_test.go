package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ironsheep/canvas-heightmap/internal/config"
)

// createTestImageFile writes a PNG with a black left half and a white right
// half and returns its path.
func createTestImageFile(t *testing.T, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if x >= width/2 {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "black-and-white.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool sends a tools/call request and decodes the text content of a
// successful response into out.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) *MCPError {
	t.Helper()

	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		return resp.Error
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content: %v", result["content"])
	}
	if out != nil {
		text := content[0]["text"].(string)
		if err := json.Unmarshal([]byte(text), out); err != nil {
			t.Fatalf("failed to decode tool result: %v", err)
		}
	}
	return nil
}

// renderedServer returns a server whose heightmap is drawn from a
// width by height black-and-white image.
func renderedServer(t *testing.T, width, height int) *Server {
	t.Helper()
	s := New(nil)
	path := createTestImageFile(t, width, height)

	if e := callTool(t, s, "heightmap_use", map[string]interface{}{"path": path}, nil); e != nil {
		t.Fatalf("heightmap_use failed: %v", e.Data)
	}
	if e := callTool(t, s, "heightmap_draw", nil, nil); e != nil {
		t.Fatalf("heightmap_draw failed: %v", e.Data)
	}
	return s
}

type flatResponse struct {
	Region struct{ X, Y, W, H int } `json:"region"`
	Length int                      `json:"length"`
	Values []json.RawMessage        `json:"values"`
}

type gridResponse struct {
	Rows   int                 `json:"rows"`
	Values [][]json.RawMessage `json:"values"`
}

func TestHandleToolsCall_Use(t *testing.T) {
	s := New(nil)
	path := createTestImageFile(t, 100, 80)

	var info struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	}
	if e := callTool(t, s, "heightmap_use", map[string]interface{}{"path": path}, &info); e != nil {
		t.Fatalf("Unexpected error: %v", e.Data)
	}
	if info.Width != 100 || info.Height != 80 || info.Format != "png" {
		t.Errorf("info: got %+v", info)
	}

	var dims dimensionsResult
	callTool(t, s, "heightmap_dimensions", nil, &dims)
	if dims.State != "sourced" {
		t.Errorf("state: got %s, want sourced", dims.State)
	}
}

func TestHandleToolsCall_UseErrors(t *testing.T) {
	s := New(nil)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"no source", map[string]interface{}{}, "unknown source type"},
		{"both", map[string]interface{}{"path": "/a.png", "url": "http://b/c.png"}, "either"},
		{"missing file", map[string]interface{}{"path": "/nonexistent/image.png"}, "failed to load"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := callTool(t, s, "heightmap_use", tt.args, nil)
			if e == nil {
				t.Fatal("Expected error")
			}
			if e.Code != -32000 {
				t.Errorf("Code: got %d, want -32000", e.Code)
			}
			if data, _ := e.Data.(string); !strings.Contains(data, tt.want) {
				t.Errorf("Data: got %v, want it to contain %q", e.Data, tt.want)
			}
		})
	}
}

func TestHandleToolsCall_UseWithoutCache(t *testing.T) {
	data, err := os.ReadFile(createTestImageFile(t, 12, 6))
	if err != nil {
		t.Fatal(err)
	}

	// Serves the image once, then fails.
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) > 1 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer ts.Close()

	cfg := config.Default()
	noCache := false
	cfg.Source.Cache = &noCache
	s := New(cfg)

	var info struct {
		Width  int    `json:"width"`
		Format string `json:"format"`
	}
	if e := callTool(t, s, "heightmap_use", map[string]interface{}{"url": ts.URL + "/map.png"}, &info); e != nil {
		t.Fatalf("heightmap_use failed: %v", e.Data)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("fetches: got %d, want 1", n)
	}
	if info.Width != 12 || info.Format != "png" {
		t.Errorf("info: got %+v", info)
	}
	if e := callTool(t, s, "heightmap_draw", nil, nil); e != nil {
		t.Fatalf("heightmap_draw failed: %v", e.Data)
	}

	// A failing re-use leaves the rendered map in place.
	e := callTool(t, s, "heightmap_use", map[string]interface{}{"url": ts.URL + "/map.png"}, nil)
	if e == nil {
		t.Fatal("second heightmap_use should fail")
	}
	if data, _ := e.Data.(string); !strings.Contains(data, "503") {
		t.Errorf("Data: got %v, want a 503 status", e.Data)
	}

	var dims dimensionsResult
	callTool(t, s, "heightmap_dimensions", nil, &dims)
	if dims.State != "rendered" || dims.Width != 12 || dims.Height != 6 {
		t.Errorf("after failed use: got %+v", dims)
	}
}

func TestHandleToolsCall_DrawWithoutSource(t *testing.T) {
	e := callTool(t, New(nil), "heightmap_draw", nil, nil)
	if e == nil {
		t.Fatal("Expected error")
	}
	if data, _ := e.Data.(string); !strings.Contains(data, "source is not specified") {
		t.Errorf("Data: got %v", e.Data)
	}
}

func TestHandleToolsCall_DrawNegativeSmooth(t *testing.T) {
	s := renderedServer(t, 4, 4)
	if e := callTool(t, s, "heightmap_draw", map[string]interface{}{"smooth": -1}, nil); e == nil {
		t.Error("Expected error for negative smooth")
	}
}

func TestHandleToolsCall_ExtractBeforeDraw(t *testing.T) {
	s := New(nil)
	tools := []string{
		"heightmap_flat_array",
		"heightmap_flat_average_array",
		"heightmap_flat_rgba_array",
		"heightmap_average_array",
		"heightmap_rgba_array",
		"heightmap_preview",
	}

	for _, name := range tools {
		e := callTool(t, s, name, nil, nil)
		if e == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		if data, _ := e.Data.(string); !strings.Contains(data, "not ready") {
			t.Errorf("%s: got %v", name, e.Data)
		}
	}
}

func TestHandleToolsCall_FlatArray(t *testing.T) {
	s := renderedServer(t, 256, 256)

	var full flatResponse
	if e := callTool(t, s, "heightmap_flat_array", nil, &full); e != nil {
		t.Fatalf("Unexpected error: %v", e.Data)
	}
	if full.Length != 262144 || len(full.Values) != 262144 {
		t.Errorf("length: got %d (%d values), want 262144", full.Length, len(full.Values))
	}

	var crop flatResponse
	args := map[string]interface{}{"region": map[string]interface{}{"x": 32, "y": 64, "w": 64, "h": 128}}
	if e := callTool(t, s, "heightmap_flat_array", args, &crop); e != nil {
		t.Fatalf("Unexpected error: %v", e.Data)
	}
	if crop.Length != 32768 {
		t.Errorf("crop length: got %d, want 32768", crop.Length)
	}
	if string(crop.Values[3]) != "255" {
		t.Errorf("first alpha: got %s, want 255", crop.Values[3])
	}
}

func TestHandleToolsCall_PartialRegion(t *testing.T) {
	s := renderedServer(t, 20, 10)

	// Offsets alone keep the full width and height.
	var out flatResponse
	args := map[string]interface{}{"region": map[string]interface{}{"x": 5}}
	if e := callTool(t, s, "heightmap_flat_average_array", args, &out); e != nil {
		t.Fatalf("Unexpected error: %v", e.Data)
	}
	if out.Region.W != 20 || out.Region.H != 10 || out.Region.X != 5 {
		t.Errorf("region: got %+v", out.Region)
	}
	if out.Length != 200 {
		t.Errorf("length: got %d, want 200", out.Length)
	}
}

func TestHandleToolsCall_OversizedRegion(t *testing.T) {
	s := renderedServer(t, 4, 4)
	region := map[string]interface{}{"w": math.MaxInt32, "h": math.MaxInt32}

	for _, tool := range []string{"heightmap_flat_array", "heightmap_average_array", "heightmap_preview"} {
		e := callTool(t, s, tool, map[string]interface{}{"region": region}, nil)
		if e == nil {
			t.Fatalf("%s: expected error", tool)
		}
		if data, _ := e.Data.(string); !strings.Contains(data, "invalid region") {
			t.Errorf("%s: got %v, want invalid region", tool, e.Data)
		}
	}
	e := callTool(t, s, "heightmap_sample", map[string]interface{}{"x": math.MaxInt, "y": 0}, nil)
	if e == nil {
		t.Error("heightmap_sample at the coordinate limit: expected error")
	}

	var flat flatResponse
	if e := callTool(t, s, "heightmap_flat_average_array", nil, &flat); e != nil || flat.Length != 16 {
		t.Errorf("after oversized requests: length %d, error %v", flat.Length, e)
	}
}

func TestHandleToolsCall_FlatChannelArray(t *testing.T) {
	s := renderedServer(t, 8, 2)

	var out flatResponse
	args := map[string]interface{}{"channel": "red"}
	if e := callTool(t, s, "heightmap_flat_channel_array", args, &out); e != nil {
		t.Fatalf("Unexpected error: %v", e.Data)
	}
	if out.Length != 16 {
		t.Fatalf("length: got %d, want 16", out.Length)
	}
	if string(out.Values[0]) != "0" || string(out.Values[7]) != "255" {
		t.Errorf("row 0 ends: got %s and %s", out.Values[0], out.Values[7])
	}
}

func TestHandleToolsCall_UnknownChannel(t *testing.T) {
	s := renderedServer(t, 4, 4)

	for _, name := range []string{"heightmap_flat_channel_array", "heightmap_channel_array"} {
		e := callTool(t, s, name, map[string]interface{}{"channel": "unknown"}, nil)
		if e == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		if data, _ := e.Data.(string); !strings.Contains(data, "unknown channel") {
			t.Errorf("%s: got %v", name, e.Data)
		}
	}
}

func TestHandleToolsCall_FlatRGBAArray(t *testing.T) {
	s := renderedServer(t, 4, 1)

	var out struct {
		Length int        `json:"length"`
		Values [][4]uint8 `json:"values"`
	}
	if e := callTool(t, s, "heightmap_flat_rgba_array", nil, &out); e != nil {
		t.Fatalf("Unexpected error: %v", e.Data)
	}
	if out.Length != 4 {
		t.Fatalf("length: got %d, want 4", out.Length)
	}
	if out.Values[0] != [4]uint8{0, 0, 0, 255} || out.Values[3] != [4]uint8{255, 255, 255, 255} {
		t.Errorf("values: got %v", out.Values)
	}
}

func TestHandleToolsCall_Grids(t *testing.T) {
	s := renderedServer(t, 256, 256)
	region := map[string]interface{}{"x": 32, "y": 64, "w": 64, "h": 128}

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"heightmap_average_array", map[string]interface{}{"region": region}},
		{"heightmap_channel_array", map[string]interface{}{"region": region, "channel": "alpha"}},
		{"heightmap_rgba_array", map[string]interface{}{"region": region}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out gridResponse
			if e := callTool(t, s, tt.name, tt.args, &out); e != nil {
				t.Fatalf("Unexpected error: %v", e.Data)
			}
			if out.Rows != 128 || len(out.Values) != 128 {
				t.Fatalf("rows: got %d (%d values), want 128", out.Rows, len(out.Values))
			}
			for i, row := range out.Values {
				if len(row) != 64 {
					t.Fatalf("row %d: got %d elements, want 64", i, len(row))
				}
			}
		})
	}
}

func TestHandleToolsCall_Sample(t *testing.T) {
	s := renderedServer(t, 10, 10)

	var out sampleResult
	if e := callTool(t, s, "heightmap_sample", map[string]interface{}{"x": 9, "y": 3}, &out); e != nil {
		t.Fatalf("Unexpected error: %v", e.Data)
	}
	if out.Average != 255 || out.RGBA[3] != 255 {
		t.Errorf("sample: got %+v", out)
	}
}

func TestHandleToolsCall_Preview(t *testing.T) {
	s := renderedServer(t, 16, 16)

	var out struct {
		Width    int    `json:"width"`
		Height   int    `json:"height"`
		MimeType string `json:"mime_type"`
	}
	args := map[string]interface{}{"region": map[string]interface{}{"w": 8, "h": 4}, "scale": 2.0}
	if e := callTool(t, s, "heightmap_preview", args, &out); e != nil {
		t.Fatalf("Unexpected error: %v", e.Data)
	}
	if out.Width != 16 || out.Height != 8 || out.MimeType != "image/png" {
		t.Errorf("preview: got %+v", out)
	}
}

func TestHandleToolsCall_ReuseAfterResource(t *testing.T) {
	s := renderedServer(t, 6, 6)
	path := createTestImageFile(t, 3, 3)

	if e := callTool(t, s, "heightmap_use", map[string]interface{}{"path": path}, nil); e != nil {
		t.Fatalf("heightmap_use failed: %v", e.Data)
	}
	if e := callTool(t, s, "heightmap_flat_array", nil, nil); e == nil {
		t.Error("extraction after re-sourcing should fail until draw")
	}

	var dims dimensionsResult
	if e := callTool(t, s, "heightmap_draw", nil, &dims); e != nil {
		t.Fatalf("heightmap_draw failed: %v", e.Data)
	}
	if dims.State != "rendered" || dims.Width != 3 {
		t.Errorf("dimensions: got %+v", dims)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(nil)
	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`{invalid`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("got %+v, want -32602", resp.Error)
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := New(nil)
	if _, err := s.executeTool("image_crop", json.RawMessage(`{}`)); err == nil {
		t.Error("Expected error for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := renderedServer(t, 4, 4)
	for _, tool := range GetToolDefinitions() {
		if tool.Name == "heightmap_dimensions" {
			continue
		}
		if _, err := s.executeTool(tool.Name, json.RawMessage(`[1,2`)); err == nil {
			t.Errorf("%s: expected error for invalid JSON", tool.Name)
		}
	}
}
