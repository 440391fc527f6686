package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// regionSchema describes the optional region argument shared by the
// extraction tools.
func regionSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional rectangle to extract. Omitted x/y default to 0, omitted w/h to the full rendered width/height.",
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "integer", "description": "Left edge X coordinate (0-based)"},
			"y": map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate (0-based)"},
			"w": map[string]interface{}{"type": "integer", "description": "Width in pixels"},
			"h": map[string]interface{}{"type": "integer", "description": "Height in pixels"},
		},
	}
}

func channelSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"red", "green", "blue", "alpha"},
		"description": "Channel to extract",
	}
}

// extractionTool builds the definition of a tool that takes a region and,
// when withChannel is set, a channel.
func extractionTool(name, description string, withChannel bool) Tool {
	props := map[string]interface{}{
		"region": regionSchema(),
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if withChannel {
		props["channel"] = channelSchema()
		schema["required"] = []string{"channel"}
	}
	return Tool{Name: name, Description: description, InputSchema: schema}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Source and surface
		{
			Name:        "heightmap_use",
			Description: "Set the active heightmap source from an image file path or an http(s)/file URL. Call heightmap_draw afterwards.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"url": map[string]interface{}{
						"type":        "string",
						"description": "http, https or file URL of the image",
					},
				},
			},
		},
		{
			Name:        "heightmap_draw",
			Description: "Render the active source onto the off-screen surface. Required before any extraction.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"smooth": map[string]interface{}{
						"type":        "number",
						"description": "Optional Gaussian blur radius applied while drawing. Default from config (0)",
					},
				},
			},
		},
		{
			Name:        "heightmap_dimensions",
			Description: "Report the heightmap state (unset, sourced, rendered) and the rendered width and height.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Flat views
		extractionTool("heightmap_flat_array",
			"Get the raw RGBA bytes of a region, 4 values (0-255) per pixel in row-major order.", false),
		extractionTool("heightmap_flat_channel_array",
			"Get one channel of a region, one value (0-255) per pixel in row-major order.", true),
		extractionTool("heightmap_flat_average_array",
			"Get floor((R+G+B)/3) for each pixel of a region in row-major order. This is the height value.", false),
		extractionTool("heightmap_flat_rgba_array",
			"Get one [R,G,B,A] tuple per pixel of a region in row-major order.", false),

		// Grid views
		extractionTool("heightmap_channel_array",
			"Get one channel of a region as rows of the region width.", true),
		extractionTool("heightmap_average_array",
			"Get the RGB averages (heights) of a region as rows of the region width.", false),
		extractionTool("heightmap_rgba_array",
			"Get the [R,G,B,A] tuples of a region as rows of the region width.", false),

		// Helpers
		{
			Name:        "heightmap_sample",
			Description: "Get the RGBA value and height (RGB average) at one pixel.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        "heightmap_preview",
			Description: "Render the height (RGB average) grid of a region as a grayscale PNG, returned base64-encoded.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"region": regionSchema(),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
