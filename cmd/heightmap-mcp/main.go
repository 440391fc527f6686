package main

import (
	"fmt"
	"os"

	"github.com/ironsheep/canvas-heightmap/internal/config"
	"github.com/ironsheep/canvas-heightmap/internal/logging"
	"github.com/ironsheep/canvas-heightmap/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	args := os.Args[1:]

	// Handle --version and --help, and the export subcommand
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Printf("canvas-heightmap %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		case "export":
			if err := runExport(args[1:]); err != nil {
				fmt.Fprintf(os.Stderr, "export: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	cfg := config.Default()
	if len(args) >= 2 && (args[0] == "--config" || args[0] == "-c") {
		c, err := config.Load(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		cfg = c
	}

	// Logging goes to stderr or the log file; stdout is for MCP protocol
	logging.Setup(&cfg.Logging)
	defer logging.Shutdown()
	if os.Getenv("HEIGHTMAP_LOG_LEVEL") == "debug" {
		logging.SetLevel(logging.DebugLevel)
	}
	logging.Debugf("Canvas Heightmap Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		logging.Errorf("Server error: %v", err)
		logging.Shutdown()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("canvas-heightmap - MCP server turning images into height data")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  canvas-heightmap [--config FILE]     Run the MCP server on stdin/stdout")
	fmt.Println("  canvas-heightmap export [options]    Write height grids to files")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config, -c FILE  TOML configuration file")
	fmt.Println("  --version, -v      Print version information")
	fmt.Println("  --help, -h         Print this help message")
	fmt.Println()
	fmt.Println("Export options (canvas-heightmap export -h for details):")
	fmt.Println("  -in SRC            Image path or URL (required)")
	fmt.Println("  -out PREFIX        Output file prefix (required)")
	fmt.Println("  -views LIST        Comma-separated: average,red,green,blue,alpha (default average)")
	fmt.Println("  -region X,Y,W,H    Region to extract (default full image)")
	fmt.Println("  -smooth R          Gaussian blur radius applied while drawing")
	fmt.Println("  -format FMT        json or png (default png)")
	fmt.Println("  -config FILE       TOML configuration ([source] limits, [render] smooth)")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  HEIGHTMAP_LOG_LEVEL=debug    Enable debug logging")
}
