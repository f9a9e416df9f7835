package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/pixlator/internal/config"
	"github.com/ironsheep/pixlator/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("pixlator %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "convert":
			err := runConvert(os.Args[2:], os.Stdout)
			if err != nil && !errors.Is(err, flag.ErrHelp) {
				log.Fatalf("convert: %v", err)
			}
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if cfg.Debug {
		log.Printf("Pixlator MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("Upload dir: %s, timeout %s, seed %d", cfg.UploadDir, cfg.ProcessTimeout, cfg.ClusterSeed)
	}

	server.Version = Version
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Server setup failed: %v", err)
	}
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printHelp() {
	fmt.Println("pixlator - turn images into numbered pixel patterns")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pixlator [options]                 Run the MCP server on stdin/stdout")
	fmt.Println("  pixlator convert [flags] <image>   Convert one image and write the results")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  PIXLATOR_LOG_LEVEL=debug          Enable debug logging")
	fmt.Println("  PIXLATOR_UPLOAD_DIR               Storage directory (default uploads)")
	fmt.Println("  PIXLATOR_MAX_FILE_SIZE            Upload limit in bytes (default 10485760)")
	fmt.Println("  PIXLATOR_DEFAULT_MAX_SIZE         Default pattern edge (default 100)")
	fmt.Println("  PIXLATOR_MAX_PROCESSING_SIZE      Largest allowed pattern edge (default 500)")
	fmt.Println("  PIXLATOR_RETENTION_DAYS           Delete files older than this; 0 keeps all (default 7)")
	fmt.Println("  PIXLATOR_PROCESS_TIMEOUT          Processing time limit (default 60s)")
	fmt.Println("  PIXLATOR_CLUSTER_SEED             Seed for color reduction (default 0)")
	fmt.Println()
	fmt.Println("Run 'pixlator convert -h' for converter flags.")
}
