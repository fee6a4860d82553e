package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "check":
		err = runCheck(os.Args[2:])
	case "new":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: pubsite new <project-name>")
			os.Exit(1)
		}
		err = runNew(os.Args[2])
	case "version":
		fmt.Printf("pubsite %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`pubsite - a static multi-locale blog builder

Usage:
  pubsite <command> [arguments]

Commands:
  build [-config site.yaml]   Build the site into the output directory
  serve [-config site.yaml]   Build, then preview the site (SIGHUP rebuilds)
  check [-config site.yaml]   Validate the written RSS feeds
  new <name>                  Create a new site
  version                     Print the pubsite version
  help                        Show this help message

Every config key can be overridden with a PUBSITE_ environment variable,
e.g. PUBSITE_URL=https://example.com pubsite build.`)
}
