// Package main implements natnetview, a small terminal consumer of a
// NatNet stream used to exercise and demonstrate the client package.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mocapstream/natnet/pkg/client"
	"github.com/mocapstream/natnet/pkg/engine"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "version", "--version", "-v":
		printVersion()
	case "help", "--help", "-h":
		printUsage()
	case "stream":
		if err := runStream(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "natnetview: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runStream(args []string) error {
	fs := flag.NewFlagSet("stream", flag.ExitOnError)
	iface := fs.String("iface", "", "interface name or literal IPv4 address")
	server := fs.String("server", "127.0.0.1", "NatNet server IP")
	scale := fs.Float64("scale", 1.0, "uniform coordinate scale applied to every frame")
	timeout := fs.Duration("timeout", 5*time.Second, "handshake timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := engine.DefaultConfig(*iface, *server)
	cfg.ConnectTimeout = *timeout

	c := client.New(cfg)
	c.SetScale(float32(*scale))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := c.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Disconnect()

	fmt.Printf("connected to %s (protocol %v)\n", *server, c.Version())

	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Println("shutting down")
			return nil
		case <-ticker.C:
			c.Update()
			if !c.IsFrameNew() {
				continue
			}
			f, ok := c.GetFrame()
			if !ok {
				continue
			}
			fmt.Printf("frame %d: %d markers, %d rigid bodies, fps=%.1f\n",
				f.FrameNumber, len(f.Markers), len(f.RigidBodies), c.FPS())
		}
	}
}

func printVersion() {
	fmt.Printf("natnetview %s\n", version)
	fmt.Printf("Built: %s\n", buildTime)
}

func printUsage() {
	fmt.Printf(`natnetview v%s - NatNet motion-capture stream viewer

Usage:
  natnetview <command> [options]

Commands:
  stream    Connect to a NatNet server and print frames as they arrive
  version   Show version information
  help      Show this help message

Examples:
  natnetview stream --server 192.168.1.50 --iface en0 --scale 0.001

`, version)
}
