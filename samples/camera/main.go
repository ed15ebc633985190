// Command camera streams a directory of JPEG files to a dispatch server,
// either in fan-out mode or targeted at a single expert. It is a sample
// data producer, not part of the server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Mentat-Vision/moe/client"
)

func main() {
	server := flag.String("server", "", "dispatch server address (host:port)")
	cameraID := flag.String("camera", "cam1", "camera identifier")
	name := flag.String("name", "", "human-readable camera name")
	dir := flag.String("dir", ".", "directory of JPEG frames to stream")
	expert := flag.String("expert", "", "target a single expert instead of fan-out")
	interval := flag.Duration("interval", 100*time.Millisecond, "delay between frames")
	flag.Parse()

	if *server == "" {
		log.Fatal("--server is required")
	}

	frames, err := listJPEGs(*dir)
	if err != nil {
		log.Fatalf("Failed to list frames: %v", err)
	}
	if len(frames) == 0 {
		log.Fatalf("No JPEG files in %s", *dir)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	c, err := client.Connect(ctx, *server)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer c.Close()

	if err := c.Register(*cameraID, *name); err != nil {
		log.Fatalf("Failed to register: %v", err)
	}

	// Print everything the server sends back.
	go func() {
		for {
			msg, err := c.Recv()
			if err != nil {
				log.Printf("Connection closed: %v", err)
				os.Exit(0)
			}
			log.Printf("<- %v", msg)
		}
	}()

	for i := 0; ; i++ {
		data, err := os.ReadFile(frames[i%len(frames)])
		if err != nil {
			log.Fatalf("Failed to read frame: %v", err)
		}

		if *expert == "" {
			err = c.SendFrame(data)
		} else {
			err = c.SendExpertFrame(*expert, *cameraID, data)
		}
		if err != nil {
			log.Fatalf("Failed to send frame: %v", err)
		}

		time.Sleep(*interval)
	}
}

func listJPEGs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var frames []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".jpg" || ext == ".jpeg" {
			frames = append(frames, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(frames)
	return frames, nil
}
