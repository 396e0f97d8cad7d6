package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Metadata holds the stream properties we persist with each video.
type Metadata struct {
	DurationSeconds float64
	FPS             float64
	Width           int
	Height          int
}

func (m Metadata) Resolution() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// Probe extracts duration, frame rate and resolution with ffprobe.
func Probe(ctx context.Context, videoPath string) (Metadata, error) {
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return Metadata{}, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1",
		videoPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Metadata{}, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return parseProbeOutput(stdout.String())
}

func parseProbeOutput(output string) (Metadata, error) {
	var meta Metadata
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, "=")
		if !found || value == "" || value == "N/A" {
			continue
		}
		switch key {
		case "width":
			meta.Width, _ = strconv.Atoi(value)
		case "height":
			meta.Height, _ = strconv.Atoi(value)
		case "duration":
			meta.DurationSeconds, _ = strconv.ParseFloat(value, 64)
		case "r_frame_rate":
			meta.FPS = parseFrameRate(value)
		}
	}

	if meta.DurationSeconds <= 0 {
		return meta, fmt.Errorf("invalid video duration: %f", meta.DurationSeconds)
	}
	return meta, nil
}

// parseFrameRate handles ffprobe's rational notation, e.g. "30000/1001".
func parseFrameRate(value string) float64 {
	num, den, found := strings.Cut(value, "/")
	if !found {
		fps, _ := strconv.ParseFloat(value, 64)
		return fps
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
