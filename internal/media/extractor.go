package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Frame is a single sampled video frame encoded as JPEG.
type Frame struct {
	Number int // frame number in the source video
	Data   []byte
}

type FrameExtractor struct {
	ffmpegPath string
	tempDir    string
	frameSize  int
}

func NewFrameExtractor(tempDir string, frameSize int) (*FrameExtractor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "autovision-frames")
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}

	return &FrameExtractor{
		ffmpegPath: ffmpegPath,
		tempDir:    tempDir,
		frameSize:  frameSize,
	}, nil
}

// SampleFrames extracts every samplingRate-th frame as a JPEG, scaled down to
// at most frameSize pixels on the long edge. Frame numbers refer to positions
// in the source video.
func (fe *FrameExtractor) SampleFrames(ctx context.Context, videoPath string, samplingRate int) ([]Frame, error) {
	if samplingRate <= 0 {
		samplingRate = 1
	}
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("video file not accessible: %w", err)
	}

	outDir, err := os.MkdirTemp(fe.tempDir, "sample-")
	if err != nil {
		return nil, fmt.Errorf("create frame directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	pattern := filepath.Join(outDir, "frame_%06d.jpg")
	args := []string{
		"-i", videoPath,
		"-vf", fmt.Sprintf("select=not(mod(n\\,%d)),scale='min(%d,iw)':-2", samplingRate, fe.frameSize),
		"-vsync", "vfr",
		"-q:v", "2",
		"-f", "image2",
		pattern,
	}

	cmd := exec.CommandContext(ctx, fe.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg sample frames: %w: %s", err, lastLine(stderr.String()))
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("read frame directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	frames := make([]Frame, 0, len(entries))
	for i, entry := range entries {
		data, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read frame %s: %w", entry.Name(), err)
		}
		frames = append(frames, Frame{
			Number: i * samplingRate,
			Data:   data,
		})
	}

	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames extracted from %s", filepath.Base(videoPath))
	}
	return frames, nil
}

func (fe *FrameExtractor) Cleanup() error {
	return os.RemoveAll(fe.tempDir)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
