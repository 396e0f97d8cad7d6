package sniffer

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
)

type MediaType string

const (
	TypeMP4  MediaType = "mp4"
	TypeMOV  MediaType = "mov"
	TypeWEBM MediaType = "webm"
	TypeAVI  MediaType = "avi"
	TypeMPEG MediaType = "mpeg"
)

var ErrUnknownType = errors.New("unknown media type")

type Result struct {
	Type MediaType
	MIME string
}

// DetectHead identifies the video container from the first bytes of the file.
// Declared Content-Type headers are advisory only; the bytes decide.
func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	if t, ok := detectISOBMFF(head); ok {
		return t, nil
	}
	if isWEBM(head) {
		return Result{Type: TypeWEBM, MIME: "video/webm"}, nil
	}
	if isAVI(head) {
		return Result{Type: TypeAVI, MIME: "video/x-msvideo"}, nil
	}
	if isMPEG(head) {
		return Result{Type: TypeMPEG, MIME: "video/mpeg"}, nil
	}

	return Result{}, ErrUnknownType
}

// detectISOBMFF handles the MP4 family: an ftyp box whose major brand tells
// MP4 apart from QuickTime.
func detectISOBMFF(head []byte) (Result, bool) {
	if len(head) < 12 || string(head[4:8]) != "ftyp" {
		return Result{}, false
	}

	brand := string(head[8:12])
	switch {
	case strings.HasPrefix(brand, "qt"):
		return Result{Type: TypeMOV, MIME: "video/quicktime"}, true
	case brand == "isom", brand == "iso2", brand == "mp41", brand == "mp42",
		brand == "avc1", brand == "dash", strings.HasPrefix(brand, "M4V"):
		return Result{Type: TypeMP4, MIME: "video/mp4"}, true
	}
	// Unknown brand but still an ftyp container; treat as mp4.
	return Result{Type: TypeMP4, MIME: "video/mp4"}, true
}

func isWEBM(head []byte) bool {
	// EBML header shared by Matroska and WebM.
	ebml := []byte{0x1a, 0x45, 0xdf, 0xa3}
	return len(head) >= 4 && bytes.Equal(head[:4], ebml)
}

func isAVI(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("AVI "))
}

func isMPEG(head []byte) bool {
	return len(head) >= 4 &&
		head[0] == 0x00 && head[1] == 0x00 && head[2] == 0x01 &&
		(head[3] == 0xba || head[3] == 0xb3)
}

func MimeTypeFromHTTP(header http.Header) string {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return ""
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		return strings.TrimSpace(contentType[:idx])
	}
	return strings.TrimSpace(contentType)
}
