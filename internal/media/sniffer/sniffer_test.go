package sniffer

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ftypHead(brand string) []byte {
	head := []byte{0x00, 0x00, 0x00, 0x20}
	head = append(head, []byte("ftyp")...)
	head = append(head, []byte(brand)...)
	return append(head, make([]byte, 16)...)
}

func TestDetectHead(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want MediaType
	}{
		{"mp4 isom", ftypHead("isom"), TypeMP4},
		{"mp4 mp42", ftypHead("mp42"), TypeMP4},
		{"mp4 unknown brand", ftypHead("zzzz"), TypeMP4},
		{"quicktime", ftypHead("qt  "), TypeMOV},
		{"webm", []byte{0x1a, 0x45, 0xdf, 0xa3, 0x01, 0x02, 0x03, 0x04}, TypeWEBM},
		{"avi", append([]byte("RIFF\x10\x00\x00\x00"), []byte("AVI ")...), TypeAVI},
		{"mpeg ps", []byte{0x00, 0x00, 0x01, 0xba, 0x44}, TypeMPEG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DetectHead(tt.head)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Type)
			assert.NotEmpty(t, result.MIME)
		})
	}
}

func TestDetectHeadUnknown(t *testing.T) {
	for _, head := range [][]byte{
		nil,
		{},
		[]byte("plain text file contents"),
		{0xff, 0xd8, 0xff, 0xe0}, // JPEG, not a video
	} {
		_, err := DetectHead(head)
		assert.ErrorIs(t, err, ErrUnknownType)
	}
}

func TestMimeTypeFromHTTP(t *testing.T) {
	header := http.Header{}
	assert.Empty(t, MimeTypeFromHTTP(header))

	header.Set("Content-Type", "video/mp4")
	assert.Equal(t, "video/mp4", MimeTypeFromHTTP(header))

	header.Set("Content-Type", "video/webm; codecs=vp9")
	assert.Equal(t, "video/webm", MimeTypeFromHTTP(header))
}
