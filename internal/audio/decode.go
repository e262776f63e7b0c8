package audio

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Format names a supported container.
type Format string

const (
	FormatMP3    Format = "mp3"
	FormatWAV    Format = "wav"
	FormatFLAC   Format = "flac"
	FormatVorbis Format = "ogg"
)

// DetectFormat sniffs the container from magic bytes, falling back to the
// source extension.
func DetectFormat(src string, data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, []byte("RIFF")) && len(data) >= 12 && string(data[8:12]) == "WAVE":
		return FormatWAV, nil
	case bytes.HasPrefix(data, []byte("fLaC")):
		return FormatFLAC, nil
	case bytes.HasPrefix(data, []byte("OggS")):
		return FormatVorbis, nil
	case bytes.HasPrefix(data, []byte("ID3")):
		return FormatMP3, nil
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3, nil
	}

	switch ext := sourceExt(src); ext {
	case ".mp3":
		return FormatMP3, nil
	case ".wav", ".wave":
		return FormatWAV, nil
	case ".flac":
		return FormatFLAC, nil
	case ".ogg", ".oga":
		return FormatVorbis, nil
	default:
		return "", fmt.Errorf("unsupported audio format for %s", src)
	}
}

func sourceExt(src string) string {
	p := src
	if u, err := url.Parse(src); err == nil && u.Path != "" {
		p = u.Path
	}
	return strings.ToLower(path.Ext(p))
}

// decodeBuffered decodes data completely into memory so the result can seek
// back to the start for looping.
func decodeBuffered(src string, data []byte) (*beep.Buffer, error) {
	f, err := DetectFormat(src, data)
	if err != nil {
		return nil, err
	}

	rc := io.NopCloser(bytes.NewReader(data))
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch f {
	case FormatMP3:
		streamer, format, err = mp3.Decode(rc)
	case FormatWAV:
		streamer, format, err = wav.Decode(rc)
	case FormatFLAC:
		streamer, format, err = flac.Decode(rc)
	case FormatVorbis:
		streamer, format, err = vorbis.Decode(rc)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s as %s: %w", src, f, err)
	}
	defer func() { _ = streamer.Close() }()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", src, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("decoding %s: no samples", src)
	}
	return buf, nil
}
