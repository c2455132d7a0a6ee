package espeak

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// decodeWAV extracts the PCM payload and sample rate from a RIFF/WAVE
// stream. espeak-ng writes a streaming header whose declared sizes may
// be bogus, so chunk sizes are trusted only when they fit the buffer.
func decodeWAV(b []byte) (pcm []byte, rate int, err error) {
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return nil, 0, errors.New("not a RIFF/WAVE stream")
	}

	pos := 12
	for pos+8 <= len(b) {
		id := string(b[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
		body := pos + 8

		switch id {
		case "fmt ":
			if body+16 > len(b) {
				return nil, 0, errors.New("truncated fmt chunk")
			}
			format := binary.LittleEndian.Uint16(b[body : body+2])
			if format != 1 { // PCM
				return nil, 0, fmt.Errorf("unsupported audio format %d", format)
			}
			rate = int(binary.LittleEndian.Uint32(b[body+4 : body+8]))
		case "data":
			end := body + size
			if size <= 0 || end > len(b) {
				end = len(b)
			}
			pcm = b[body:end]
		}

		if size <= 0 || body+size > len(b) {
			break
		}
		pos = body + size
		if size%2 == 1 { // chunks are word-aligned
			pos++
		}
	}

	if rate == 0 {
		return nil, 0, errors.New("missing fmt chunk")
	}
	if pcm == nil {
		return nil, 0, errors.New("missing data chunk")
	}
	return pcm, rate, nil
}
