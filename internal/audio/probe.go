package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spokenlab/corpuskit/internal/corpus"
)

// wav format codes from the RIFF spec.
const (
	formatPCM        = 1
	formatIEEEFloat  = 3
	formatExtensible = 0xFFFE
)

// Probe reads sound file metadata. WAV headers are parsed directly; every
// other format shells out to soxi. Probe satisfies corpus.InfoFunc.
func Probe(path string) (*corpus.SoundInfo, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return probeWAV(path)
	}
	return probeSoxi(path)
}

func probeWAV(path string) (*corpus.SoundInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w, err := readWAV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	duration := 0.0
	if w.blockAlign > 0 && w.sampleRate > 0 {
		frames := w.dataSize / uint32(w.blockAlign)
		duration = float64(frames) / float64(w.sampleRate)
	} else if w.byteRate > 0 {
		duration = float64(w.dataSize) / float64(w.byteRate)
	}

	info := &corpus.SoundInfo{
		Duration:    duration,
		SampleRate:  int(w.sampleRate),
		NumChannels: int(w.channels),
		BitDepth:    int(w.bitDepth),
		Format:      "WAV",
	}
	// Feature extraction wants 16-bit PCM; anything else goes through sox.
	if w.bitDepth != 16 || w.format != formatPCM {
		info.SoxString = soxConvert(path)
	}
	return info, nil
}

// soxConvert is the pipe command downstream feature extraction prepends for
// audio that is not already 16-bit PCM WAV.
func soxConvert(path string) string {
	return fmt.Sprintf("sox %s -t wav -b 16 - |", path)
}

// wavFormat is the decoded fmt chunk plus the location of the data payload.
type wavFormat struct {
	format     uint16
	channels   uint16
	sampleRate uint32
	byteRate   uint32
	blockAlign uint16
	bitDepth   uint16
	dataOffset int64
	dataSize   uint32
}

// readWAV walks the RIFF chunk list and records the fmt fields and data
// payload location. Chunks are word-aligned, so odd sizes skip a pad byte.
func readWAV(f *os.File) (*wavFormat, error) {
	var header [12]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return nil, fmt.Errorf("read RIFF header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF WAVE file")
	}

	w := &wavFormat{}
	haveFmt, haveData := false, false
	offset := int64(12)
	for !(haveFmt && haveData) {
		var chunk [8]byte
		if _, err := io.ReadFull(f, chunk[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, err
		}
		offset += 8
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])
		skip := int64(size)
		if size%2 == 1 {
			skip++
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("fmt chunk too small")
			}
			buf := make([]byte, size)
			if _, err := io.ReadFull(f, buf); err != nil {
				return nil, fmt.Errorf("read fmt chunk: %w", err)
			}
			w.format = binary.LittleEndian.Uint16(buf[0:2])
			w.channels = binary.LittleEndian.Uint16(buf[2:4])
			w.sampleRate = binary.LittleEndian.Uint32(buf[4:8])
			w.byteRate = binary.LittleEndian.Uint32(buf[8:12])
			w.blockAlign = binary.LittleEndian.Uint16(buf[12:14])
			w.bitDepth = binary.LittleEndian.Uint16(buf[14:16])
			if w.format == formatExtensible && size >= 26 {
				// The real codec sits in the first subformat GUID bytes.
				w.format = binary.LittleEndian.Uint16(buf[24:26])
			}
			if size%2 == 1 {
				if _, err := f.Seek(1, io.SeekCurrent); err != nil {
					return nil, err
				}
			}
			haveFmt = true
		case "data":
			w.dataOffset = offset
			w.dataSize = size
			haveData = true
			if _, err := f.Seek(skip, io.SeekCurrent); err != nil {
				return nil, err
			}
		default:
			if _, err := f.Seek(skip, io.SeekCurrent); err != nil {
				return nil, err
			}
		}
		offset += skip
	}
	if !haveFmt || !haveData {
		return nil, fmt.Errorf("missing fmt or data chunk")
	}
	return w, nil
}
