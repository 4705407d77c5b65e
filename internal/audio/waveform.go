package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// LoadWaveform reads 16-bit PCM WAV samples normalized to [-1, 1], channels
// interleaved. Other encodings are rejected; route them through their sox
// conversion pipe first. LoadWaveform satisfies corpus.WaveformFunc.
func LoadWaveform(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w, err := readWAV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if w.format != formatPCM || w.bitDepth != 16 {
		return nil, fmt.Errorf("%s: waveform loading needs 16-bit PCM", path)
	}
	if _, err := f.Seek(w.dataOffset, io.SeekStart); err != nil {
		return nil, err
	}
	raw := make([]byte, w.dataSize)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, fmt.Errorf("%s: read samples: %w", path, err)
	}

	samples := make([]float64, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[2*i : 2*i+2]))
		samples[i] = float64(v) / 32768
	}
	return samples, nil
}
