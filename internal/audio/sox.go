package audio

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spokenlab/corpuskit/internal/corpus"
)

// soxAvailable caches whether sox is in PATH (checked once at startup).
var soxAvailable *bool

// CheckSox checks if sox is available in PATH. Directory scanning admits
// non-WAV audio only when it is.
func CheckSox() bool {
	if soxAvailable != nil {
		return *soxAvailable
	}
	_, err := exec.LookPath("sox")
	avail := err == nil
	soxAvailable = &avail
	return avail
}

// soxiAvailable caches whether soxi is in PATH (checked once).
var soxiAvailable *bool

// CheckSoxi checks if soxi is available in PATH.
func CheckSoxi() bool {
	if soxiAvailable != nil {
		return *soxiAvailable
	}
	_, err := exec.LookPath("soxi")
	avail := err == nil
	soxiAvailable = &avail
	return avail
}

// probeSoxi shells out to soxi for formats the native prober cannot read.
// Non-WAV audio always gets a sox conversion pipe.
func probeSoxi(path string) (*corpus.SoundInfo, error) {
	if !CheckSoxi() {
		return nil, fmt.Errorf("%s: soxi not found in PATH", path)
	}
	duration, err := soxiFloat(path, "-D")
	if err != nil {
		return nil, err
	}
	rate, err := soxiInt(path, "-r")
	if err != nil {
		return nil, err
	}
	channels, err := soxiInt(path, "-c")
	if err != nil {
		return nil, err
	}
	bits, err := soxiInt(path, "-b")
	if err != nil {
		return nil, err
	}
	format := strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))
	return &corpus.SoundInfo{
		Duration:    duration,
		SampleRate:  rate,
		NumChannels: channels,
		BitDepth:    bits,
		Format:      format,
		SoxString:   soxConvert(path),
	}, nil
}

func soxiQuery(path, flag string) (string, error) {
	out, err := exec.Command("soxi", flag, path).Output()
	if err != nil {
		return "", fmt.Errorf("soxi %s %s: %w", flag, path, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func soxiFloat(path, flag string) (float64, error) {
	s, err := soxiQuery(path, flag)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("soxi %s %s: bad output %q", flag, path, s)
	}
	return v, nil
}

func soxiInt(path, flag string) (int, error) {
	v, err := soxiFloat(path, flag)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
