package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/google/renameio/v2"

	"github.com/satriahrh/arunika/satellite/internal/wakeword"
)

const wavHeaderSize = 44

// WAVWriter writes 16 kHz mono 16-bit PCM to a WAV file. The file only
// appears at its path once Close succeeds.
type WAVWriter struct {
	path string
	f    *renameio.PendingFile
	n    int
}

func CreateWAV(path string) (*WAVWriter, error) {
	f, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	// sizes are patched on close
	if _, err := f.Write(wavHeader(0)); err != nil {
		_ = f.Cleanup()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &WAVWriter{path: path, f: f}, nil
}

func (w *WAVWriter) Path() string {
	return w.path
}

func (w *WAVWriter) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	w.n += n
	return n, err
}

func (w *WAVWriter) Close() error {
	if _, err := w.f.WriteAt(wavHeader(w.n), 0); err != nil {
		_ = w.f.Cleanup()
		return fmt.Errorf("finalize header: %w", err)
	}
	return w.f.CloseAtomicallyReplace()
}

func wavHeader(dataSize int) []byte {
	const (
		channels      = 1
		bitsPerSample = wakeword.BytesPerSample * 8
		blockAlign    = channels * wakeword.BytesPerSample
		byteRate      = wakeword.SampleRate * blockAlign
	)
	h := make([]byte, 0, wavHeaderSize)
	h = append(h, "RIFF"...)
	h = binary.LittleEndian.AppendUint32(h, uint32(36+dataSize))
	h = append(h, "WAVEfmt "...)
	h = binary.LittleEndian.AppendUint32(h, 16)
	h = binary.LittleEndian.AppendUint16(h, 1) // PCM
	h = binary.LittleEndian.AppendUint16(h, channels)
	h = binary.LittleEndian.AppendUint32(h, wakeword.SampleRate)
	h = binary.LittleEndian.AppendUint32(h, byteRate)
	h = binary.LittleEndian.AppendUint16(h, blockAlign)
	h = binary.LittleEndian.AppendUint16(h, bitsPerSample)
	h = append(h, "data"...)
	h = binary.LittleEndian.AppendUint32(h, uint32(dataSize))
	return h
}
