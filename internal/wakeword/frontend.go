package wakeword

import "math"

// Frontend turns 16 kHz PCM into classifier feature vectors.
type Frontend interface {
	// Process consumes samples from the start of chunk and returns how many
	// were consumed along with zero or more feature vectors.
	Process(chunk []int16) (consumed int, features [][]float32)
}

const (
	energyBands  = 40
	energyWindow = 2 * SamplesPerChunk
	energyBins   = energyWindow / 2
)

// EnergyFrontend computes log band energies over a 20 ms Hann window that
// advances 10 ms per chunk. One feature vector is produced every step, where
// the step is a whole number of chunks.
type EnergyFrontend struct {
	stepChunks int

	prev   []float64
	chunks int
	acc    []float64

	hann []float64
	cos  []float64
	sin  []float64
}

var _ Frontend = (*EnergyFrontend)(nil)

// NewEnergyFrontend creates a frontend emitting one vector every stepMs
// milliseconds, rounded to whole 10 ms chunks.
func NewEnergyFrontend(stepMs int) *EnergyFrontend {
	f := &EnergyFrontend{
		stepChunks: max(1, stepMs/10),
		prev:       make([]float64, SamplesPerChunk),
		acc:        make([]float64, energyBands),
		hann:       make([]float64, energyWindow),
		cos:        make([]float64, energyWindow),
		sin:        make([]float64, energyWindow),
	}
	for n := range energyWindow {
		f.hann[n] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(n)/float64(energyWindow-1))
		f.cos[n] = math.Cos(2 * math.Pi * float64(n) / energyWindow)
		f.sin[n] = math.Sin(2 * math.Pi * float64(n) / energyWindow)
	}
	return f
}

func (f *EnergyFrontend) Process(chunk []int16) (int, [][]float32) {
	if len(chunk) < SamplesPerChunk {
		return 0, nil
	}

	frame := make([]float64, energyWindow)
	copy(frame, f.prev)
	for i, s := range chunk[:SamplesPerChunk] {
		frame[SamplesPerChunk+i] = float64(s) / math.MaxInt16
		f.prev[i] = frame[SamplesPerChunk+i]
	}
	for n := range frame {
		frame[n] *= f.hann[n]
	}

	binsPerBand := energyBins / energyBands
	for k := 1; k <= energyBins; k++ {
		var re, im float64
		for n, x := range frame {
			idx := (k * n) % energyWindow
			re += x * f.cos[idx]
			im -= x * f.sin[idx]
		}
		band := min((k-1)/binsPerBand, energyBands-1)
		f.acc[band] += re*re + im*im
	}

	f.chunks++
	if f.chunks < f.stepChunks {
		return SamplesPerChunk, nil
	}

	features := make([]float32, energyBands)
	for i, e := range f.acc {
		features[i] = float32(math.Log(1e-10 + e/float64(f.chunks*binsPerBand)))
	}
	clear(f.acc)
	f.chunks = 0
	return SamplesPerChunk, [][]float32{features}
}
