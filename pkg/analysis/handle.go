package analysis

// Handle is a read-only view of the live signal of the current session.
//
// Once Closed reports true every read returns nil respectively zero.
type Handle interface {
	FFTSize() int
	FrequencyBinCount() int

	// FrequencyData returns the smoothed magnitude per bin in decibels.
	FrequencyData() []float64
	// ByteFrequencyData returns FrequencyData scaled into 0..255 between
	// the configured min and max decibels.
	ByteFrequencyData() []byte
	// TimeDomainData returns the latest FFTSize samples, mono, in -1..1.
	TimeDomainData() []float64
	// Level returns the RMS of TimeDomainData.
	Level() float64

	Closed() bool
}
