package analysis

// Frame is a snapshot of a Handle ready to be sent to a visualizer. In
// JSON Frequency is base64 encoded.
type Frame struct {
	Level     float64   `json:"level"`
	Frequency []byte    `json:"frequency"`
	Waveform  []float64 `json:"waveform"`
}

func Capture(h Handle) (Frame, bool) {
	if h == nil || h.Closed() {
		return Frame{}, false
	}
	frequency := h.ByteFrequencyData()
	waveform := h.TimeDomainData()
	if frequency == nil || waveform == nil {
		return Frame{}, false
	}
	return Frame{
		Level:     h.Level(),
		Frequency: frequency,
		Waveform:  waveform,
	}, true
}
