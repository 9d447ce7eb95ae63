package playback

import "github.com/gordonklaus/portaudio"

// Device is the audio device contract: open a stereo float32 output
// stream at (sampleRate, framesPerBuffer) and drive pull once per
// device-side callback invocation to obtain the next length-2*blockSize
// interleaved L/R block.
type Device interface {
	Open(sampleRate, blockSize int, pull func() []float32) error
	Close() error
}

// PortAudioDevice is the default cross-platform Device, backed by
// PortAudio's pull-callback output stream.
type PortAudioDevice struct {
	stream *portaudio.Stream
}

// Open initializes PortAudio and starts a stereo float32 output stream.
func (d *PortAudioDevice) Open(sampleRate, blockSize int, pull func() []float32) error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	cb := func(out []float32) {
		copy(out, pull())
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, float64(sampleRate), blockSize, cb)
	if err != nil {
		_ = portaudio.Terminate()
		return err
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return err
	}
	d.stream = stream
	return nil
}

// Close stops the stream and terminates the PortAudio session.
func (d *PortAudioDevice) Close() error {
	if d.stream == nil {
		return nil
	}
	if err := d.stream.Stop(); err != nil {
		return err
	}
	if err := d.stream.Close(); err != nil {
		return err
	}
	d.stream = nil
	return portaudio.Terminate()
}
