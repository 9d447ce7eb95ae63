package devices

import "github.com/gordonklaus/portaudio"

// AudioDevice describes one portaudio device, whether or not it can be
// used as a sink for a PlaybackNode.
type AudioDevice struct {
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

func (d AudioDevice) CanInput() bool  { return d.MaxInputChannels > 0 }
func (d AudioDevice) CanOutput() bool { return d.MaxOutputChannels > 0 }

// AudioDevices lists every device portaudio knows about. It briefly
// initializes and terminates its own portaudio session, independent of
// whatever session a PlaybackNode later opens.
func AudioDevices() ([]AudioDevice, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	defer portaudio.Terminate()

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	out := make([]AudioDevice, 0, len(infos))
	for _, info := range infos {
		out = append(out, AudioDevice{
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		})
	}
	return out, nil
}

// AudioOutputs filters a device list down to those with at least one
// output channel.
func AudioOutputs(all []AudioDevice) []AudioDevice {
	var out []AudioDevice
	for _, d := range all {
		if d.CanOutput() {
			out = append(out, d)
		}
	}
	return out
}
