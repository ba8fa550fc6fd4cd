package config

// AudioConfig contains audio-related configuration values
type AudioConfig struct {
	SampleRate      int
	BufferMs        int // speaker buffer length; bounds DSP clock granularity
	DefaultMusicVol float64
	DefaultSFXVol   float64
	AppName         string // gdata application name for persisted settings
}

var Audio AudioConfig

func init() {
	Audio = AudioConfig{
		SampleRate:      44100,
		BufferMs:        20,
		DefaultMusicVol: 0.75,
		DefaultSFXVol:   1.0,
		AppName:         "beatboss",
	}
}
