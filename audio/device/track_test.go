package device

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/gopxl/beep"
)

// pcmWAV builds a mono 16-bit PCM file holding n samples.
func pcmWAV(rate uint32, n int) []byte {
	data := make([]byte, n*2)
	var buf bytes.Buffer
	w := func(v any) { binary.Write(&buf, binary.LittleEndian, v) }
	buf.WriteString("RIFF")
	w(uint32(36 + len(data)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	w(uint32(16))
	w(uint16(1)) // PCM
	w(uint16(1)) // channels
	w(rate)
	w(rate * 2) // byte rate
	w(uint16(2))
	w(uint16(16))
	buf.WriteString("data")
	w(uint32(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func TestLoadTrackDecodesWAV(t *testing.T) {
	fsys := fstest.MapFS{"music/click.wav": {Data: pcmWAV(22050, 2205)}}
	track, err := LoadTrack(fsys, "music/click.wav")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer track.Close()

	if track.Format.SampleRate != 22050 || track.Format.NumChannels != 1 {
		t.Fatalf("format %+v", track.Format)
	}
	if track.Len() != 2205 {
		t.Fatalf("len %d, want 2205", track.Len())
	}
	if got := track.Seconds(); got != 0.1 {
		t.Fatalf("seconds %v, want 0.1", got)
	}

	s := track.Streamer(beep.SampleRate(22050), false)
	buf := make([][2]float64, 4096)
	n, _ := s.Stream(buf)
	if n != 2205 {
		t.Fatalf("streamed %d samples, want 2205", n)
	}
}

func TestLoadTrackRejectsUnknownFormats(t *testing.T) {
	fsys := fstest.MapFS{"music/fight.mp3": {Data: []byte("ID3")}}
	if _, err := LoadTrack(fsys, "music/fight.mp3"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err %v, want ErrUnsupportedFormat", err)
	}
}

func TestVolumeForSilencesZero(t *testing.T) {
	if v := volumeFor(beep.Silence(1), 0); !v.Silent {
		t.Fatalf("zero volume should be silent")
	}
	if v := volumeFor(beep.Silence(1), 1); v.Silent || v.Volume != 0 {
		t.Fatalf("full volume %+v", v)
	}
}
