package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// writeClip encodes a short silent wav into dir.
func writeClip(t *testing.T, dir, name string) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name+".wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	format := beep.Format{SampleRate: 22050, NumChannels: 1, Precision: 2}
	if err := wav.Encode(f, beep.Silence(2205), format); err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
}

// newTestService returns a service whose mixer is never attached to a
// speaker.
func newTestService(t *testing.T, clips ...string) *BeepService {
	t.Helper()
	dir := t.TempDir()
	for _, c := range clips {
		writeClip(t, dir, c)
	}
	s := NewBeepService(os.DirFS(dir), ".", 1, 0.5, nil)
	s.initialized = true
	return s
}

func drain(m *beep.Mixer) {
	samples := make([][2]float64, 256)
	m.Stream(samples)
}

func TestNop(t *testing.T) {
	var s Service = Nop{}
	s.PlayMusic("town")
	s.PlaySFX("arrow")
}

func TestBeepService_UninitializedDropsRequests(t *testing.T) {
	s := NewBeepService(os.DirFS(t.TempDir()), ".", 1, 1, nil)
	s.PlayMusic("town")
	s.PlaySFX("arrow")
	s.Close()
	if s.Track() != "" || s.mixer.Len() != 0 {
		t.Errorf("uninitialized service played track=%q streams=%d", s.Track(), s.mixer.Len())
	}
}

func TestBeepService_SameTrackDoesNotRestart(t *testing.T) {
	s := newTestService(t, "town", "cave")

	s.PlayMusic("town")
	first := s.music
	s.PlayMusic("town")
	if s.music != first || s.mixer.Len() != 1 {
		t.Fatalf("replaying the current track restarted it (streams=%d)", s.mixer.Len())
	}

	s.PlayMusic("cave")
	if s.Track() != "cave" || first.Streamer != nil {
		t.Fatalf("track = %q, old music still attached", s.Track())
	}
	drain(s.mixer)
	if s.mixer.Len() != 1 {
		t.Errorf("streams after switch = %d, want 1", s.mixer.Len())
	}
}

func TestBeepService_EmptyTrackStops(t *testing.T) {
	s := newTestService(t, "town")
	s.PlayMusic("town")
	s.PlayMusic("")
	drain(s.mixer)
	if s.Track() != "" || s.mixer.Len() != 0 {
		t.Errorf("track = %q streams = %d after stop", s.Track(), s.mixer.Len())
	}
}

func TestBeepService_MissingClip(t *testing.T) {
	s := newTestService(t)
	s.PlayMusic("nowhere")
	s.PlaySFX("nothing")
	if s.Track() != "" || s.mixer.Len() != 0 {
		t.Errorf("missing clips produced track=%q streams=%d", s.Track(), s.mixer.Len())
	}
}

func TestBeepService_EffectsAreCached(t *testing.T) {
	s := newTestService(t, "arrow")
	s.PlaySFX("arrow")
	s.PlaySFX("arrow")
	if len(s.clips) != 1 || s.mixer.Len() != 2 {
		t.Errorf("clips = %d streams = %d, want 1 and 2", len(s.clips), s.mixer.Len())
	}
	if s.clips["arrow"].Format().SampleRate != sampleRate {
		t.Errorf("clip not resampled to the speaker rate")
	}
}

func TestBeepService_CloseClears(t *testing.T) {
	s := newTestService(t, "town")
	s.PlayMusic("town")
	s.Close()
	if s.mixer.Len() != 0 || s.initialized {
		t.Errorf("close left %d streams", s.mixer.Len())
	}
}
