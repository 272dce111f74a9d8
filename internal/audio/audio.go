// Package audio plays map music and sound effects. The world only sees the
// Service interface; the game owns the concrete backend.
package audio

import (
	"fmt"
	"io"
	"io/fs"
	"math"
	"path"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

const sampleRate = beep.SampleRate(44100)

// Service plays music tracks and one-shot effects by name.
type Service interface {
	PlayMusic(track string)
	PlaySFX(name string)
}

// Nop discards every request. It is used when audio is disabled and in
// headless runs.
type Nop struct{}

func (Nop) PlayMusic(string) {}
func (Nop) PlaySFX(string)   {}

// BeepService plays wav files from an fs.FS through the system speaker.
// Clips are decoded once and kept in memory.
//
// Every method is safe to call before Init or after Init failed; requests
// are then dropped.
type BeepService struct {
	mu          sync.Mutex
	fsys        fs.FS
	dir         string
	musicVol    float64
	sfxVol      float64
	log         *log.Logger
	mixer       *beep.Mixer
	clips       map[string]*beep.Buffer
	track       string
	music       *beep.Ctrl
	initialized bool
}

// NewBeepService creates a service reading "<dir>/<name>.wav" from fsys.
// Volumes are linear gains where 1 leaves the clip unchanged.
func NewBeepService(fsys fs.FS, dir string, musicVol, sfxVol float64, logger *log.Logger) *BeepService {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &BeepService{
		fsys:     fsys,
		dir:      dir,
		musicVol: musicVol,
		sfxVol:   sfxVol,
		log:      logger,
		mixer:    &beep.Mixer{},
		clips:    make(map[string]*beep.Buffer),
	}
}

// Init opens the speaker and starts the mixer.
func (s *BeepService) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("audio: init speaker: %w", err)
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// PlayMusic loops track, replacing the current one. Asking for the track
// that is already playing does nothing; an empty name stops the music.
func (s *BeepService) PlayMusic(track string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized || track == s.track {
		return
	}
	speaker.Lock()
	defer speaker.Unlock()

	s.stopMusic()
	if track == "" {
		return
	}
	buf, err := s.clip(track)
	if err != nil {
		s.log.Warn("music unavailable", "track", track, "err", err)
		return
	}
	s.track = track
	s.music = &beep.Ctrl{Streamer: beep.Loop(-1, buf.Streamer(0, buf.Len()))}
	s.mixer.Add(volume(s.music, s.musicVol))
}

// PlaySFX plays name once over the music.
func (s *BeepService) PlaySFX(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	speaker.Lock()
	defer speaker.Unlock()

	buf, err := s.clip(name)
	if err != nil {
		s.log.Debug("sound effect unavailable", "name", name, "err", err)
		return
	}
	s.mixer.Add(volume(buf.Streamer(0, buf.Len()), s.sfxVol))
}

// Track returns the music track currently playing.
func (s *BeepService) Track() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track
}

// Close silences everything. The speaker itself stays open for the life of
// the process.
func (s *BeepService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	speaker.Lock()
	s.stopMusic()
	s.mixer.Clear()
	speaker.Unlock()
	s.initialized = false
}

// stopMusic drains the current music control so the mixer drops it on its
// next pass. Callers hold the speaker lock.
func (s *BeepService) stopMusic() {
	if s.music != nil {
		s.music.Paused = true
		s.music.Streamer = nil
	}
	s.music = nil
	s.track = ""
}

// clip decodes name at the speaker's sample rate, caching the result.
func (s *BeepService) clip(name string) (*beep.Buffer, error) {
	if buf, ok := s.clips[name]; ok {
		return buf, nil
	}
	f, err := s.fsys.Open(path.Join(s.dir, name+".wav"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stream, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("audio: decode %s: %w", name, err)
	}
	defer stream.Close()

	var src beep.Streamer = stream
	if format.SampleRate != sampleRate {
		src = beep.Resample(4, format.SampleRate, sampleRate, stream)
	}
	format.SampleRate = sampleRate
	buf := beep.NewBuffer(format)
	buf.Append(src)
	s.clips[name] = buf
	return buf, nil
}

// volume scales s by a linear gain. Zero or less is silence.
func volume(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}
