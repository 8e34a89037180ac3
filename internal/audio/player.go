package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/xtding233/suika-backend/internal/game"
)

type Config struct {
	SampleRate    int
	MasterVolume  float64
	EffectVolumes map[Cue]float64 // missing cues play at 1.0
}

func DefaultConfig() Config {
	return Config{
		SampleRate:   44100,
		MasterVolume: 0.5,
		EffectVolumes: map[Cue]float64{
			CueDrop:     0.4,
			CueBomb:     0.8,
			CueGameOver: 0.8,
		},
	}
}

func (c Config) Volume(cue Cue) float64 {
	v, ok := c.EffectVolumes[cue]
	if !ok {
		v = 1
	}
	return v * c.MasterVolume
}

// Player mixes cues into the speaker. Until Initialize succeeds it only
// counts what it would have played, which keeps headless runs silent.
type Player struct {
	cfg Config

	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	played      map[Cue]int
}

func NewPlayer(cfg Config) *Player {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultConfig().SampleRate
	}
	return &Player{cfg: cfg, mixer: &beep.Mixer{}, played: make(map[Cue]int)}
}

// Initialize opens the audio device.
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	rate := beep.SampleRate(p.cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Play implements runner.CuePlayer.
func (p *Player) Play(ev game.Event) {
	c := CueFor(ev)
	if c == CueNone {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played[c]++
	if !p.initialized {
		return
	}
	s := Build(c, ev.Rank, p.cfg)
	if s == nil {
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// Played reports how many times a cue was triggered.
func (p *Player) Played(c Cue) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played[c]
}

func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.initialized = false
}
