package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/xtding233/suika-backend/internal/game"
)

func drain(s beep.Streamer) (int, float64) {
	buf := make([][2]float64, 512)
	total := 0
	peak := 0.0
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			if v := buf[i][0]; v > peak {
				peak = v
			} else if -v > peak {
				peak = -v
			}
		}
		total += n
		if !ok {
			return total, peak
		}
	}
}

func TestOscillatorLengthAndRange(t *testing.T) {
	rate := beep.SampleRate(44100)
	n, peak := drain(NewOscillator(440, 100*time.Millisecond, WaveSine, rate))
	if n != rate.N(100*time.Millisecond) {
		t.Fatalf("streamed %d samples, want %d", n, rate.N(100*time.Millisecond))
	}
	if peak > 1.0 || peak < 0.9 {
		t.Fatalf("sine peak %f outside (0.9, 1]", peak)
	}
}

func TestEnvelopeSilencesEdges(t *testing.T) {
	rate := beep.SampleRate(8000)
	d := 50 * time.Millisecond
	s := NewEnvelope(NewOscillator(0, d, WaveSquare, rate), d, 10*time.Millisecond, 10*time.Millisecond, rate)
	buf := make([][2]float64, rate.N(d))
	n, _ := s.Stream(buf)
	if n == 0 || buf[0][0] != 0 {
		t.Fatalf("attack should start from silence, got %v", buf[0][0])
	}
	if v := buf[n-1][0]; v > 0.05 {
		t.Fatalf("release should end near silence, got %v", v)
	}
}

func TestCueMapping(t *testing.T) {
	cases := []struct {
		ev   game.Event
		want Cue
	}{
		{game.Event{Kind: game.EventMerge, Rank: 3}, CueMerge},
		{game.Event{Kind: game.EventBomb}, CueBomb},
		{game.Event{Kind: game.EventRainbow, Active: true}, CueRainbow},
		{game.Event{Kind: game.EventRainbow, Active: false}, CueNone},
		{game.Event{Kind: game.EventScore}, CueNone},
		{game.Event{Kind: game.EventGameOver}, CueGameOver},
	}
	for _, tc := range cases {
		if got := CueFor(tc.ev); got != tc.want {
			t.Fatalf("CueFor(%s)=%d want %d", tc.ev.Kind, got, tc.want)
		}
	}
	if mergeFreq(12) < 2*mergeFreq(0)-0.01 {
		t.Fatalf("an octave above rank 0 should double the pitch")
	}
}

func TestEveryCueBuildsFiniteSound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 8000
	for c := CueDrop; c <= CueGameOver; c++ {
		s := Build(c, 4, cfg)
		if s == nil {
			t.Fatalf("cue %d built nothing", c)
		}
		n, _ := drain(s)
		if n == 0 || n > cfg.SampleRate {
			t.Fatalf("cue %d streamed %d samples", c, n)
		}
	}
	if Build(CueNone, 0, cfg) != nil {
		t.Fatalf("CueNone should build nothing")
	}
}

func TestHeadlessPlayerCounts(t *testing.T) {
	p := NewPlayer(DefaultConfig())
	p.Play(game.Event{Kind: game.EventMerge})
	p.Play(game.Event{Kind: game.EventMerge})
	p.Play(game.Event{Kind: game.EventScore})
	if p.Played(CueMerge) != 2 || p.Played(CueNone) != 0 {
		t.Fatalf("played merge=%d", p.Played(CueMerge))
	}
	p.Close()
}
