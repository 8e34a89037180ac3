// Package audio turns game events into short synthesized sound cues.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"

	"github.com/xtding233/suika-backend/internal/game"
)

type Cue int

const (
	CueNone Cue = iota
	CueDrop
	CueMerge
	CueMaxRank
	CueBomb
	CueRainbow
	CueAchievement
	CueGameOver
)

// CueFor maps an event to its cue. Events without a sound map to CueNone.
func CueFor(ev game.Event) Cue {
	switch ev.Kind {
	case game.EventDrop:
		return CueDrop
	case game.EventMerge:
		return CueMerge
	case game.EventMaxRank:
		return CueMaxRank
	case game.EventBomb:
		return CueBomb
	case game.EventRainbow:
		if ev.Active {
			return CueRainbow
		}
	case game.EventAchievement:
		return CueAchievement
	case game.EventGameOver:
		return CueGameOver
	}
	return CueNone
}

// mergeFreq rises a semitone per rank from C5.
func mergeFreq(rank int) float64 {
	return 523.25 * math.Pow(2, float64(rank)/12)
}

// Build synthesizes a cue. rank only affects merge pitch.
func Build(c Cue, rank int, cfg Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)
	var s beep.Streamer
	switch c {
	case CueDrop:
		s = tone(220, 60*time.Millisecond, 5*time.Millisecond, 40*time.Millisecond, WaveSquare, rate)
	case CueMerge:
		f := mergeFreq(rank)
		s = beep.Mix(
			newVolume(tone(f, 150*time.Millisecond, 5*time.Millisecond, 120*time.Millisecond, WaveSine, rate), 0.7),
			newVolume(tone(2*f, 150*time.Millisecond, 5*time.Millisecond, 80*time.Millisecond, WaveSine, rate), 0.3),
		)
	case CueMaxRank:
		s = beep.Seq(
			tone(523.25, 120*time.Millisecond, 5*time.Millisecond, 60*time.Millisecond, WaveSine, rate),
			tone(659.25, 120*time.Millisecond, 5*time.Millisecond, 60*time.Millisecond, WaveSine, rate),
			tone(783.99, 240*time.Millisecond, 5*time.Millisecond, 180*time.Millisecond, WaveSine, rate),
		)
	case CueBomb:
		s = beep.Mix(
			tone(0, 400*time.Millisecond, 2*time.Millisecond, 350*time.Millisecond, WaveNoise, rate),
			newVolume(tone(60, 400*time.Millisecond, 2*time.Millisecond, 300*time.Millisecond, WaveSine, rate), 0.8),
		)
	case CueRainbow:
		s = beep.Seq(
			tone(880, 80*time.Millisecond, 5*time.Millisecond, 40*time.Millisecond, WaveSine, rate),
			tone(1174.66, 80*time.Millisecond, 5*time.Millisecond, 40*time.Millisecond, WaveSine, rate),
			tone(1567.98, 120*time.Millisecond, 5*time.Millisecond, 80*time.Millisecond, WaveSine, rate),
		)
	case CueAchievement:
		s = beep.Seq(
			tone(987.77, 100*time.Millisecond, 5*time.Millisecond, 40*time.Millisecond, WaveSine, rate),
			tone(1318.51, 200*time.Millisecond, 5*time.Millisecond, 150*time.Millisecond, WaveSine, rate),
		)
	case CueGameOver:
		s = beep.Seq(
			tone(392, 200*time.Millisecond, 5*time.Millisecond, 100*time.Millisecond, WaveSaw, rate),
			tone(261.63, 400*time.Millisecond, 5*time.Millisecond, 300*time.Millisecond, WaveSaw, rate),
		)
	default:
		return nil
	}
	return newVolume(s, cfg.Volume(c))
}
