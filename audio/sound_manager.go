// Package audio plays short synthesized cues for session feedback
package audio

import (
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/composure/component"
	"github.com/lixenwraith/composure/parameter"
)

// Player mixes feedback cues into the system speaker
type Player struct {
	mu          sync.Mutex
	rate        beep.SampleRate
	volume      float64
	mixer       *beep.Mixer
	initialized bool
}

// NewPlayer creates a player, Init must succeed before cues are audible
func NewPlayer() *Player {
	return &Player{
		rate:   beep.SampleRate(parameter.AudioSampleRate),
		volume: parameter.CueVolume,
		mixer:  &beep.Mixer{},
	}
}

// Init opens the speaker
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(parameter.AudioBufferDuration)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Cue queues the tone for category, silent before Init
func (p *Player) Cue(category component.FeedbackCategory) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	s := CueSound(category, p.rate, p.volume)
	if s == nil {
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// Close drops pending cues and stops playback
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Clear()
	p.mixer.Clear()
	p.initialized = false
}

// Silent discards every cue
type Silent struct{}

func (Silent) Cue(component.FeedbackCategory) {}
