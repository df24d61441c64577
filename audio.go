package reel

// Audio is the playback collaborator consumed by the playSfx, playMusic and
// stopMusic actions. Calls are fire-and-forget: the interpreter logs a
// returned error and moves on, it never propagates into the action chain.
type Audio interface {
	PlaySfx(id string, volume float64) error
	PlayMusic(id string, loop bool, volume float64) error
	StopMusic() error
}

// NopAudio discards all playback requests. It is the default collaborator
// for headless runtimes and tests.
type NopAudio struct{}

func (NopAudio) PlaySfx(string, float64) error         { return nil }
func (NopAudio) PlayMusic(string, bool, float64) error { return nil }
func (NopAudio) StopMusic() error                      { return nil }
