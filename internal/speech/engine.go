// Package speech implements the speech coordination core: it owns the
// single synthesis engine, serializes concurrent requests to use it,
// applies and persists user settings, and stops in-progress speech by
// discarding and recreating the synthesis session.
package speech

// SessionID identifies a submitted utterance within the platform layer.
type SessionID string

// EventHandler receives asynchronous notifications from a synthesis
// session.
type EventHandler interface {
	// SpeechFinished is called when the audio for the given utterance
	// has finished playing.
	SpeechFinished(id SessionID)
}

// Engine abstracts the platform TTS subsystem.
type Engine interface {
	// Initialize prepares the process-wide subsystem. It must be
	// called once before any other method.
	Initialize() error

	// Finalize tears the subsystem down. No methods may be called
	// afterwards.
	Finalize()

	// Voices enumerates the installed voices.
	Voices() ([]Voice, error)

	// NewSession constructs a live synthesis session. A fresh session
	// starts at platform defaults; voice, rate and volume must be
	// applied before speaking.
	NewSession(handler EventHandler) (Session, error)
}

// Session is the live synthesis resource. It exposes no cancel
// operation: the only way to stop in-progress speech is Close, which
// tears the session down and halts its audio.
type Session interface {
	// SetVoice selects the speaking voice.
	SetVoice(v Voice) error

	// SetRate sets the speech rate, -10..10.
	SetRate(rate int) error

	// SetVolume sets the playback volume, 0..100.
	SetVolume(volume int) error

	// Speak submits text for asynchronous playback and returns an
	// utterance identifier. It returns as soon as the submission is
	// accepted; audio keeps playing in the background.
	Speak(text string) (SessionID, error)

	// Close releases the session and stops any in-flight audio.
	Close() error
}
