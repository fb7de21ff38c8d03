package ports

// PlaybackTransport starts and stops preview audio. Calls are fire-and-forget;
// the game never waits for playback to begin.
type PlaybackTransport interface {
	Play(url string)
	Pause()
}
