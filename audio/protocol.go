// Package audio runs playback on a background worker goroutine. The game
// loop talks to the worker exclusively through two channels: commands in,
// messages out. Messages are pulled once per frame and surfaced as events.
package audio

// CommandKind enumerates host-to-worker commands.
type CommandKind uint8

const (
	CmdLoadMusic CommandKind = iota
	CmdUnloadMusic
	CmdUnloadAllMusic
	CmdPlayMusic
	CmdStopMusic
	CmdStopAllMusic
	CmdPauseMusic
	CmdResumeMusic
	CmdVolumeMusic
	CmdLoadFx
	CmdPlayFx
	CmdUnloadFx
	CmdUnloadAllFx
	CmdShutdown

	// cmdMusicFinished is posted by the finish callback so the worker
	// clears playback state on its own goroutine.
	cmdMusicFinished
)

// Command is one instruction to the worker. Fields are used per kind:
// ID and Path for loads, Looped for PlayMusic, Volume for VolumeMusic.
type Command struct {
	Kind   CommandKind
	ID     string
	Path   string
	Looped bool
	Volume float64 // [0, 1]
}

// MessageKind enumerates worker-to-host messages.
type MessageKind uint8

const (
	MsgMusicLoaded MessageKind = iota
	MsgMusicLoadFailed
	MsgMusicUnloaded
	MsgMusicUnloadedAll
	MsgMusicPlayStarted
	MsgMusicStopped
	MsgMusicFinished
	MsgMusicVolumeChanged
	MsgFxLoaded
	MsgFxLoadFailed
	MsgFxUnloaded
	MsgFxUnloadedAll
)

// Message is one notification from the worker.
type Message struct {
	Kind  MessageKind
	ID    string
	Error string
}
