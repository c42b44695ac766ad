package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
	"go.uber.org/zap"
)

const workerSampleRate = beep.SampleRate(48000)

// track is a loaded music stream with its playback controls.
type track struct {
	format   beep.Format
	streamer beep.StreamSeekCloser
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	playing  bool
}

// fx is a fully buffered sound effect.
type fx struct {
	buffer *beep.Buffer
}

// Worker owns the speaker and all loaded audio. It runs on its own
// goroutine; the only shared state is the two channels.
type Worker struct {
	commands chan Command
	messages chan Message
	log      *zap.Logger

	music map[string]*track
	fxs   map[string]*fx
	mixer *beep.Mixer
}

// NewWorker initializes the speaker and starts the worker goroutine.
// A speaker init failure is fatal to the caller.
func NewWorker(log *zap.Logger, bufferMs int) (*Worker, error) {
	if bufferMs <= 0 {
		bufferMs = 100
	}
	if err := speaker.Init(workerSampleRate, workerSampleRate.N(time.Duration(bufferMs)*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}

	w := &Worker{
		commands: make(chan Command, 64),
		messages: make(chan Message, 64),
		log:      log,
		music:    make(map[string]*track),
		fxs:      make(map[string]*fx),
		mixer:    &beep.Mixer{},
	}
	speaker.Play(w.mixer)

	go w.run()
	return w, nil
}

// Commands returns the channel the host pushes commands into.
func (w *Worker) Commands() chan<- Command { return w.commands }

// Send enqueues a command, dropping it with a log if the worker is backed up.
func (w *Worker) Send(cmd Command) {
	select {
	case w.commands <- cmd:
	default:
		w.log.Warn("audio command dropped", zap.Uint8("kind", uint8(cmd.Kind)))
	}
}

// Drain returns all messages queued since the last call. Called once per
// frame by the game loop.
func (w *Worker) Drain() []Message {
	var out []Message
	for {
		select {
		case m := <-w.messages:
			out = append(out, m)
		default:
			return out
		}
	}
}

// Shutdown stops the worker and unloads everything.
func (w *Worker) Shutdown() {
	w.Send(Command{Kind: CmdShutdown})
}

func (w *Worker) run() {
	for cmd := range w.commands {
		switch cmd.Kind {
		case CmdLoadMusic:
			w.loadMusic(cmd.ID, cmd.Path)
		case CmdUnloadMusic:
			w.unloadMusic(cmd.ID)
			w.post(Message{Kind: MsgMusicUnloaded, ID: cmd.ID})
		case CmdUnloadAllMusic:
			for id := range w.music {
				w.unloadMusic(id)
			}
			w.post(Message{Kind: MsgMusicUnloadedAll})
		case CmdPlayMusic:
			w.playMusic(cmd.ID, cmd.Looped)
		case CmdStopMusic:
			w.stopMusic(cmd.ID)
			w.post(Message{Kind: MsgMusicStopped, ID: cmd.ID})
		case CmdStopAllMusic:
			for id := range w.music {
				w.stopMusic(id)
			}
			w.post(Message{Kind: MsgMusicStopped})
		case CmdPauseMusic:
			w.setPaused(cmd.ID, true)
		case CmdResumeMusic:
			w.setPaused(cmd.ID, false)
		case CmdVolumeMusic:
			w.setVolume(cmd.ID, cmd.Volume)
		case CmdLoadFx:
			w.loadFx(cmd.ID, cmd.Path)
		case CmdPlayFx:
			w.playFx(cmd.ID)
		case CmdUnloadFx:
			delete(w.fxs, cmd.ID)
			w.post(Message{Kind: MsgFxUnloaded, ID: cmd.ID})
		case CmdUnloadAllFx:
			w.fxs = make(map[string]*fx)
			w.post(Message{Kind: MsgFxUnloadedAll})
		case cmdMusicFinished:
			w.finishMusic(cmd.ID)
		case CmdShutdown:
			speaker.Lock()
			w.mixer.Clear()
			speaker.Unlock()
			for id := range w.music {
				w.unloadMusic(id)
			}
			return
		}
	}
}

func (w *Worker) post(m Message) {
	select {
	case w.messages <- m:
	default:
		w.log.Warn("audio message dropped", zap.Uint8("kind", uint8(m.Kind)), zap.String("id", m.ID))
	}
}

// decode opens an audio file, selecting the decoder by extension.
func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg":
		return vorbis.Decode(f)
	case ".mp3":
		return mp3.Decode(f)
	case ".wav":
		return wav.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format %q", filepath.Ext(path))
	}
}

func (w *Worker) loadMusic(id, path string) {
	if _, ok := w.music[id]; ok {
		w.unloadMusic(id)
	}
	streamer, format, err := decode(path)
	if err != nil {
		w.log.Warn("music load failed", zap.String("id", id), zap.Error(err))
		w.post(Message{Kind: MsgMusicLoadFailed, ID: id, Error: err.Error()})
		return
	}
	w.music[id] = &track{format: format, streamer: streamer}
	w.post(Message{Kind: MsgMusicLoaded, ID: id})
}

func (w *Worker) unloadMusic(id string) {
	t, ok := w.music[id]
	if !ok {
		return
	}
	w.stopMusic(id)
	t.streamer.Close()
	delete(w.music, id)
}

// playMusic (re)starts a loaded track from the beginning. A play command for
// an unknown id is a no-op per the load-failure contract.
func (w *Worker) playMusic(id string, looped bool) {
	t, ok := w.music[id]
	if !ok {
		w.log.Warn("play for unloaded music", zap.String("id", id))
		return
	}
	w.stopMusic(id)
	if err := t.streamer.Seek(0); err != nil {
		w.log.Warn("music seek failed", zap.String("id", id), zap.Error(err))
		return
	}

	var base beep.Streamer = t.streamer
	if looped {
		base = beep.Loop(-1, t.streamer)
	} else {
		// The callback runs on the speaker goroutine; it only posts back
		// to the mailbox so track state stays worker-owned.
		base = beep.Seq(t.streamer, beep.Callback(func() {
			w.Send(Command{Kind: cmdMusicFinished, ID: id})
		}))
	}
	if t.format.SampleRate != workerSampleRate {
		base = beep.Resample(4, t.format.SampleRate, workerSampleRate, base)
	}

	t.ctrl = &beep.Ctrl{Streamer: base}
	t.volume = &effects.Volume{Streamer: t.ctrl, Base: 2, Volume: 0}
	t.playing = true

	speaker.Lock()
	w.mixer.Add(t.volume)
	speaker.Unlock()

	w.post(Message{Kind: MsgMusicPlayStarted, ID: id})
}

// finishMusic marks a non-looping track ended. MusicFinished fires exactly
// once per natural end of playback.
func (w *Worker) finishMusic(id string) {
	t, ok := w.music[id]
	if !ok || !t.playing {
		return
	}
	t.ctrl = nil
	t.volume = nil
	t.playing = false
	w.post(Message{Kind: MsgMusicFinished, ID: id})
}

func (w *Worker) stopMusic(id string) {
	t, ok := w.music[id]
	if !ok || t.ctrl == nil {
		return
	}
	speaker.Lock()
	t.ctrl.Paused = true
	t.ctrl.Streamer = nil
	speaker.Unlock()
	t.ctrl = nil
	t.volume = nil
	t.playing = false
}

func (w *Worker) setPaused(id string, paused bool) {
	t, ok := w.music[id]
	if !ok || t.ctrl == nil {
		return
	}
	speaker.Lock()
	t.ctrl.Paused = paused
	speaker.Unlock()
}

// setVolume maps vol in [0,1] onto the exponential volume scale, muting at 0.
func (w *Worker) setVolume(id string, vol float64) {
	t, ok := w.music[id]
	if !ok || t.volume == nil {
		return
	}
	if vol < 0 {
		vol = 0
	} else if vol > 1 {
		vol = 1
	}
	speaker.Lock()
	t.volume.Silent = vol == 0
	t.volume.Volume = (vol - 1) * 5 // -5..0 on the Base-2 scale
	speaker.Unlock()
	w.post(Message{Kind: MsgMusicVolumeChanged, ID: id})
}

func (w *Worker) loadFx(id, path string) {
	streamer, format, err := decode(path)
	if err != nil {
		w.log.Warn("fx load failed", zap.String("id", id), zap.Error(err))
		w.post(Message{Kind: MsgFxLoadFailed, ID: id, Error: err.Error()})
		return
	}
	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	streamer.Close()
	w.fxs[id] = &fx{buffer: buf}
	w.post(Message{Kind: MsgFxLoaded, ID: id})
}

func (w *Worker) playFx(id string) {
	s, ok := w.fxs[id]
	if !ok {
		w.log.Warn("play for unloaded fx", zap.String("id", id))
		return
	}
	var st beep.Streamer = s.buffer.Streamer(0, s.buffer.Len())
	if s.buffer.Format().SampleRate != workerSampleRate {
		st = beep.Resample(4, s.buffer.Format().SampleRate, workerSampleRate, st)
	}
	speaker.Lock()
	w.mixer.Add(st)
	speaker.Unlock()
}
