package render

import (
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action is a keyboard command understood by the render loop.
type Action uint8

const (
	ActionNone       Action = iota
	ActionQuit              // leave the loop
	ActionRemoveLast        // drop the most recently added fish
	ActionClearAll          // wipe cache, ledger, remote assets and live fish
	ActionToggleFPS         // show or hide the FPS/TPS overlay
	ActionScreenshot        // save the next frame as a PNG
)

// Keymap binds keys to actions. Several keys may share an action.
type Keymap map[ebiten.Key]Action

// DefaultKeymap returns the stock bindings: Q and Escape quit, Space removes
// the newest fish, F clears everything, F3 toggles the FPS overlay and F12
// takes a screenshot.
func DefaultKeymap() Keymap {
	return Keymap{
		ebiten.KeyQ:      ActionQuit,
		ebiten.KeyEscape: ActionQuit,
		ebiten.KeySpace:  ActionRemoveLast,
		ebiten.KeyF:      ActionClearAll,
		ebiten.KeyF3:     ActionToggleFPS,
		ebiten.KeyF12:    ActionScreenshot,
	}
}

// Input turns key presses into actions once per tick.
type Input struct {
	keymap      Keymap
	keys        []ebiten.Key
	justPressed func(ebiten.Key) bool
	injectQueue []Action
	buf         []Action
}

// NewInput creates an Input. A nil justPressed reads the real keyboard.
func NewInput(km Keymap, justPressed func(ebiten.Key) bool) *Input {
	if justPressed == nil {
		justPressed = inpututil.IsKeyJustPressed
	}
	keys := make([]ebiten.Key, 0, len(km))
	for k := range km {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return &Input{keymap: km, keys: keys, justPressed: justPressed}
}

// inject queues an action as if its key had been pressed. Queued actions
// are delivered on the next Poll, before real key presses.
func (in *Input) inject(a Action) {
	in.injectQueue = append(in.injectQueue, a)
}

// Poll returns the actions triggered since the last call. The returned
// slice is reused by the next call.
func (in *Input) Poll() []Action {
	in.buf = append(in.buf[:0], in.injectQueue...)
	in.injectQueue = in.injectQueue[:0]
	for _, k := range in.keys {
		if in.justPressed(k) {
			in.buf = append(in.buf, in.keymap[k])
		}
	}
	return in.buf
}
