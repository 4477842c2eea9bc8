package player

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/sceneforge/internal/ledger"
	"github.com/dshills/sceneforge/internal/logging"
	"github.com/dshills/sceneforge/internal/scene"
)

// DefaultTick is the interval between tween frames.
const DefaultTick = 33 * time.Millisecond

// Option configures a Player.
type Option func(*Player)

// WithTick sets the frame interval.
func WithTick(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.tick = d
		}
	}
}

// WithLogger sets the player logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Player) {
		p.logger = logging.OrNull(l).WithComponent("player")
	}
}

// Player drives one scene from a terminal screen.
type Player struct {
	scene  *scene.Scene
	screen tcell.Screen
	tick   time.Duration
	logger *logging.Logger

	selected int
	status   string
}

// New creates a player for sc drawing on screen. The screen is initialized
// by Init or Run.
func New(sc *scene.Scene, screen tcell.Screen, opts ...Option) *Player {
	p := &Player{
		scene:  sc,
		screen: screen,
		tick:   DefaultTick,
		logger: logging.NullLogger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewTerminal creates a player on the process terminal.
func NewTerminal(sc *scene.Scene, opts ...Option) (*Player, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return New(sc, screen, opts...), nil
}

// Init prepares the screen.
func (p *Player) Init() error {
	if err := p.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	p.screen.HideCursor()
	return nil
}

// Run initializes the screen, plays until the user quits or ctx is done,
// and restores the terminal.
func (p *Player) Run(ctx context.Context) error {
	if err := p.Init(); err != nil {
		return err
	}
	defer p.screen.Fini()
	return p.Loop(ctx)
}

// Loop handles input and frames on an initialized screen.
func (p *Player) Loop(ctx context.Context) error {
	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := p.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	p.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if p.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			if !p.scene.Clock.Active() {
				continue
			}
			p.scene.Step()
		}
		p.draw()
	}
}

// handleEvent applies ev and reports whether the player should quit.
func (p *Player) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		p.screen.Sync()
	case *tcell.EventKey:
		return p.handleKey(ev)
	}
	return false
}

func (p *Player) handleKey(ev *tcell.EventKey) bool {
	l := p.scene.Ledger
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		l.ReverseAnimate()
		p.setStatus("reverse")
	case tcell.KeyUp:
		p.selectGroup(p.selected - 1)
	case tcell.KeyDown:
		p.selectGroup(p.selected + 1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'n', ' ':
			l.Animate()
			p.setStatus("animate")
		case 'p':
			l.ReverseAnimate()
			p.setStatus("reverse")
		case 'r':
			l.ResetAll()
			p.setStatus("reset")
		case 'f':
			l.FinishAll()
			p.setStatus("finish")
		case '<':
			p.moveSelected(ledger.Up)
		case '>':
			p.moveSelected(ledger.Down)
		}
	}
	return false
}

func (p *Player) setStatus(action string) {
	l := p.scene.Ledger
	p.status = fmt.Sprintf("%s, next %d/%d", action, l.ActiveIndex()+1, l.Len())
	p.logger.Debug("%s", p.status)
}

func (p *Player) selectGroup(i int) {
	n := p.scene.Ledger.Len()
	if n == 0 {
		p.selected = 0
		return
	}
	p.selected = min(max(i, 0), n-1)
}

func (p *Player) moveSelected(d ledger.Direction) {
	l := p.scene.Ledger
	if l.Len() < 2 {
		return
	}
	l.MoveGroup(p.selected, d)
	if d == ledger.Up {
		p.selectGroup(p.selected - 1)
	} else {
		p.selectGroup(p.selected + 1)
	}
	p.setStatus("move " + d.String())
}

// Selected returns the index of the selected group.
func (p *Player) Selected() int {
	return p.selected
}

// Status returns the last action summary shown in the title bar.
func (p *Player) Status() string {
	return p.status
}
