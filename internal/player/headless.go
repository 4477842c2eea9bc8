package player

import (
	"fmt"
	"io"

	"github.com/dshills/sceneforge/internal/scene"
)

// DefaultSettle bounds the frames spent finishing one group headlessly.
const DefaultSettle = 10000

// Headless plays every ledger group in order, settling the tweens after
// each step, and writes the scene state to w before the first step and
// after each one.
func Headless(w io.Writer, sc *scene.Scene, settle int) error {
	if settle <= 0 {
		settle = DefaultSettle
	}
	if err := writeState(w, sc, "initial"); err != nil {
		return err
	}
	n := sc.Ledger.Len()
	for i := 0; i < n; i++ {
		sc.Ledger.Animate()
		frames := sc.Clock.Settle(settle)
		if err := writeState(w, sc, fmt.Sprintf("step %d/%d (%d frames)", i+1, n, frames)); err != nil {
			return err
		}
	}
	return nil
}

func writeState(w io.Writer, sc *scene.Scene, heading string) error {
	if _, err := fmt.Fprintf(w, "== %s\n", heading); err != nil {
		return err
	}
	for _, r := range rows(sc, -1) {
		if _, err := fmt.Fprintln(w, r.text); err != nil {
			return err
		}
	}
	return nil
}
