package browser

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Pause sleeps a random duration in [minMs, maxMs] milliseconds, returning
// early when ctx is cancelled. Every driven navigation is bracketed by these
// delays to keep the interaction rhythm human-paced.
func Pause(ctx context.Context, minMs, maxMs int) {
	if maxMs < minMs {
		maxMs = minMs
	}
	d := time.Duration(minMs+rand.Intn(maxMs-minMs+1)) * time.Millisecond
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// WanderPointer dispatches a few synthetic pointer movements across random
// coordinates. Reduces automated-interaction detection; does nothing for
// correctness, so its errors are ignored by callers.
func WanderPointer(ctx context.Context, p Page) error {
	for i := 0; i < 3+rand.Intn(3); i++ {
		x, y := 80+rand.Intn(900), 100+rand.Intn(500)
		js := fmt.Sprintf(`(() => {
			document.dispatchEvent(new MouseEvent('mousemove', {
				clientX: %d, clientY: %d, bubbles: true
			}));
			return true;
		})()`, x, y)
		var ok bool
		if err := p.Eval(ctx, js, &ok); err != nil {
			return err
		}
		Pause(ctx, 60, 220)
	}
	return nil
}
