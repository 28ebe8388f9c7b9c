package gpan

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
)

// Serve waits for rising edges on the IRQ line, dispatches each one and
// posts the resulting event to the mailbox. It returns when ctx is done or a
// dispatch fails. timeout bounds each wait so ctx is checked regularly.
func (r *Radio) Serve(ctx context.Context, irq gpio.PinIn, timeout time.Duration) error {
	if err := irq.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return errors.Wrapf(err, "irq pin %s", irq)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if !irq.WaitForEdge(timeout) {
				continue
			}
			ev, err := r.Dispatch()
			if err != nil {
				return errors.Wrap(err, "dispatch")
			}
			if ev.Kind == EventNone {
				continue
			}
			if !r.mailbox.Post(ev) {
				r.log("gpan: mailbox full, dropped %v", ev.Kind)
			}
		}
	}
}
