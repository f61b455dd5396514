package service

import (
	"fmt"
)

type CheckoutState int

const (
	CheckoutIdle CheckoutState = iota
	CheckoutValidating
	CheckoutPricing
	CheckoutCommitting
	CheckoutCompleted
	CheckoutAborted
)

func (s CheckoutState) String() string {
	switch s {
	case CheckoutIdle:
		return "idle"
	case CheckoutValidating:
		return "validating"
	case CheckoutPricing:
		return "pricing"
	case CheckoutCommitting:
		return "committing"
	case CheckoutCompleted:
		return "completed"
	case CheckoutAborted:
		return "aborted"
	}
	return fmt.Sprintf("CheckoutState(%d)", int(s))
}

var checkoutTransitions = map[CheckoutState][]CheckoutState{
	CheckoutIdle:       {CheckoutValidating},
	CheckoutValidating: {CheckoutPricing, CheckoutAborted},
	CheckoutPricing:    {CheckoutCommitting, CheckoutAborted},
	CheckoutCommitting: {CheckoutCompleted, CheckoutAborted},
}

func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	for _, allowed := range checkoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s CheckoutState) Terminal() bool {
	return s == CheckoutCompleted || s == CheckoutAborted
}

// checkoutRun 單次 checkout 的狀態, 非法轉換屬於程式錯誤
type checkoutRun struct {
	state CheckoutState
	trail []CheckoutState
}

func newCheckoutRun() *checkoutRun {
	return &checkoutRun{state: CheckoutIdle, trail: []CheckoutState{CheckoutIdle}}
}

func (r *checkoutRun) to(next CheckoutState) {
	if !r.state.CanTransitionTo(next) {
		panic(fmt.Sprintf("illegal checkout transition %s -> %s", r.state, next))
	}
	r.state = next
	r.trail = append(r.trail, next)
}

func (r *checkoutRun) abort(err error) error {
	r.to(CheckoutAborted)
	return err
}
