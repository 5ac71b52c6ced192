package domain

import (
	"math"
	"sort"
)

type automationKind int

const (
	automationSet automationKind = iota
	automationLinear
	automationExponential
)

type automationEvent struct {
	kind  automationKind
	time  float64
	value float64
}

// Automation is a parameter value scheduled against the device clock.
// Events are kept sorted by time; events at the same time keep insertion order.
type Automation struct {
	Default float64
	events  []automationEvent
}

// NewAutomation creates an automation holding v until the first event.
func NewAutomation(v float64) *Automation {
	return &Automation{Default: v}
}

// SetValueAtTime jumps to v at t.
func (a *Automation) SetValueAtTime(v, t float64) *Automation {
	a.insert(automationEvent{kind: automationSet, time: t, value: v})
	return a
}

// LinearRampToValueAtTime ramps linearly from the previous event to v, arriving at t.
func (a *Automation) LinearRampToValueAtTime(v, t float64) *Automation {
	a.insert(automationEvent{kind: automationLinear, time: t, value: v})
	return a
}

// ExponentialRampToValueAtTime ramps exponentially from the previous event to v, arriving at t.
func (a *Automation) ExponentialRampToValueAtTime(v, t float64) *Automation {
	a.insert(automationEvent{kind: automationExponential, time: t, value: v})
	return a
}

func (a *Automation) insert(ev automationEvent) {
	i := sort.Search(len(a.events), func(i int) bool { return a.events[i].time > ev.time })
	a.events = append(a.events, automationEvent{})
	copy(a.events[i+1:], a.events[i:])
	a.events[i] = ev
}

// Len returns the number of scheduled events.
func (a *Automation) Len() int { return len(a.events) }

// ValueAt returns the parameter value at device time t.
func (a *Automation) ValueAt(t float64) float64 {
	// index of the first event strictly after t
	next := sort.Search(len(a.events), func(i int) bool { return a.events[i].time > t })

	prevTime, prevValue := 0.0, a.Default
	hasPrev := next > 0
	if hasPrev {
		prevTime, prevValue = a.events[next-1].time, a.events[next-1].value
	}
	if next == len(a.events) {
		return prevValue
	}

	ev := a.events[next]
	if !hasPrev {
		// nothing to ramp from yet
		return prevValue
	}
	span := ev.time - prevTime
	if span <= 0 {
		return prevValue
	}
	frac := (t - prevTime) / span

	switch ev.kind {
	case automationLinear:
		return prevValue + (ev.value-prevValue)*frac
	case automationExponential:
		if prevValue <= 0 || ev.value <= 0 {
			return prevValue
		}
		return prevValue * math.Pow(ev.value/prevValue, frac)
	default:
		return prevValue
	}
}

// Voice is one oscillator + gain envelope, fully specified before it is handed to a device.
// A voice is never reused once started.
type Voice struct {
	Waveform  Waveform
	Start     float64
	Stop      float64
	Frequency *Automation
	Gain      *Automation
}

// Duration returns Stop - Start.
func (v Voice) Duration() float64 { return v.Stop - v.Start }

// Active reports whether t lies in [Start, Stop).
func (v Voice) Active(t float64) bool { return t >= v.Start && t < v.Stop }

// Oscillate returns the waveform amplitude in [-1,1] for phase measured in cycles.
func Oscillate(w Waveform, phase float64) float64 {
	p := phase - math.Floor(phase)
	switch w {
	case WaveTriangle:
		if p < 0.25 {
			return 4 * p
		}
		if p < 0.75 {
			return 2 - 4*p
		}
		return 4*p - 4
	case WaveSawtooth:
		if p < 0.5 {
			return 2 * p
		}
		return 2*p - 2
	case WaveSquare:
		if p < 0.5 {
			return 1
		}
		return -1
	default:
		return math.Sin(2 * math.Pi * p)
	}
}
