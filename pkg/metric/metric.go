// Package metric keeps per minute histories of expvar values.
package metric

import (
	"container/list"
	"expvar"
	"strings"
	"sync"
	"time"
)

// TickerFunc is the function signature accepted by AddTickerFunc, will be called once per minute.
type TickerFunc func()

var tickerFuncChan = make(chan TickerFunc)

func init() {
	go metricsTicker()
}

// AddTickerFunc adds a new function callback to the list of metrics TickerFuncs that get
// called each minute.
func AddTickerFunc(f TickerFunc) {
	tickerFuncChan <- f
}

// History holds the most recent samples of an expvar.Var. It is itself an expvar.Var, rendered
// as a JSON string of comma separated samples, oldest first.
type History struct {
	mu      sync.Mutex
	source  expvar.Var
	size    int
	samples *list.List
}

var _ expvar.Var = &History{}

// NewHistory returns a History keeping up to size samples of source.
func NewHistory(source expvar.Var, size int) *History {
	return &History{source: source, size: size, samples: list.New()}
}

// Sample appends the current value of the source, dropping the oldest sample when full.
func (h *History) Sample() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples.PushBack(h.source.String())
	if h.samples.Len() > h.size {
		h.samples.Remove(h.samples.Front())
	}
}

// Samples returns the samples joined by commas.
func (h *History) Samples() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return joinStringList(h.samples)
}

func (h *History) String() string {
	v := expvar.String{}
	v.Set(h.Samples())
	return v.String()
}

// metricsTicker calls the current list of TickerFuncs once per minute.
func metricsTicker() {
	funcs := make([]TickerFunc, 0)
	ticker := time.NewTicker(time.Minute)

	for {
		select {
		case <-ticker.C:
			for _, f := range funcs {
				f()
			}
		case f := <-tickerFuncChan:
			funcs = append(funcs, f)
		}
	}
}

// joinStringList joins a List containing strings by commas.
func joinStringList(listOfStrings *list.List) string {
	if listOfStrings.Len() == 0 {
		return ""
	}
	s := make([]string, 0, listOfStrings.Len())
	for e := listOfStrings.Front(); e != nil; e = e.Next() {
		s = append(s, e.Value.(string))
	}
	return strings.Join(s, ",")
}
