// Package runtimetest provides an in-memory stand-in for the native PhotoDNA library and
// deterministic mock hashes, so code built on photodnaruntime can be tested without the SDK.
//
// Mock hashes are not PhotoDNA output. They only exercise the plumbing around it.
package runtimetest

import (
	"sync"
	"sync/atomic"
	"time"

	"go_photodna/photodnaruntime"
)

// Call records one hash entry point invocation.
type Call struct {
	Op         string
	Instance   photodnaruntime.Instance
	ImageLen   int
	Width      int32
	Height     int32
	Stride     int32
	X, Y, W, H int32
	MaxResults int32
	Options    uint32
}

// Fake implements photodnaruntime.Bindings in memory.
//
// Zero values give a working library: Init returns instance 1, hash calls succeed with
// MockHash seed 1, border calls report one record.
type Fake struct {
	mu sync.Mutex

	// InitInstance is returned by Init; set FailInit to return the null handle instead.
	InitInstance photodnaruntime.Instance
	FailInit     bool

	// HashStatus is returned by EdgeHash and EdgeHashSub. Hash is copied into the output
	// buffer when the status is not negative.
	HashStatus int32
	Hash       []byte

	// BorderCount is returned by the border entry points. Records are written into the
	// result buffer, at most maxResults of them.
	BorderCount int32
	Records     []photodnaruntime.ResultRecord

	LastError    int32
	ErrorStrings map[int32]string
	VersionValue int32
	Major        int32
	Minor        int32
	Patch        int32
	Text         string

	// CloseErr is returned from Close.
	CloseErr error

	// HashDelay keeps each hash entry point busy for this long, so callers that overlap
	// show up in PeakInFlight.
	HashDelay time.Duration

	inFlight atomic.Int32
	peak     atomic.Int32

	calls  []Call
	events []string
	inits  int
	frees  int
	closes int
}

// NewFake returns a Fake that behaves like a healthy 1.05 library.
func NewFake() *Fake {
	return &Fake{
		InitInstance: 1,
		Hash:         NewMockHash().WithSeed(1).Build(),
		BorderCount:  1,
		Records:      []photodnaruntime.ResultRecord{RecordFromHash(NewMockHash().WithSeed(1).Build(), 0, 0, 0, 0)},
		ErrorStrings: map[int32]string{},
		VersionValue: 0x00010005,
		Major:        1,
		Minor:        5,
		Patch:        0,
		Text:         "PhotoDNA Edge Hash Generator 1.05 (fake)",
	}
}

// RecordFromHash builds a successful result record holding hash and a region.
func RecordFromHash(hash []byte, x, y, w, h int32) photodnaruntime.ResultRecord {
	rec := photodnaruntime.ResultRecord{
		HashFormat: int32(photodnaruntime.OptionEdgeV2),
		X:          x,
		Y:          y,
		W:          w,
		H:          h,
	}
	copy(rec.Hash[:], hash)
	return rec
}

func (f *Fake) Init(libraryDir string, maxThreads int) (photodnaruntime.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "init")
	f.inits++
	if f.FailInit || f.InitInstance == 0 {
		return 0, &photodnaruntime.LoadError{Op: "init", Path: libraryDir, Err: photodnaruntime.ErrInitFailed}
	}
	return f.InitInstance, nil
}

func (f *Fake) Release(inst photodnaruntime.Instance) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "release")
	f.frees++
}

func (f *Fake) ErrorNumber(inst photodnaruntime.Instance) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.LastError
}

func (f *Fake) ErrorString(inst photodnaruntime.Instance, code int32) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.ErrorStrings[code]
	return s, ok
}

func (f *Fake) Version(inst photodnaruntime.Instance) int32      { return f.VersionValue }
func (f *Fake) VersionMajor(inst photodnaruntime.Instance) int32 { return f.Major }
func (f *Fake) VersionMinor(inst photodnaruntime.Instance) int32 { return f.Minor }
func (f *Fake) VersionPatch(inst photodnaruntime.Instance) int32 { return f.Patch }

func (f *Fake) VersionText(inst photodnaruntime.Instance) (string, bool) {
	return f.Text, f.Text != ""
}

func (f *Fake) EdgeHash(inst photodnaruntime.Instance, image, hash []byte, width, height, stride int32, options uint32) int32 {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{
		Op: "EdgeHash", Instance: inst, ImageLen: len(image),
		Width: width, Height: height, Stride: stride, Options: options,
	})
	return f.writeHash(hash)
}

func (f *Fake) EdgeHashSub(inst photodnaruntime.Instance, image, hash []byte, width, height, stride, x, y, w, h int32, options uint32) int32 {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{
		Op: "EdgeHashSub", Instance: inst, ImageLen: len(image),
		Width: width, Height: height, Stride: stride, X: x, Y: y, W: w, H: h, Options: options,
	})
	return f.writeHash(hash)
}

func (f *Fake) EdgeHashBorder(inst photodnaruntime.Instance, image, results []byte, maxResults, width, height, stride int32, options uint32) int32 {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{
		Op: "EdgeHashBorder", Instance: inst, ImageLen: len(image),
		Width: width, Height: height, Stride: stride, MaxResults: maxResults, Options: options,
	})
	return f.writeRecords(results, maxResults)
}

func (f *Fake) EdgeHashBorderSub(inst photodnaruntime.Instance, image, results []byte, maxResults, width, height, stride, x, y, w, h int32, options uint32) int32 {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{
		Op: "EdgeHashBorderSub", Instance: inst, ImageLen: len(image),
		Width: width, Height: height, Stride: stride, X: x, Y: y, W: w, H: h,
		MaxResults: maxResults, Options: options,
	})
	return f.writeRecords(results, maxResults)
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "close")
	f.closes++
	return f.CloseErr
}

// enter marks a hash call as running and returns the func that ends it.
func (f *Fake) enter() func() {
	n := f.inFlight.Add(1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.HashDelay > 0 {
		time.Sleep(f.HashDelay)
	}
	return func() { f.inFlight.Add(-1) }
}

// PeakInFlight returns the largest number of hash calls that were running at once.
func (f *Fake) PeakInFlight() int {
	return int(f.peak.Load())
}

func (f *Fake) writeHash(out []byte) int32 {
	if f.HashStatus < 0 {
		f.LastError = f.HashStatus
		return f.HashStatus
	}
	copy(out, f.Hash)
	return f.HashStatus
}

func (f *Fake) writeRecords(results []byte, maxResults int32) int32 {
	if f.BorderCount < 0 {
		f.LastError = f.BorderCount
		return f.BorderCount
	}
	for i, rec := range f.Records {
		if int32(i) >= maxResults {
			break
		}
		if err := photodnaruntime.EncodeResultRecord(results, i, rec); err != nil {
			return photodnaruntime.ErrorBadArgument
		}
	}
	return f.BorderCount
}

// Calls returns a copy of the recorded hash calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Events returns the lifecycle calls in order ("init", "release", "close").
func (f *Fake) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	copy(out, f.events)
	return out
}

// ReleaseCount returns how many times Release was called.
func (f *Fake) ReleaseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frees
}

// CloseCount returns how many times Close was called.
func (f *Fake) CloseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

var _ photodnaruntime.Bindings = (*Fake)(nil)
