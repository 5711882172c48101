package animation

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSampleEndpoints(t *testing.T) {
	a := NewAt(epoch, time.Second, 0, 255, SineInOut)

	v, done := a.SampleAt(epoch)
	if v != 0 || done {
		t.Errorf("at start got (%v, %v), want (0, false)", v, done)
	}

	v, done = a.SampleAt(epoch.Add(time.Second))
	if v != 255 || !done {
		t.Errorf("at end got (%v, %v), want (255, true)", v, done)
	}

	v, done = a.SampleAt(epoch.Add(time.Hour))
	if v != 255 || !done {
		t.Errorf("long after end got (%v, %v), want (255, true)", v, done)
	}
}

func TestSampleIsMonotonic(t *testing.T) {
	a := NewAt(epoch, 500*time.Millisecond, 10, 200, nil)
	prev := -1.0
	for ms := 0; ms <= 600; ms += 5 {
		v, _ := a.SampleAt(epoch.Add(time.Duration(ms) * time.Millisecond))
		if v < prev {
			t.Fatalf("value decreased at %dms: %v < %v", ms, v, prev)
		}
		prev = v
	}
}

func TestSampleIsIdempotent(t *testing.T) {
	a := NewAt(epoch, time.Second, 0, 100, Linear)
	at := epoch.Add(250 * time.Millisecond)
	first, _ := a.SampleAt(at)
	for i := 0; i < 10; i++ {
		v, _ := a.SampleAt(at)
		if v != first {
			t.Fatalf("sample %d got %v, want %v", i, v, first)
		}
	}
	if first != 25 {
		t.Errorf("linear quarter got %v, want 25", first)
	}
}

func TestSampleDescending(t *testing.T) {
	a := NewAt(epoch, time.Second, 255, 0, SineInOut)
	mid, done := a.SampleAt(epoch.Add(500 * time.Millisecond))
	if done {
		t.Fatal("finished too early")
	}
	if mid < 127 || mid > 128 {
		t.Errorf("midpoint got %v, want ~127.5", mid)
	}
}

func TestZeroDurationFinishesImmediately(t *testing.T) {
	a := NewAt(epoch, 0, 3, 9, nil)
	v, done := a.SampleAt(epoch)
	if v != 9 || !done {
		t.Errorf("got (%v, %v), want (9, true)", v, done)
	}
}

func TestClockBeforeStart(t *testing.T) {
	a := NewAt(epoch, time.Second, 40, 80, nil)
	v, done := a.SampleAt(epoch.Add(-time.Minute))
	if v != 40 || done {
		t.Errorf("got (%v, %v), want (40, false)", v, done)
	}
}

func TestCurves(t *testing.T) {
	for _, name := range []string{"", "linear", "EASE_IN_OUT_SINE", "ease_in_out_cubic"} {
		c, err := ParseEasing(name)
		if err != nil {
			t.Fatalf("ParseEasing(%q): %v", name, err)
		}
		if c(0) != 0 || c(1) != 1 {
			t.Errorf("%q: curve(0)=%v curve(1)=%v", name, c(0), c(1))
		}
		prev := 0.0
		for i := 0; i <= 100; i++ {
			v := c(float64(i) / 100)
			if v < prev {
				t.Errorf("%q: not monotonic at %d", name, i)
			}
			prev = v
		}
	}
	if _, err := ParseEasing("bounce"); err == nil {
		t.Error("expected error for unknown easing")
	}
}

func TestEasedProgress(t *testing.T) {
	a := NewAt(epoch, time.Second, 0, 1, SineInOut)
	p, done := a.EasedProgressAt(epoch)
	if p != 0 || done {
		t.Errorf("got (%v, %v), want (0, false)", p, done)
	}
	p, done = a.EasedProgressAt(epoch.Add(2 * time.Second))
	if p != 1 || !done {
		t.Errorf("got (%v, %v), want (1, true)", p, done)
	}
}

func TestSampleAgainstWallClock(t *testing.T) {
	long := New(time.Hour, 3, 9, nil)
	if long.Duration() != time.Hour || long.End() != 9 {
		t.Errorf("got duration %v end %v, want 1h and 9", long.Duration(), long.End())
	}
	v, done := long.Sample()
	if done || v < 3 || v > 3.001 {
		t.Errorf("fresh hour-long sample got (%v, %v), want about (3, false)", v, done)
	}

	instant := New(0, 3, 9, Linear)
	v, done = instant.Sample()
	if v != 9 || !done {
		t.Errorf("zero duration got (%v, %v), want (9, true)", v, done)
	}
}
