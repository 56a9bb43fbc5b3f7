package relay

import "testing"

func TestUtteranceObserveAndTake(t *testing.T) {
	u := newUtterance(4, 100)

	u.observe([]int16{1, 2, 3, 4}, false)
	u.observe([]int16{5, 6, 7, 8}, true)
	u.observe([]int16{9, 10, 11, 12}, true)

	if u.frameCount != 3 {
		t.Fatalf("frameCount = %d, want 3", u.frameCount)
	}
	if u.voicedCount != 2 {
		t.Fatalf("voicedCount = %d, want 2", u.voicedCount)
	}

	got := u.take()
	want := []int16{5, 6, 7, 8, 9, 10, 11, 12}
	if len(got) != len(want) {
		t.Fatalf("take() returned %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}

	if u.frameCount != 0 || u.voicedCount != 0 || len(u.samples) != 0 {
		t.Fatalf("take() should reset the accumulator, got %+v", u)
	}
}

func TestUtteranceSilentFramesOnlyCount(t *testing.T) {
	u := newUtterance(4, 100)
	for i := 0; i < 10; i++ {
		u.observe([]int16{0, 0, 0, 0}, false)
	}
	if u.frameCount != 10 {
		t.Fatalf("frameCount = %d, want 10", u.frameCount)
	}
	if len(u.samples) != 0 {
		t.Fatalf("silent frames should not buffer samples, got %d", len(u.samples))
	}
}

func TestUtteranceCapDropsOldest(t *testing.T) {
	// Cap at 3 frames of 2 samples each.
	u := newUtterance(2, 3)
	for i := int16(0); i < 5; i++ {
		u.observe([]int16{i * 10, i*10 + 1}, true)
	}

	got := u.take()
	// Frames 0 and 1 dropped; frames 2..4 survive.
	want := []int16{20, 21, 30, 31, 40, 41}
	if len(got) != len(want) {
		t.Fatalf("capped buffer has %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d (most recent speech must survive)", i, got[i], want[i])
		}
	}
}
