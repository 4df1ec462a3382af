package utils

import (
	"testing"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"
)

// -----------------------------------------------------------------------------

func TestRingBufferWrapAround(t *testing.T) {
	rb := NewRingBuffer(3)

	for i := int64(1); i <= 5; i++ {
		rb.Append(models.MPricePoint{Timestamp: i, Price: float64(i) * 10})
	}

	if rb.Size() != 3 {
		t.Fatalf("want size 3, got %d", rb.Size())
	}

	all := rb.GetAll()
	want := []int64{3, 4, 5}
	for i, w := range want {
		if all[i].Timestamp != w {
			t.Fatalf("slot %d: want ts %d, got %d", i, w, all[i].Timestamp)
		}
	}

	last, ok := rb.Last()
	if !ok || last.Price != 50 {
		t.Fatalf("want last price 50, got %+v (%v)", last, ok)
	}
}

// -----------------------------------------------------------------------------

func TestRingBufferGetLatestClamps(t *testing.T) {
	rb := NewRingBuffer(10)
	rb.Append(models.MPricePoint{Timestamp: 1, Price: 1})
	rb.Append(models.MPricePoint{Timestamp: 2, Price: 2})

	got := rb.GetLatest(5)
	if len(got) != 2 {
		t.Fatalf("want 2 points, got %d", len(got))
	}
	if got[0].Timestamp != 1 || got[1].Timestamp != 2 {
		t.Fatalf("order wrong: %+v", got)
	}
}

// -----------------------------------------------------------------------------

func TestRingBufferEmpty(t *testing.T) {
	rb := NewRingBuffer(4)

	if _, ok := rb.Last(); ok {
		t.Fatal("Last on empty buffer should report not ok")
	}
	if got := rb.GetLatest(3); len(got) != 0 {
		t.Fatalf("want empty, got %+v", got)
	}
}
