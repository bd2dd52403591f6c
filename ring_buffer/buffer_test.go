package ring_buffer

import "testing"

func TestRingBuffer_Add(t *testing.T) {
	t.Run("fill ring buffer with digits until it loops, and test that it works", func(t *testing.T) {
		ringBuffer := New(10)

		for i := 0; i < 20; i++ {
			ringBuffer.Add([]int16{int16(i)})
		}

		expected := []int16{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
		actual := ringBuffer.Read()

		if len(actual) != len(expected) {
			t.Fatalf("expected %d samples, got %d", len(expected), len(actual))
		}

		for i := 0; i < 10; i++ {
			if expected[i] != actual[i] {
				t.Errorf("expected %d, got %d", expected[i], actual[i])
			}
		}
	})

	t.Run("partially filled buffer returns only what was added", func(t *testing.T) {
		ringBuffer := New(10)

		ringBuffer.Add([]int16{1, 2, 3})

		actual := ringBuffer.Read()
		if len(actual) != 3 {
			t.Fatalf("expected 3 samples, got %d", len(actual))
		}

		for i, want := range []int16{1, 2, 3} {
			if actual[i] != want {
				t.Errorf("sample %d: expected %d, got %d", i, want, actual[i])
			}
		}
	})
}

func TestRingBuffer_Reset(t *testing.T) {
	ringBuffer := New(4)

	ringBuffer.Add([]int16{5, 6, 7, 8, 9})
	ringBuffer.Reset()

	if got := ringBuffer.Read(); len(got) != 0 {
		t.Errorf("expected empty buffer after reset, got %d samples", len(got))
	}

	ringBuffer.Add([]int16{1})
	if got := ringBuffer.Read(); len(got) != 1 || got[0] != 1 {
		t.Errorf("expected [1] after reset and add, got %v", got)
	}
}
