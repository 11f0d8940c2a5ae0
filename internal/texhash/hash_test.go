package texhash

import "testing"

func TestMiniFirstWord(t *testing.T) {
	s := Scalar{}
	p := []byte{0x78, 0x56, 0x34, 0x12, 0xFF, 0xFF}
	if got := s.Mini(p); got != 0x12345678 {
		t.Errorf("Mini = %#x, want 0x12345678", got)
	}
}

func TestMiniShortInput(t *testing.T) {
	s := Scalar{}
	if got := s.Mini([]byte{0xAB, 0xCD}); got != 0xCDAB {
		t.Errorf("Mini short = %#x, want 0xCDAB", got)
	}
	if got := s.Mini(nil); got != 0 {
		t.Errorf("Mini nil = %#x, want 0", got)
	}
}

func TestFullDeterministic(t *testing.T) {
	s := Scalar{}
	p := make([]byte, 4096)
	for i := range p {
		p[i] = byte(i * 7)
	}
	a := s.Full(p)
	b := s.Full(p)
	if a != b {
		t.Fatalf("Full not deterministic: %#x vs %#x", a, b)
	}
	p[100]++
	if s.Full(p) == a {
		t.Error("Full did not change after input changed")
	}
}

func TestFullTailBytes(t *testing.T) {
	// Lengths not divisible by 8 or 4 still hash every byte.
	s := Scalar{}
	for _, n := range []int{1, 3, 5, 9, 13} {
		p := make([]byte, n)
		base := s.Full(p)
		p[n-1] = 0x80
		if s.Full(p) == base {
			t.Errorf("len %d: trailing byte not hashed", n)
		}
	}
}

func TestClutHash(t *testing.T) {
	s := Scalar{}
	p := make([]byte, 512)
	a := s.Clut(p)
	if a != s.Clut(p) {
		t.Fatal("Clut not deterministic")
	}
	p[0] = 1
	if s.Clut(p) == a {
		t.Error("Clut did not change after palette changed")
	}
}

func TestBestIsUsable(t *testing.T) {
	h := Best()
	if h == nil {
		t.Fatal("Best returned nil")
	}
	if h.Full([]byte{1, 2, 3, 4}) != (Scalar{}).Full([]byte{1, 2, 3, 4}) {
		t.Error("Best strategy disagrees with scalar reference")
	}
}
