package encoding

import "testing"

func TestView_RoundTrip(t *testing.T) {
	in := make([]uint16, 0, 100)
	for i := 0; i < 40; i++ {
		in = append(in, 0) // grass field
	}
	in = append(in, 3, 3, 5, 0, 0, 16) // tree, tree, stone, grass, player overlay
	for i := 0; i < 40; i++ {
		in = append(in, 1)
	}

	enc := EncodeView(in)
	out, err := DecodeView(enc)
	if err != nil {
		t.Fatalf("DecodeView: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len mismatch: got %d want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("mismatch at %d: got %d want %d", i, out[i], in[i])
		}
	}
}

func TestView_Empty(t *testing.T) {
	if got := EncodeView(nil); got != "" {
		t.Fatalf("empty view should encode empty, got %q", got)
	}
	out, err := DecodeView("")
	if err != nil || len(out) != 0 {
		t.Fatalf("empty decode: %v %v", out, err)
	}
}

func TestView_BadPayload(t *testing.T) {
	if _, err := DecodeView("not base64!!"); err == nil {
		t.Fatalf("expected base64 error")
	}
}
