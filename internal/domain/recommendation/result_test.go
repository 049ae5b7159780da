package recommendation

import "testing"

func TestNew_ScoreIsOneMinusDistance(t *testing.T) {
	for _, d := range []float64{0, 0.125, 0.5, 1} {
		r := New("inv", d, nil)
		if r.Score() != 1-d {
			t.Errorf("distance %v: score %v, want %v", d, r.Score(), 1-d)
		}
	}
}

func TestNew_NilReasonsBecomeEmpty(t *testing.T) {
	r := New("inv", 0.2, nil)
	if r.Reasons() == nil || len(r.Reasons()) != 0 {
		t.Errorf("expected empty non-nil reasons, got %#v", r.Reasons())
	}
}
