package source

import "testing"

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want Span
	}{
		{"disjoint", Span{File: 1, Start: 2, End: 4}, Span{File: 1, Start: 8, End: 10}, Span{File: 1, Start: 2, End: 10}},
		{"nested", Span{File: 1, Start: 2, End: 10}, Span{File: 1, Start: 4, End: 6}, Span{File: 1, Start: 2, End: 10}},
		{"other file ignored", Span{File: 1, Start: 2, End: 4}, Span{File: 2, Start: 0, End: 20}, Span{File: 1, Start: 2, End: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.want {
				t.Errorf("Cover = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSpanEmpty(t *testing.T) {
	if !(Span{File: 3, Start: 9, End: 9}).Empty() {
		t.Errorf("zero-length span not empty")
	}
	if (Span{File: 3, Start: 5, End: 9}).Empty() {
		t.Errorf("span 5-9 reported empty")
	}
}
