package source

import "testing"

func TestSpanBasics(t *testing.T) {
	s := Span{File: 1, Start: 4, End: 9}
	if s.Empty() {
		t.Error("span should not be empty")
	}
	if s.Len() != 5 {
		t.Errorf("Len = %d, want 5", s.Len())
	}
	if got := s.String(); got != "1:4-9" {
		t.Errorf("String = %q", got)
	}
	if (Span{Start: 3, End: 3}).Empty() != true {
		t.Error("zero-length span should be empty")
	}
}

func TestSpanContains(t *testing.T) {
	s := Span{File: 0, Start: 2, End: 5}
	tests := []struct {
		off  uint32
		want bool
	}{
		{off: 1, want: false},
		{off: 2, want: true},
		{off: 4, want: true},
		{off: 5, want: false},
	}
	for _, tt := range tests {
		if got := s.Contains(tt.off); got != tt.want {
			t.Errorf("Contains(%d) = %v, want %v", tt.off, got, tt.want)
		}
	}
}

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Span
		want  Span
	}{
		{
			name: "disjoint later",
			a:    Span{File: 1, Start: 2, End: 4},
			b:    Span{File: 1, Start: 8, End: 10},
			want: Span{File: 1, Start: 2, End: 10},
		},
		{
			name: "contained",
			a:    Span{File: 1, Start: 2, End: 10},
			b:    Span{File: 1, Start: 4, End: 6},
			want: Span{File: 1, Start: 2, End: 10},
		},
		{
			name: "different file untouched",
			a:    Span{File: 1, Start: 2, End: 4},
			b:    Span{File: 2, Start: 0, End: 100},
			want: Span{File: 1, Start: 2, End: 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.want {
				t.Errorf("Cover = %+v, want %+v", got, tt.want)
			}
		})
	}
}
