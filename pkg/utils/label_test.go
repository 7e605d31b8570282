package utils

import "testing"

func TestMergeLabel(t *testing.T) {
	cases := []struct {
		name     string
		existing Label
		incoming Label
		want     Label
	}{
		{
			name:     "empty existing takes incoming",
			existing: Label{},
			incoming: Label{Value: "a", Source: "recall"},
			want:     Label{Value: "a", Source: "recall"},
		},
		{
			name:     "empty incoming keeps existing",
			existing: Label{Value: "a", Source: "recall"},
			incoming: Label{},
			want:     Label{Value: "a", Source: "recall"},
		},
		{
			name:     "values accumulate with pipe",
			existing: Label{Value: "a", Source: "recall"},
			incoming: Label{Value: "b", Source: "filter"},
			want:     Label{Value: "a|b", Source: "recall,filter"},
		},
		{
			name:     "missing existing source takes incoming source",
			existing: Label{Value: "a"},
			incoming: Label{Value: "b", Source: "filter"},
			want:     Label{Value: "a|b", Source: "filter"},
		},
		{
			name:     "missing incoming source keeps existing source",
			existing: Label{Value: "a", Source: "recall"},
			incoming: Label{Value: "b"},
			want:     Label{Value: "a|b", Source: "recall"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MergeLabel(tc.existing, tc.incoming); got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}
