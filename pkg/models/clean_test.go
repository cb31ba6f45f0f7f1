package models_test

import (
	"reflect"
	"testing"

	"github.com/kehila-platform/kehila/pkg/models"
)

func TestFilterRecommendations(t *testing.T) {
	in := []models.Recommendation{
		{Author: "Miriam", Text: "wonderful mentor"},
		{Author: "", Text: "anonymous praise"},
		{Author: "Sara", Text: "   "},
		{Author: "  Ruth  ", Text: " great listener "},
	}

	got := models.FilterRecommendations(in)
	want := []models.Recommendation{
		{Author: "Miriam", Text: "wonderful mentor"},
		{Author: "Ruth", Text: "great listener"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSplitList(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"career, finance, health", []string{"career", "finance", "health"}},
		{"career,,finance,", []string{"career", "finance"}},
		{"  ", []string{}},
		{"", []string{}},
	}
	for _, tc := range cases {
		if got := models.SplitList(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("SplitList(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestClampProgress(t *testing.T) {
	cases := []struct{ in, want int }{
		{-10, 0},
		{0, 0},
		{55, 55},
		{100, 100},
		{250, 100},
	}
	for _, tc := range cases {
		if got := models.ClampProgress(tc.in); got != tc.want {
			t.Fatalf("ClampProgress(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
