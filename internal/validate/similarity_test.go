package validate

import (
	"reflect"
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"开源", "开源", 1, 1},
		{"开源", "开源社区", 0.66, 0.67},
		{"会议", "竞赛", 0, 0},
		{"Kubernetes", "kubernetes", 1, 1},
		{"ＡＩ", "ai", 1, 1},
	}

	for _, tt := range tests {
		got := Similarity(tt.a, tt.b)
		if got < tt.min || got > tt.max {
			t.Errorf("Similarity(%q, %q) = %.3f, want [%.2f, %.2f]", tt.a, tt.b, got, tt.min, tt.max)
		}
	}
}

func TestSimilarTags(t *testing.T) {
	vocab := []string{"kubernetes", "云原生", "会议", "开源", "校园"}

	tests := []struct {
		tag  string
		want []string
	}{
		{"开源社区", []string{"开源"}},
		{"云原生技术", []string{"云原生"}},
		{"开源", nil},
		{"区块链", nil},
	}

	for _, tt := range tests {
		got := SimilarTags(tt.tag, vocab, DefaultSimilarityThreshold)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SimilarTags(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}
