package mock_test

import (
	"context"
	"math"
	"testing"

	"github.com/mindwell/sage/memory/embedder/mock"
)

func TestEmbed_Deterministic(t *testing.T) {
	ctx := context.Background()
	e := mock.New()

	a, err := e.Embed(ctx, "我最近感到很焦虑")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	b, err := e.Embed(ctx, "我最近感到很焦虑")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(a) != 384 {
		t.Fatalf("expected 384 dimensions, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("equal texts must embed identically")
		}
	}

	other, err := e.Embed(ctx, "今天天气不错")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	same := true
	for i := range a {
		if a[i] != other[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("distinct texts should not embed identically")
	}
}

func TestEmbed_UnitLength(t *testing.T) {
	e := mock.New()
	vec, err := e.Embed(context.Background(), "进行了实习")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-4 {
		t.Errorf("expected a unit vector, got norm %f", math.Sqrt(norm))
	}
}

func TestNewWithDimensions(t *testing.T) {
	e := mock.NewWithDimensions(16)
	if e.Dimensions() != 16 {
		t.Fatalf("Dimensions() = %d, want 16", e.Dimensions())
	}
	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 16 {
		t.Errorf("expected 16-dimensional vector, got %d", len(vec))
	}

	if mock.NewWithDimensions(0).Dimensions() != 384 {
		t.Error("non-positive sizes should fall back to the default")
	}
}
