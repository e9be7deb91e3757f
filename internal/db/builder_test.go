package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_Vector(t *testing.T) {
	def, err := NewIndex("examples_idx").
		Prefix("modex:example:").
		Tag("label").
		Tag("category").
		VectorHNSW("embedding", 768, DistanceCosine, 32, 400).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if def.Name != "examples_idx" {
		t.Errorf("Name = %q", def.Name)
	}
	if len(def.Fields) != 3 {
		t.Fatalf("got %d fields, want 3", len(def.Fields))
	}

	vec := def.Fields[2]
	if vec.Type != IndexFieldVector || vec.VectorAlgo != VectorHNSW {
		t.Errorf("vector field = %+v", vec)
	}
	if vec.VectorDim != 768 || vec.VectorDistance != DistanceCosine {
		t.Errorf("vector options = %+v", vec)
	}
}

func TestIndexBuilder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		builder *IndexBuilder
	}{
		{"empty name", NewIndex("").Tag("label")},
		{"no fields", NewIndex("idx")},
		{"invalid name", NewIndex("bad name!").Tag("label")},
		{"zero dim vector", NewIndex("idx").VectorHNSW("v", 0, DistanceCosine, 0, 0)},
		{"duplicate field", NewIndex("idx").Tag("label").Tag("label")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.builder.Build(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	def := NewIndex("idx").Prefix("p:").VectorHNSW("embedding", 4, DistanceCosine, 0, 0).MustBuild()
	s := def.String()
	for _, want := range []string{"FT.CREATE", "idx", "PREFIX", "p:", "VECTOR", "HNSW"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
