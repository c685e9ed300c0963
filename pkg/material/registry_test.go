package material

import (
	"errors"
	"fmt"
	"testing"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/props"
)

func TestNew(t *testing.T) {
	tests := []struct {
		plugin   string
		expected string
	}{
		{"principled", "*material.Principled"},
		{"principledthin", "*material.PrincipledThin"},
		{"diffuse", "*material.Lambertian"},
	}

	for _, tt := range tests {
		t.Run(tt.plugin, func(t *testing.T) {
			b, err := New(props.New(tt.plugin))
			if err != nil {
				t.Fatal(err)
			}
			if got := fmt.Sprintf("%T", b); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(props.New("conductor")); !errors.Is(err, ErrUnknownPlugin) {
		t.Errorf("Expected ErrUnknownPlugin, got %v", err)
	}

	p := props.New("principled")
	p.SetFloat("eta", 1.33)
	p.SetFloat("specular", 0.5)
	b, err := New(p)
	if !errors.Is(err, ErrEtaAndSpecular) {
		t.Errorf("Expected ErrEtaAndSpecular, got %v", err)
	}
	if b != nil {
		t.Errorf("Expected a nil BSDF on error, got %v", b)
	}
}

func TestNew_UnusedPropertiesAreNotFatal(t *testing.T) {
	p := props.New("diffuse")
	p.SetRGB("reflectance", core.NewVec3(0.1, 0.2, 0.3))
	p.SetFloat("roughness", 0.3) // not a diffuse parameter

	if _, err := New(p); err != nil {
		t.Fatalf("Unused properties should only warn, got %v", err)
	}
	if unused := p.Unqueried(); len(unused) != 1 || unused[0] != "roughness" {
		t.Errorf("Expected roughness to be unused, got %v", unused)
	}
}
