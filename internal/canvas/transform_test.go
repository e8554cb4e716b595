package canvas_test

import (
	"testing"

	"montage/internal/canvas"
)

func TestIdentityTransform(t *testing.T) {
	identity := canvas.Identity()
	if identity.Scale != 1 {
		t.Fatalf("expected identity scale 1, got %v", identity.Scale)
	}
	if identity.Translation != (canvas.Vec2{}) {
		t.Fatalf("expected zero translation, got %#v", identity.Translation)
	}
	if identity.Rotation != 0 {
		t.Fatalf("expected zero rotation, got %v", identity.Rotation)
	}
	if !identity.Size.IsZero() {
		t.Fatalf("expected zero size, got %#v", identity.Size)
	}
	if err := identity.Validate(); err != nil {
		t.Fatalf("identity should validate: %v", err)
	}
}

func TestTransformValidate(t *testing.T) {
	cases := []struct {
		name      string
		transform canvas.Transform
		wantErr   bool
	}{
		{"valid", canvas.Transform{Scale: 1.5, Size: canvas.Size{Width: 100, Height: 80}}, false},
		{"zero scale", canvas.Transform{Scale: 0}, true},
		{"negative scale", canvas.Transform{Scale: -2}, true},
		{"negative width", canvas.Transform{Scale: 1, Size: canvas.Size{Width: -1}}, true},
		{"negative height", canvas.Transform{Scale: 1, Size: canvas.Size{Height: -3}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.transform.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestWithSizeDoesNotMutateReceiver(t *testing.T) {
	base := canvas.Identity()
	sized := base.WithSize(canvas.Size{Width: 200, Height: 240})
	if !base.Size.IsZero() {
		t.Fatalf("receiver mutated: %#v", base.Size)
	}
	if sized.Size.Width != 200 || sized.Size.Height != 240 {
		t.Fatalf("unexpected size: %#v", sized.Size)
	}
}
