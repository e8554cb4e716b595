package collage

import (
	"github.com/google/uuid"

	"montage/internal/canvas"
)

// ShaderStatus pairs a shader identifier with its membership in the selected
// item's stack.
type ShaderStatus struct {
	Shader canvas.Shader
	Active bool
}

// ToolbarState is derived presentation state: visible iff an item is
// selected. It is computed on demand and never stored.
type ToolbarState struct {
	Visible          bool
	ItemID           uuid.UUID
	CutoutActive     bool
	ProcessingCutout bool
	Shaders          []ShaderStatus
}

// Toolbar returns the toolbar state for the current selection.
func (e *Engine) Toolbar() ToolbarState {
	e.mu.Lock()
	defer e.mu.Unlock()
	item := e.selectedLocked()
	if item == nil {
		return ToolbarState{}
	}
	statuses := make([]ShaderStatus, 0, len(canvas.AllShaders()))
	for _, shader := range canvas.AllShaders() {
		statuses = append(statuses, ShaderStatus{Shader: shader, Active: item.HasShader(shader)})
	}
	return ToolbarState{
		Visible:          true,
		ItemID:           item.ID,
		CutoutActive:     item.UsesCutout,
		ProcessingCutout: item.ProcessingCutout,
		Shaders:          statuses,
	}
}
