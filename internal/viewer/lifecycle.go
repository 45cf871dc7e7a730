package viewer

import (
	"sync"

	"github.com/cascbox/cascview/internal/render"
)

// SceneSlot is the sole owner of the installed scene and its GPU
// resources. Replacement is a single swap-then-dispose operation: the
// previous generation is fully released before the new scene becomes
// observable, and no caller ever sees a half-disposed state.
type SceneSlot struct {
	mu       sync.Mutex
	renderer render.Renderer
	current  *LoadedScene
}

// NewSceneSlot creates an empty slot backed by the given renderer.
func NewSceneSlot(renderer render.Renderer) *SceneSlot {
	return &SceneSlot{renderer: renderer}
}

// Current returns the installed scene, or nil.
func (s *SceneSlot) Current() *LoadedScene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Install disposes the previously installed scene, then installs the
// replacement. Must run on the renderer's thread.
func (s *SceneSlot) Install(scene *LoadedScene) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dispose(s.current)
	s.current = scene
}

// Clear disposes the installed scene, leaving the slot empty.
func (s *SceneSlot) Clear() {
	s.Install(nil)
}

// Discard disposes a scene that was built but never installed, e.g. a
// stale load superseded by a newer request.
func (s *SceneSlot) Discard(scene *LoadedScene) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispose(scene)
}

func (s *SceneSlot) dispose(scene *LoadedScene) {
	if scene == nil {
		return
	}
	for _, tex := range scene.Textures {
		if tex.Handle != 0 {
			s.renderer.DeleteTexture(tex.Handle)
		}
	}
	if scene.Mesh != 0 {
		s.renderer.DeleteMesh(scene.Mesh)
	}
}
