// Package viewer implements the asynchronous model preview pipeline:
// fetch, decode, texture fan-out, scene assembly and installation into
// the single owned scene slot.
package viewer

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cascbox/cascview/internal/notify"
	"github.com/cascbox/cascview/internal/render"
	"github.com/cascbox/cascview/pkg/casc"
	"github.com/cascbox/cascview/pkg/formats"
	"github.com/cascbox/cascview/pkg/math"
)

// Store resolves a logical asset name to raw bytes.
type Store interface {
	ReadByName(name string) ([]byte, error)
}

// OrbitControls is an optional camera collaborator updated after each
// successful installation.
type OrbitControls interface {
	SetTarget(target math.Vec3)
	SetMaxDistance(distance float32)
}

// Previewer orchestrates preview loads. Every load is tagged with the
// generation of the request that started it, and the tag is re-checked
// at every async continuation, so a stale load can never clobber a
// newer selection: last requested wins, not last completed. The
// generation, not the name, is what makes a load stale; re-requesting
// a name whose earlier load is still running never revives that load.
type Previewer struct {
	store    Store
	renderer render.Renderer
	notifier notify.Notifier
	slot     *SceneSlot
	log      *zap.Logger

	controls       OrbitControls
	fovDegrees     float32
	maxTextureSize int
	textureWorkers int
	runOnMain      func(func())
	onSettled      func(name string, installed bool)

	mu         sync.Mutex
	requested  string
	generation uint64
	installed  string
	inFlight   bool
}

// Option customizes a Previewer.
type Option func(*Previewer)

// WithControls attaches an orbit-controls collaborator.
func WithControls(c OrbitControls) Option {
	return func(p *Previewer) { p.controls = c }
}

// WithFOV sets the camera field of view in degrees.
func WithFOV(degrees float32) Option {
	return func(p *Previewer) { p.fovDegrees = degrees }
}

// WithMaxTextureSize caps decoded texture dimensions before upload.
func WithMaxTextureSize(size int) Option {
	return func(p *Previewer) { p.maxTextureSize = size }
}

// WithMainThread routes GPU work through the given dispatcher. The GL
// shell pumps dispatched functions on the context-owning thread.
func WithMainThread(dispatch func(func())) Option {
	return func(p *Previewer) { p.runOnMain = dispatch }
}

// WithSettledCallback reports every load reaching a terminal state:
// installed, failed, or discarded as stale.
func WithSettledCallback(fn func(name string, installed bool)) Option {
	return func(p *Previewer) { p.onSettled = fn }
}

// WithLogger overrides the component logger.
func WithLogger(log *zap.Logger) Option {
	return func(p *Previewer) { p.log = log }
}

// New creates a Previewer around its collaborators.
func New(store Store, renderer render.Renderer, notifier notify.Notifier, opts ...Option) *Previewer {
	p := &Previewer{
		store:          store,
		renderer:       renderer,
		notifier:       notifier,
		log:            zap.NewNop(),
		fovDegrees:     45,
		maxTextureSize: 2048,
		textureWorkers: 4,
		runOnMain:      func(f func()) { f() },
	}
	for _, opt := range opts {
		opt(p)
	}
	p.slot = NewSceneSlot(renderer)
	return p
}

// Scene returns the installed scene, or nil.
func (p *Previewer) Scene() *LoadedScene {
	return p.slot.Current()
}

// Loading reports whether a load is in flight.
func (p *Previewer) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

// Installed returns the identity of the installed asset, if any.
func (p *Previewer) Installed() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.installed
}

// RequestPreview begins loading the named asset. Redundant requests for
// the installed or in-flight identity are no-ops; a request for a
// different identity supersedes whatever is in flight.
func (p *Previewer) RequestPreview(name string) {
	name = casc.NormalizeName(name)
	if name == "" {
		return
	}

	p.mu.Lock()
	if p.inFlight && p.requested == name {
		p.mu.Unlock()
		return
	}
	if p.installed == name {
		p.mu.Unlock()
		return
	}
	p.requested = name
	p.generation++
	gen := p.generation
	p.inFlight = true
	p.mu.Unlock()

	p.log.Info("preview requested", zap.String("asset", name))
	go p.load(name, gen)
}

// stale reports whether the load of the given generation has been
// superseded by a newer request.
func (p *Previewer) stale(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation != gen
}

func (p *Previewer) load(name string, gen uint64) {
	data, err := p.store.ReadByName(name)
	if err != nil {
		p.fail(name, gen, err)
		return
	}
	if p.stale(gen) {
		p.settle(name, false)
		return
	}

	model, err := formats.ParseMDX(data)
	if err != nil {
		p.fail(name, gen, err)
		return
	}

	if model.VertexCount() == 0 {
		p.finishEmpty(name, gen)
		return
	}

	skinData, err := p.store.ReadByName(skinNameFor(name))
	if err != nil {
		p.fail(name, gen, err)
		return
	}
	skin, err := formats.ParseSkin(skinData)
	if err != nil {
		p.fail(name, gen, err)
		return
	}
	if p.stale(gen) {
		p.settle(name, false)
		return
	}

	resolved := p.resolveTextures(gen, textureRefs(model))

	p.runOnMain(func() {
		p.install(name, gen, model, skin, resolved)
	})
}

// install builds the scene (GPU uploads) and swaps it into the slot if
// the load generation still matches the latest request. Runs on the
// renderer's thread.
func (p *Previewer) install(name string, gen uint64, model *formats.MDX, skin *formats.Skin, resolved []ResolvedTexture) {
	scene, err := buildScene(name, model, skin, resolved, p.renderer, p.fovDegrees)
	if err != nil {
		p.fail(name, gen, err)
		return
	}

	p.mu.Lock()
	if p.generation != gen {
		p.mu.Unlock()
		// Superseded while building: release everything, stay quiet.
		p.slot.Discard(scene)
		p.log.Debug("discarded stale load", zap.String("asset", name))
		p.settle(name, false)
		return
	}
	p.slot.Install(scene)
	p.installed = name
	p.inFlight = false
	p.mu.Unlock()

	if p.controls != nil {
		p.controls.SetTarget(scene.Framing.Target)
		p.controls.SetMaxDistance(scene.Framing.FarPlane)
	}

	p.log.Info("preview installed",
		zap.String("asset", name),
		zap.Int("vertices", model.VertexCount()),
		zap.Int("submeshes", len(scene.Groups)))
	p.settle(name, true)
}

// finishEmpty handles a model that decoded fine but has no renderable
// data: informational, nothing installed, prior scene untouched.
func (p *Previewer) finishEmpty(name string, gen uint64) {
	p.mu.Lock()
	superseded := p.generation != gen
	if !superseded {
		p.inFlight = false
	}
	p.mu.Unlock()

	if !superseded {
		p.notifier.Notify(notify.LevelInfo, fmt.Sprintf("%s contains no 3D data to preview", name))
	}
	p.settle(name, false)
}

// fail converts load errors into notifications. Errors never propagate
// to the caller of RequestPreview, and a superseded load fails silently.
func (p *Previewer) fail(name string, gen uint64, err error) {
	p.mu.Lock()
	superseded := p.generation != gen
	if !superseded {
		p.inFlight = false
	}
	p.mu.Unlock()

	if superseded {
		p.settle(name, false)
		return
	}

	var encErr *casc.EncryptedError
	if errors.As(err, &encErr) {
		p.notifier.Notify(notify.LevelError,
			fmt.Sprintf("Cannot preview %s: asset is encrypted and the key %s is unknown", name, encErr.Key))
	} else {
		p.notifier.Notify(notify.LevelError,
			fmt.Sprintf("Failed to load %s", name),
			notify.WithActions("View Log"))
		p.notifier.AppendLog(err.Error())
	}

	p.log.Warn("preview failed", zap.String("asset", name), zap.Error(err))
	p.settle(name, false)
}

func (p *Previewer) settle(name string, installed bool) {
	if p.onSettled != nil {
		p.onSettled(name, installed)
	}
}

// skinNameFor maps a model name to its first-LOD skin file.
func skinNameFor(name string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "00.skin"
}
