// cascview is the interactive asset browser: it previews models from
// CARC archives in a 3D viewport and exports selected or dropped assets.
package main

import (
	"fmt"
	gomath "math"
	"os"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/cascbox/cascview/internal/browser"
	"github.com/cascbox/cascview/internal/config"
	"github.com/cascbox/cascview/internal/export"
	"github.com/cascbox/cascview/internal/logger"
	"github.com/cascbox/cascview/internal/notify"
	"github.com/cascbox/cascview/internal/render"
	"github.com/cascbox/cascview/internal/viewer"
	"github.com/cascbox/cascview/pkg/casc"
	"github.com/cascbox/cascview/pkg/math"
)

const windowTitle = "cascview"

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.DefaultOptions(cfg.Logging.Level, cfg.Logging.LogFile))
	defer logger.Sync()

	logger.Log.Info("starting cascview",
		zap.Strings("archives", cfg.Storage.Archives),
		zap.String("listfile", cfg.Storage.Listfile))

	store, err := casc.OpenStore(cfg.Storage.Archives, cfg.Storage.Listfile)
	if err != nil {
		logger.Log.Error("opening content store", zap.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	if err := run(cfg, store); err != nil {
		logger.Log.Error("shell failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, store *casc.Store) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("SDL_Init failed: %w", err)
	}
	defer sdl.Quit()

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	window, err := sdl.CreateWindow(
		windowTitle,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(cfg.Viewer.Width), int32(cfg.Viewer.Height),
		sdl.WINDOW_OPENGL|sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE|sdl.WINDOW_ALLOW_HIGHDPI,
	)
	if err != nil {
		return fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}
	defer window.Destroy()

	glContext, err := window.GLCreateContext()
	if err != nil {
		return fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}
	defer sdl.GLDeleteContext(glContext)

	if err := gl.Init(); err != nil {
		return fmt.Errorf("OpenGL init failed: %w", err)
	}
	logger.Log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	if cfg.Viewer.VSync {
		if err := sdl.GLSetSwapInterval(1); err != nil {
			logger.Log.Warn("failed to enable VSync", zap.Error(err))
		}
	} else {
		sdl.GLSetSwapInterval(0)
	}

	renderer, err := render.NewGLRenderer()
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	defer renderer.Destroy()

	notifier := notify.NewLogNotifier(logger.Log)

	filter := browser.NewFilter(cfg.Filters)
	names := filter.Apply(store)
	logger.Log.Info("listfile loaded", zap.Int("selectable", len(names)))

	camera := newOrbitCamera()

	// GPU work from load goroutines is pumped through this queue and
	// executed between frames, on the context-owning thread.
	mainq := make(chan func(), 64)

	previewer := viewer.New(store, renderer, notifier,
		viewer.WithControls(camera),
		viewer.WithFOV(cfg.Viewer.FOV),
		viewer.WithMaxTextureSize(cfg.Viewer.MaxTextureSize),
		viewer.WithMainThread(func(f func()) { mainq <- f }),
		viewer.WithLogger(logger.Named("viewer")))

	exporter := export.NewExporter(store, notifier, cfg.Export.OutputDir,
		export.WithFormat(cfg.Export.Format),
		export.WithWorkers(cfg.Export.Workers),
		export.WithLogger(logger.Named("export")))
	drops := browser.NewDropHandler(exporter, notifier, filter.Extensions(), logger.Named("drop"))

	selected := 0
	framedScene := ""
	if cfg.Viewer.AutoPreview && len(names) > 0 {
		previewer.RequestPreview(names[selected])
	}

	var leftDown bool
	var lastX, lastY int32

	running := true
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				running = false

			case *sdl.KeyboardEvent:
				if e.Type != sdl.KEYDOWN {
					break
				}
				switch e.Keysym.Sym {
				case sdl.K_ESCAPE, sdl.K_q:
					running = false
				case sdl.K_RIGHT, sdl.K_DOWN:
					selected = cycle(selected, 1, len(names))
					onSelect(previewer, window, cfg, names, selected)
				case sdl.K_LEFT, sdl.K_UP:
					selected = cycle(selected, -1, len(names))
					onSelect(previewer, window, cfg, names, selected)
				case sdl.K_RETURN:
					if len(names) > 0 {
						previewer.RequestPreview(names[selected])
					}
				case sdl.K_e:
					if len(names) > 0 {
						name := names[selected]
						go exporter.ExportBatch([]string{name}, export.ModeRemote)
					}
				}

			case *sdl.MouseButtonEvent:
				if e.Button == sdl.BUTTON_LEFT {
					leftDown = e.State == sdl.PRESSED
					lastX, lastY = e.X, e.Y
				}

			case *sdl.MouseMotionEvent:
				if leftDown {
					camera.Rotate(float32(e.X-lastX), float32(e.Y-lastY))
				}
				lastX, lastY = e.X, e.Y

			case *sdl.MouseWheelEvent:
				camera.Zoom(float32(e.Y))

			case *sdl.DropEvent:
				if e.Type == sdl.DROPFILE {
					go drops.Accept([]string{e.File})
				}
			}
		}

		// Run pending installs and discards before drawing.
	drain:
		for {
			select {
			case f := <-mainq:
				f()
			default:
				break drain
			}
		}

		dw, dh := window.GLGetDrawableSize()
		renderer.Clear(dw, dh)

		if scene := previewer.Scene(); scene != nil {
			if scene.Name != framedScene {
				camera.SetDistance(scene.Framing.Distance)
				framedScene = scene.Name
			}
			drawScene(renderer, camera, scene, cfg.Viewer.FOV, dw, dh)
		}

		window.GLSwap()
		sdl.Delay(8)
	}

	return nil
}

func cycle(current, step, n int) int {
	if n == 0 {
		return 0
	}
	return ((current+step)%n + n) % n
}

func onSelect(p *viewer.Previewer, window *sdl.Window, cfg *config.Config, names []string, selected int) {
	if len(names) == 0 {
		return
	}
	name := names[selected]
	window.SetTitle(windowTitle + " - " + name)
	if cfg.Viewer.AutoPreview {
		p.RequestPreview(name)
	}
}

func drawScene(r *render.GLRenderer, camera *orbitCamera, scene *viewer.LoadedScene, fovDegrees float32, dw, dh int32) {
	if dh == 0 {
		return
	}

	far := scene.Framing.FarPlane
	if far < 100 {
		far = 100
	}
	projection := math.Perspective(
		fovDegrees*gomath.Pi/180,
		float32(dw)/float32(dh),
		0.1, far)

	groups := make([]render.DrawGroup, len(scene.Groups))
	for i, g := range scene.Groups {
		groups[i] = render.DrawGroup{
			IndexStart: g.IndexStart,
			IndexCount: g.IndexCount,
			Texture:    g.Texture,
		}
	}

	r.Draw(render.DrawCall{
		Mesh:       scene.Mesh,
		Groups:     groups,
		Model:      math.Identity(),
		View:       camera.View(),
		Projection: projection,
	})
}
