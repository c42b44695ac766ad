package game

import (
	"fmt"
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"go.uber.org/zap"

	"github.com/lumen2d/lumen/camera"
	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/keys"
	"github.com/lumen2d/lumen/world"
)

// font pairs a loaded raylib font with the size it was rasterized at.
type font struct {
	rl   rl.Font
	size float32
}

// Renderer is the raylib edge: it owns the GPU resources and the virtual
// render target, and draws the world back-to-front by z-index. All engine
// state stays in the world; the renderer only reads it.
type Renderer struct {
	log *zap.Logger

	textures map[keys.Key]rl.Texture2D
	fonts    map[keys.Key]font
	shaders  map[keys.Key]rl.Shader

	target           rl.RenderTexture2D
	virtualW         float32
	virtualH         float32
	clearColor       rl.Color
	showDebugOverlay bool
}

// drawItem is one z-sorted draw call.
type drawItem struct {
	z      int
	e      ecs.Entity
	screen bool
}

// NewRenderer creates the virtual render target and empty asset stores. The
// window must already be open.
func NewRenderer(log *zap.Logger, virtualW, virtualH float32) *Renderer {
	return &Renderer{
		log:        log,
		textures:   make(map[keys.Key]rl.Texture2D),
		fonts:      make(map[keys.Key]font),
		shaders:    make(map[keys.Key]rl.Shader),
		target:     rl.LoadRenderTexture(int32(virtualW), int32(virtualH)),
		virtualW:   virtualW,
		virtualH:   virtualH,
		clearColor: rl.Black,
	}
}

// Unload releases all GPU resources.
func (r *Renderer) Unload() {
	for _, t := range r.textures {
		rl.UnloadTexture(t)
	}
	for _, f := range r.fonts {
		rl.UnloadFont(f.rl)
	}
	for _, s := range r.shaders {
		rl.UnloadShader(s)
	}
	rl.UnloadRenderTexture(r.target)
}

// LoadTexture loads a texture under the given key, replacing any previous one.
func (r *Renderer) LoadTexture(id keys.Key, path string) error {
	tex := rl.LoadTexture(path)
	if tex.ID == 0 {
		return fmt.Errorf("loading texture %q from %s", id.String(), path)
	}
	if old, ok := r.textures[id]; ok {
		rl.UnloadTexture(old)
	}
	r.textures[id] = tex
	return nil
}

// LoadFont loads a font rasterized at the given size.
func (r *Renderer) LoadFont(id keys.Key, path string, size float32) error {
	f := rl.LoadFontEx(path, int32(size), nil, 0)
	if f.Texture.ID == 0 {
		return fmt.Errorf("loading font %q from %s", id.String(), path)
	}
	if old, ok := r.fonts[id]; ok {
		rl.UnloadFont(old.rl)
	}
	r.fonts[id] = font{rl: f, size: size}
	return nil
}

// LoadShader loads a fragment (and optional vertex) shader.
func (r *Renderer) LoadShader(id keys.Key, vsPath, fsPath string) error {
	s := rl.LoadShader(vsPath, fsPath)
	if s.ID == 0 {
		return fmt.Errorf("loading shader %q", id.String())
	}
	if old, ok := r.shaders[id]; ok {
		rl.UnloadShader(old)
	}
	r.shaders[id] = s
	return nil
}

// Measure returns the pixel size of rendered text. Unknown fonts fall back
// to the raylib default font.
func (r *Renderer) Measure(fontKey keys.Key, content string, size float32) (w, h float32) {
	f, ok := r.fonts[fontKey]
	if !ok {
		v := rl.MeasureTextEx(rl.GetFontDefault(), content, size, 1)
		return v.X, v.Y
	}
	v := rl.MeasureTextEx(f.rl, content, size, 1)
	return v.X, v.Y
}

// letterbox returns the scale and window offset of the virtual target.
func (r *Renderer) letterbox() (scale, offX, offY float32) {
	winW := float32(rl.GetScreenWidth())
	winH := float32(rl.GetScreenHeight())
	scale = winW / r.virtualW
	if s := winH / r.virtualH; s < scale {
		scale = s
	}
	offX = (winW - r.virtualW*scale) / 2
	offY = (winH - r.virtualH*scale) / 2
	return scale, offX, offY
}

// WindowToVirtual maps window coordinates onto the virtual screen.
func (r *Renderer) WindowToVirtual(x, y float32) (vx, vy float32) {
	scale, offX, offY := r.letterbox()
	if scale == 0 {
		return 0, 0
	}
	return (x - offX) / scale, (y - offY) / scale
}

// Draw renders one frame: world-space entities under the camera transform,
// then screen-space entities, then the letterboxed blit to the window.
func (g *Game) draw() {
	r := g.renderer
	w := g.world

	worldItems, screenItems := collectDrawItems(w)

	rl.BeginTextureMode(r.target)
	rl.ClearBackground(r.clearColor)

	rl.BeginMode2D(rl.Camera2D{
		Target:   rl.Vector2{X: g.camera.TargetX, Y: g.camera.TargetY},
		Offset:   rl.Vector2{X: g.camera.OffsetX, Y: g.camera.OffsetY},
		Rotation: g.camera.Rotation,
		Zoom:     g.camera.Zoom,
	})
	for _, item := range worldItems {
		r.drawEntity(w, item.e, false)
	}
	rl.EndMode2D()

	for _, item := range screenItems {
		r.drawEntity(w, item.e, true)
	}
	rl.EndTextureMode()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	scale, offX, offY := r.letterbox()
	// Render textures are y-flipped; the negative source height compensates.
	rl.DrawTexturePro(r.target.Texture,
		rl.Rectangle{Width: r.virtualW, Height: -r.virtualH},
		rl.Rectangle{X: offX, Y: offY, Width: r.virtualW * scale, Height: r.virtualH * scale},
		rl.Vector2{}, 0, rl.White)
	if r.showDebugOverlay {
		g.drawDebugOverlay()
	}
	rl.EndDrawing()
}

// collectDrawItems gathers renderable entities split by coordinate space,
// each sorted by z-index with stable order within a layer.
func collectDrawItems(w *world.World) (worldItems, screenItems []drawItem) {
	seen := make(map[ecs.Entity]struct{})
	add := func(e ecs.Entity) {
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		item := drawItem{e: e, screen: w.ScreenPositions.Has(e)}
		if w.ZIndices.Has(e) {
			item.z = w.ZIndices.Get(e).Value
		}
		if item.screen {
			screenItems = append(screenItems, item)
		} else {
			worldItems = append(worldItems, item)
		}
	}

	sprites := ecs.NewFilter1[components.Sprite](w.ECS).Query()
	for sprites.Next() {
		add(sprites.Entity())
	}
	texts := ecs.NewFilter1[components.DynamicText](w.ECS).Query()
	for texts.Next() {
		add(texts.Entity())
	}

	sort.SliceStable(worldItems, func(i, j int) bool { return worldItems[i].z < worldItems[j].z })
	sort.SliceStable(screenItems, func(i, j int) bool { return screenItems[i].z < screenItems[j].z })
	return worldItems, screenItems
}

// entityPose resolves the draw position, rotation, and scale of an entity.
func entityPose(w *world.World, e ecs.Entity, screen bool) (x, y, rot, sx, sy float32) {
	sx, sy = 1, 1
	switch {
	case screen && w.ScreenPositions.Has(e):
		p := w.ScreenPositions.Get(e)
		x, y = p.X, p.Y
	case w.Transforms.Has(e):
		t := w.Transforms.Get(e)
		return t.X, t.Y, t.Rotation, t.ScaleX, t.ScaleY
	case w.Positions.Has(e):
		p := w.Positions.Get(e)
		x, y = p.X, p.Y
	}
	if w.Rotations.Has(e) {
		rot = w.Rotations.Get(e).Degrees
	}
	if w.Scales.Has(e) {
		s := w.Scales.Get(e)
		sx, sy = s.X, s.Y
	}
	return x, y, rot, sx, sy
}

func rlColor(c components.Color) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// drawEntity draws one entity's sprite and/or text, wrapped in its shader
// when one is attached.
func (r *Renderer) drawEntity(w *world.World, e ecs.Entity, screen bool) {
	if !w.ECS.Alive(e) {
		return
	}
	x, y, rot, sx, sy := entityPose(w, e, screen)

	shaderActive := false
	if w.Shaders.Has(e) {
		es := w.Shaders.Get(e)
		if s, ok := r.shaders[es.Shader]; ok {
			for name, val := range es.Uniforms {
				loc := rl.GetShaderLocation(s, name)
				if loc >= 0 {
					v := []float32{val}
					rl.SetShaderValue(s, loc, v, rl.ShaderUniformFloat)
				}
			}
			rl.BeginShaderMode(s)
			shaderActive = true
		}
	}

	tint := components.White
	if w.Tints.Has(e) {
		tint = w.Tints.Get(e).Color
	}

	if w.Sprites.Has(e) {
		r.drawSprite(w.Sprites.Get(e), x, y, rot, sx, sy, tint)
	}
	if w.Texts.Has(e) {
		r.drawText(w.Texts.Get(e), x, y, tint, w.Tints.Has(e))
	}

	if shaderActive {
		rl.EndShaderMode()
	}
}

func (r *Renderer) drawSprite(s *components.Sprite, x, y, rot, sx, sy float32, tint components.Color) {
	tex, ok := r.textures[s.Texture]
	if !ok {
		return
	}
	src := rl.Rectangle{X: s.OffsetX, Y: s.OffsetY, Width: s.Width, Height: s.Height}
	if s.FlipX {
		src.Width = -src.Width
	}
	if s.FlipY {
		src.Height = -src.Height
	}
	dst := rl.Rectangle{X: x, Y: y, Width: s.Width * sx, Height: s.Height * sy}
	origin := rl.Vector2{X: s.OriginX * sx, Y: s.OriginY * sy}
	rl.DrawTexturePro(tex, src, dst, origin, rot, rlColor(tint))
}

// drawText renders dynamic text. The text's own color applies unless a Tint
// overrides it.
func (r *Renderer) drawText(t *components.DynamicText, x, y float32, tint components.Color, tinted bool) {
	color := t.Color
	if tinted {
		color = tint
	}
	f, ok := r.fonts[t.Font]
	if !ok {
		rl.DrawTextEx(rl.GetFontDefault(), t.Content, rl.Vector2{X: x, Y: y}, t.Size, 1, rlColor(color))
		return
	}
	rl.DrawTextEx(f.rl, t.Content, rl.Vector2{X: x, Y: y}, t.Size, 1, rlColor(color))
}

var _ world.AssetLoader = (*Renderer)(nil)
var _ world.TextMeasurer = (*Renderer)(nil)

// toCamera copies the world's logical camera state into the viewport camera.
func toCamera(cam *camera.Camera, st world.CameraState) {
	cam.Apply(st.TargetX, st.TargetY, st.OffsetX, st.OffsetY, st.RotationDeg, st.Zoom)
}
