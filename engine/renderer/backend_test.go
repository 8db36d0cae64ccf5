package renderer

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dletozeun/3D/engine/core"
	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

const (
	statusComplete   uint32 = 0x8CD5
	statusIncomplete uint32 = 0x8CD6
)

// simDraw records one DrawQuad call.
type simDraw struct {
	program  string
	target   string
	viewport metadata.Viewport
	source   string
}

type simFramebuffer struct {
	fb    *metadata.Framebuffer
	color *metadata.Texture
}

// simBackend is a CPU rendition of the driver. Textures hold RGBA float
// pixels; a quad copies the texture bound on unit 0 into the bound target,
// resampled with nearest filtering, whatever the program.
type simBackend struct {
	maxUnits uint32
	nextID   uint32

	pixels       map[uint32][][]float32
	framebuffers map[uint32]*simFramebuffer
	bound        *simFramebuffer
	units        map[uint32]*metadata.Texture
	program      *metadata.Shader

	depthTest  bool
	culling    bool
	blending   bool
	clearColor [4]float32
	viewport   metadata.Viewport
	wireframe  bool
	// DrawQuad corners, in call order
	quads [][4]float32
	// matrix stack depth
	stack int

	screenWidth  int
	screenHeight int
	screen       []float32

	locations   map[uint32]map[string]int32
	floatValues map[uint32]map[int32][]float32
	intValues   map[uint32]map[int32][]int32

	draws         []simDraw
	triangles     int
	liveShaders   int
	liveTextures  int
	liveFBOs      int
	mipmapUpdates int

	forceIncomplete bool
	gpuError        error
}

func newSimBackend(width, height int) *simBackend {
	return &simBackend{
		maxUnits:     8,
		nextID:       1,
		pixels:       make(map[uint32][][]float32),
		framebuffers: make(map[uint32]*simFramebuffer),
		units:        make(map[uint32]*metadata.Texture),
		screenWidth:  width,
		screenHeight: height,
		screen:       make([]float32, 4*width*height),
		locations:    make(map[uint32]map[string]int32),
		floatValues:  make(map[uint32]map[int32][]float32),
		intValues:    make(map[uint32]map[int32][]int32),
	}
}

func (b *simBackend) id() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

func (b *simBackend) Initialize(appName string, appWidth, appHeight uint32) error {
	return nil
}

func (b *simBackend) Shutdown() error {
	return nil
}

func (b *simBackend) CheckError(op string) error {
	err := b.gpuError
	b.gpuError = nil
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, err, core.ErrGPU)
	}
	return nil
}

func (b *simBackend) MaxTextureUnits() uint32 {
	return b.maxUnits
}

func (b *simBackend) target() ([]float32, int, int) {
	if b.bound == nil {
		return b.screen, b.screenWidth, b.screenHeight
	}
	if b.bound.color == nil {
		return nil, 0, 0
	}
	c := b.bound.color
	return b.pixels[c.ID][0], int(c.Width), int(c.Height)
}

func (b *simBackend) targetName() string {
	if b.bound == nil {
		return "screen"
	}
	if b.bound.color == nil {
		return ""
	}
	return b.bound.color.Name
}

func (b *simBackend) Clear() {
	pixels, _, _ := b.target()
	for i := range pixels {
		pixels[i] = b.clearColor[i%4]
	}
}

func (b *simBackend) SetClearColor(r, g, bl, a float32) {
	b.clearColor = [4]float32{r, g, bl, a}
}

func (b *simBackend) SetDepthTest(enabled bool) {
	b.depthTest = enabled
}

func (b *simBackend) IsDepthTestEnabled() bool {
	return b.depthTest
}

func (b *simBackend) SetCulling(enabled bool) {
	b.culling = enabled
}

func (b *simBackend) SetBlending(enabled bool) {
	b.blending = enabled
}

func (b *simBackend) SetWireframe(enabled bool) {
	b.wireframe = enabled
}

func (b *simBackend) SetViewport(viewport metadata.Viewport) {
	b.viewport = viewport
}

func (b *simBackend) GetViewport() metadata.Viewport {
	return b.viewport
}

func (b *simBackend) Push2D() {
	b.stack++
}

func (b *simBackend) Pop2D() {
	if b.stack == 0 {
		b.gpuError = errors.New("matrix stack underflow")
		return
	}
	b.stack--
}

func (b *simBackend) DrawQuad(x0, y0, x1, y1 float32) {
	d := simDraw{target: b.targetName(), viewport: b.viewport}
	if b.program != nil {
		d.program = b.program.FragmentPath
	}
	src := b.units[0]
	if src != nil {
		d.source = src.Name
	}
	b.draws = append(b.draws, d)
	b.quads = append(b.quads, [4]float32{x0, y0, x1, y1})

	dst, dw, dh := b.target()
	if src == nil || dst == nil {
		return
	}
	sp := b.pixels[src.ID][0]
	sw, sh := int(src.Width), int(src.Height)
	if x0 != 0 || y0 != 0 || x1 != 1 || y1 != 1 {
		b.drawRect(dst, dw, dh, sp, sw, sh, x0, y0, x1, y1)
		return
	}
	for y := 0; y < dh; y++ {
		sy := (2*y + 1) * sh / (2 * dh)
		for x := 0; x < dw; x++ {
			sx := (2*x + 1) * sw / (2 * dw)
			copy(dst[4*(y*dw+x):4*(y*dw+x)+4], sp[4*(sy*sw+sx):4*(sy*sw+sx)+4])
		}
	}
}

// drawRect maps the texture over the pixels whose center falls inside the
// quad, texture coordinate (0,0) at (x0,y0). Row 0 of dst is the bottom row.
func (b *simBackend) drawRect(dst []float32, dw, dh int, sp []float32, sw, sh int, x0, y0, x1, y1 float32) {
	for y := 0; y < dh; y++ {
		v := (float32(y) + 0.5) / float32(dh)
		t := (v - y0) / (y1 - y0)
		if t < 0 || t >= 1 {
			continue
		}
		sy := int(t * float32(sh))
		for x := 0; x < dw; x++ {
			u := (float32(x) + 0.5) / float32(dw)
			s := (u - x0) / (x1 - x0)
			if s < 0 || s >= 1 {
				continue
			}
			sx := int(s * float32(sw))
			copy(dst[4*(y*dw+x):4*(y*dw+x)+4], sp[4*(sy*sw+sx):4*(sy*sw+sx)+4])
		}
	}
}

func (b *simBackend) LoadMatrices(projection, modelView mgl32.Mat4) {}

func (b *simBackend) DrawTriangles(positions, normals []float32, indices []uint32) {
	b.triangles += len(indices) / 3
}

func (b *simBackend) TextureCreate(texture *metadata.Texture, layers [][]float32) error {
	if texture.Width == 0 || texture.Height == 0 {
		return errors.New("empty texture")
	}
	faces := 1
	if texture.TextureType == metadata.TextureTypeCube {
		faces = 6
	}
	storage := make([][]float32, faces)
	for i := range storage {
		storage[i] = make([]float32, 4*texture.PixelCount())
		if i < len(layers) {
			copy(storage[i], layers[i])
		}
	}
	texture.ID = b.id()
	texture.Generation = 0
	b.pixels[texture.ID] = storage
	b.liveTextures++
	return nil
}

func (b *simBackend) TextureDestroy(texture *metadata.Texture) {
	if _, ok := b.pixels[texture.ID]; ok {
		delete(b.pixels, texture.ID)
		b.liveTextures--
	}
	texture.ID = metadata.InvalidID
}

func (b *simBackend) TextureBind(texture *metadata.Texture, unit uint32) {
	b.units[unit] = texture
}

func (b *simBackend) TextureGenerateMipmaps(texture *metadata.Texture) {
	b.mipmapUpdates++
}

func (b *simBackend) TextureRead(texture *metadata.Texture, out []float32) error {
	storage, ok := b.pixels[texture.ID]
	if !ok {
		return core.ErrNullTexture
	}
	if len(out) < len(storage[0]) {
		return errors.New("buffer too small")
	}
	copy(out, storage[0])
	return nil
}

func (b *simBackend) ScreenRead(viewport metadata.Viewport, out []uint8) error {
	for i, v := range b.screen[:4*int(viewport.Width)*int(viewport.Height)] {
		out[i] = uint8(min(max(v, 0), 1) * 255)
	}
	return nil
}

func (b *simBackend) FramebufferCreate(depth bool) (*metadata.Framebuffer, error) {
	fb := &metadata.Framebuffer{ID: b.id(), DepthBufferID: metadata.InvalidID}
	if depth {
		fb.DepthBufferID = b.id()
	}
	b.framebuffers[fb.ID] = &simFramebuffer{fb: fb}
	b.liveFBOs++
	return fb, nil
}

func (b *simBackend) FramebufferDestroy(framebuffer *metadata.Framebuffer) {
	if _, ok := b.framebuffers[framebuffer.ID]; ok {
		delete(b.framebuffers, framebuffer.ID)
		b.liveFBOs--
	}
}

func (b *simBackend) FramebufferBind(framebuffer *metadata.Framebuffer) {
	if framebuffer == nil {
		b.bound = nil
		return
	}
	b.bound = b.framebuffers[framebuffer.ID]
}

func (b *simBackend) FramebufferAttachColor(texture *metadata.Texture) {
	if b.bound == nil {
		b.gpuError = errors.New("attach to the default framebuffer")
		return
	}
	b.bound.color = texture
}

func (b *simBackend) FramebufferAttachDepth(framebuffer *metadata.Framebuffer, width, height uint32) {
	framebuffer.DepthWidth = width
	framebuffer.DepthHeight = height
}

func (b *simBackend) FramebufferStatus() (bool, uint32) {
	if b.forceIncomplete || b.bound == nil || b.bound.color == nil {
		return false, statusIncomplete
	}
	fb, color := b.bound.fb, b.bound.color
	if fb.DepthBufferID != metadata.InvalidID && (fb.DepthWidth != color.Width || fb.DepthHeight != color.Height) {
		return false, statusIncomplete
	}
	return true, statusComplete
}

func (b *simBackend) ShaderCreate(shader *metadata.Shader, vertexSource, fragmentSource string) error {
	if strings.Contains(vertexSource, "#error") || strings.Contains(fragmentSource, "#error") {
		return fmt.Errorf("%s: %w", shader.Name, core.ErrShaderCompile)
	}
	shader.ID = b.id()
	b.locations[shader.ID] = make(map[string]int32)
	b.floatValues[shader.ID] = make(map[int32][]float32)
	b.intValues[shader.ID] = make(map[int32][]int32)
	b.liveShaders++
	return nil
}

func (b *simBackend) ShaderDestroy(shader *metadata.Shader) {
	if _, ok := b.locations[shader.ID]; ok {
		delete(b.locations, shader.ID)
		b.liveShaders--
	}
}

func (b *simBackend) ShaderUse(shader *metadata.Shader) {
	b.program = shader
}

// Uniforms whose name starts with "unused" are not active in the program.
func (b *simBackend) ShaderUniformLocation(shader *metadata.Shader, name string) int32 {
	if strings.HasPrefix(name, "unused") {
		return metadata.NoUniform
	}
	locations := b.locations[shader.ID]
	if loc, ok := locations[name]; ok {
		return loc
	}
	loc := int32(len(locations))
	locations[name] = loc
	return loc
}

func (b *simBackend) SetUniformFloat(location int32, uniformType metadata.ShaderUniformType, count int32, data []float32) {
	if b.program == nil {
		b.gpuError = errors.New("uniform upload without a program")
		return
	}
	if location == metadata.NoUniform {
		return
	}
	b.floatValues[b.program.ID][location] = append([]float32(nil), data...)
}

func (b *simBackend) SetUniformInt(location int32, uniformType metadata.ShaderUniformType, count int32, data []int32) {
	if b.program == nil {
		b.gpuError = errors.New("uniform upload without a program")
		return
	}
	if location == metadata.NoUniform {
		return
	}
	b.intValues[b.program.ID][location] = append([]int32(nil), data...)
}

// uniformFloat returns the last value uploaded to name in shader.
func (b *simBackend) uniformFloat(shader *metadata.Shader, name string) []float32 {
	loc, ok := b.locations[shader.ID][name]
	if !ok {
		return nil
	}
	return b.floatValues[shader.ID][loc]
}

func (b *simBackend) uniformInt(shader *metadata.Shader, name string) []int32 {
	loc, ok := b.locations[shader.ID][name]
	if !ok {
		return nil
	}
	return b.intValues[shader.ID][loc]
}

// fill sets every texel of texture to fn(x, y).
func (b *simBackend) fill(texture *metadata.Texture, fn func(x, y int) [4]float32) {
	pixels := b.pixels[texture.ID][0]
	w := int(texture.Width)
	for y := 0; y < int(texture.Height); y++ {
		for x := 0; x < w; x++ {
			c := fn(x, y)
			copy(pixels[4*(y*w+x):], c[:])
		}
	}
}

func (b *simBackend) resetDraws() {
	b.draws = nil
}

// simSources serves shader sources from memory. Any path not listed gets an
// empty program.
type simSources map[string]string

func (s simSources) ShaderSource(path string) (string, error) {
	if src, ok := s[path]; ok {
		if src == "" {
			return "", fmt.Errorf("%s: not found", path)
		}
		return src, nil
	}
	return "void main() {}", nil
}

func newTestRenderer(t *testing.T, width, height uint32) (*Renderer, *simBackend, simSources) {
	t.Helper()
	backend := newSimBackend(int(width), int(height))
	sources := simSources{}
	r, err := New("test", backend, sources, width, height)
	require.NoError(t, err)
	return r, backend, sources
}

func newTestTexture(t *testing.T, r *Renderer, name string, width, height uint32) *metadata.Texture {
	t.Helper()
	texture := metadata.NewTexture(metadata.TextureConfig{
		Name:        name,
		TextureType: metadata.TextureType2d,
		Width:       width,
		Height:      height,
		Format:      metadata.TextureFormatRGBA32F,
	})
	require.NoError(t, r.backend.TextureCreate(texture, nil))
	return texture
}

// requireRestored checks that nothing leaked out of a 2D pass.
func requireRestored(t *testing.T, b *simBackend, viewport metadata.Viewport, depthTest bool) {
	t.Helper()
	require.Zero(t, b.stack, "unbalanced Push2D/Pop2D")
	require.Nil(t, b.bound, "framebuffer left bound")
	require.Nil(t, b.program, "program left current")
	require.Equal(t, viewport, b.viewport)
	require.Equal(t, depthTest, b.depthTest)
}
