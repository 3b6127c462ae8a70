package scene

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/krzyz/topo-renderer/internal/engine/framebuffer"
	"github.com/krzyz/topo-renderer/internal/engine/scene/shaders"
	"github.com/krzyz/topo-renderer/internal/engine/shader"
)

// PostProcessor draws the offscreen scene to the default framebuffer,
// tracing contours where the linearized depth has discontinuities.
type PostProcessor struct {
	program uint32

	locColor    int32
	locDepth    int32
	locViewport int32
	locPixelize int32

	// Core profile requires a bound VAO even for attribute-less draws.
	emptyVAO uint32

	PixelizeN int
}

// NewPostProcessor compiles the fullscreen pass.
func NewPostProcessor() (*PostProcessor, error) {
	program, err := shader.CompileProgram(shaders.PostprocessVertexShader, shaders.PostprocessFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("postprocess shader: %w", err)
	}

	pp := &PostProcessor{
		program:   program,
		PixelizeN: 1,
	}
	pp.locColor = shader.GetUniform(program, "uColor")
	pp.locDepth = shader.GetUniform(program, "uDepth")
	pp.locViewport = shader.GetUniform(program, "uViewport")
	pp.locPixelize = shader.GetUniform(program, "uPixelizeN")

	gl.GenVertexArrays(1, &pp.emptyVAO)

	return pp, nil
}

// Render samples the framebuffer's color and depth attachments and
// writes the contoured image to the currently bound render target.
func (pp *PostProcessor) Render(fb *framebuffer.Framebuffer) {
	width, height := fb.Size()

	gl.UseProgram(pp.program)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, fb.ColorTexture())
	gl.Uniform1i(pp.locColor, 0)

	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, fb.DepthTexture())
	gl.Uniform1i(pp.locDepth, 1)

	gl.Uniform2f(pp.locViewport, float32(width), float32(height))
	gl.Uniform1i(pp.locPixelize, int32(pp.PixelizeN))

	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(pp.emptyVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}

// Destroy releases all resources.
func (pp *PostProcessor) Destroy() {
	if pp.program != 0 {
		gl.DeleteProgram(pp.program)
		pp.program = 0
	}
	if pp.emptyVAO != 0 {
		gl.DeleteVertexArrays(1, &pp.emptyVAO)
		pp.emptyVAO = 0
	}
}
