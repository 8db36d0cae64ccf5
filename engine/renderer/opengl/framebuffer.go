package opengl

import (
	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/go-gl/gl/v2.1/gl"
)

func (r *OpenGLRenderer) FramebufferCreate(depth bool) (*metadata.Framebuffer, error) {
	fb := &metadata.Framebuffer{
		ID:            metadata.InvalidID,
		DepthBufferID: metadata.InvalidID,
	}
	gl.GenFramebuffers(1, &fb.ID)
	if depth {
		gl.GenRenderbuffers(1, &fb.DepthBufferID)
	}
	if err := r.CheckError("framebuffer create"); err != nil {
		r.FramebufferDestroy(fb)
		return nil, err
	}
	return fb, nil
}

func (r *OpenGLRenderer) FramebufferDestroy(framebuffer *metadata.Framebuffer) {
	if framebuffer.DepthBufferID != metadata.InvalidID {
		gl.DeleteRenderbuffers(1, &framebuffer.DepthBufferID)
		framebuffer.DepthBufferID = metadata.InvalidID
	}
	if framebuffer.ID != metadata.InvalidID {
		gl.DeleteFramebuffers(1, &framebuffer.ID)
		framebuffer.ID = metadata.InvalidID
	}
}

func (r *OpenGLRenderer) FramebufferBind(framebuffer *metadata.Framebuffer) {
	if framebuffer == nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, framebuffer.ID)
}

func (r *OpenGLRenderer) FramebufferAttachColor(texture *metadata.Texture) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, texture.ID, 0)
}

// FramebufferAttachDepth resizes the depth renderbuffer when needed and
// attaches it to the bound framebuffer.
func (r *OpenGLRenderer) FramebufferAttachDepth(framebuffer *metadata.Framebuffer, width, height uint32) {
	if framebuffer.DepthBufferID == metadata.InvalidID {
		return
	}
	gl.BindRenderbuffer(gl.RENDERBUFFER, framebuffer.DepthBufferID)
	if framebuffer.DepthWidth != width || framebuffer.DepthHeight != height {
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
		framebuffer.DepthWidth = width
		framebuffer.DepthHeight = height
	}
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, framebuffer.DepthBufferID)
}

func (r *OpenGLRenderer) FramebufferStatus() (bool, uint32) {
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	return status == gl.FRAMEBUFFER_COMPLETE, status
}
