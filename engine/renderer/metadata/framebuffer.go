package metadata

/**
 * @brief GPU handles of an off-screen framebuffer object.
 */
type Framebuffer struct {
	/** @brief The framebuffer object handle. */
	ID uint32
	/** @brief The depth renderbuffer handle, InvalidID when the framebuffer has no depth. */
	DepthBufferID uint32
	/** @brief Current storage size of the depth renderbuffer. */
	DepthWidth  uint32
	DepthHeight uint32
}

/** @brief Viewport rectangle in pixels. */
type Viewport struct {
	X, Y          int32
	Width, Height int32
}
