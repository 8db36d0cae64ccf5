package metadata

/**
 * @brief A structure to hold image resource data, ready for upload.
 */
type ImageResourceData struct {
	/** @brief The width of the image. */
	Width uint32
	/** @brief The height of the image. */
	Height uint32
	/** @brief RGBA pixels normalized to [0, 1], four values per pixel. */
	Pixels []float32
}

/** @brief Parameters used when loading an image. */
type ImageResourceParams struct {
	/** @brief Store the bottom row first, as texture uploads expect. */
	FlipY bool
	/** @brief Downscale so that no side exceeds MaxSize. 0 keeps the original size. */
	MaxSize uint32
}
