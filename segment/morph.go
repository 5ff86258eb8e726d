package segment

// Morphological opening with a full 3x3 structuring element removes
// isolated pixels and pixel-wide spurs while preserving region shape.
// Out-of-bounds pixels count as background for erosion, so regions touching
// the raster edge shrink by one pixel and dilation grows them back.

// erode keeps a pixel only when its entire 3x3 neighborhood is foreground.
func erode(g *bitGrid) *bitGrid {
	out := newBitGrid(g.rows, g.cols)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if !g.at(r, c) {
				continue
			}
			keep := true
			for dr := -1; dr <= 1 && keep; dr++ {
				for dc := -1; dc <= 1; dc++ {
					if !g.at(r+dr, c+dc) {
						keep = false
						break
					}
				}
			}
			out.put(r, c, keep)
		}
	}
	return out
}

// dilate marks a pixel when any pixel in its 3x3 neighborhood is foreground.
func dilate(g *bitGrid) *bitGrid {
	out := newBitGrid(g.rows, g.cols)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			on := false
			for dr := -1; dr <= 1 && !on; dr++ {
				for dc := -1; dc <= 1; dc++ {
					if g.at(r+dr, c+dc) {
						on = true
						break
					}
				}
			}
			out.put(r, c, on)
		}
	}
	return out
}
