package segment

import "agrisight/models"

// Moore neighborhood in clockwise order (screen coordinates, row grows
// downward), starting at the western neighbor.
var mooreOffsets = [8][2]int{
	{0, -1},  // W
	{-1, -1}, // NW
	{-1, 0},  // N
	{-1, 1},  // NE
	{0, 1},   // E
	{1, 1},   // SE
	{1, 0},   // S
	{1, -1},  // SW
}

func offsetIndex(dr, dc int) int {
	for i, o := range mooreOffsets {
		if o[0] == dr && o[1] == dc {
			return i
		}
	}
	return 0
}

// traceBoundary follows the outer contour of a connected region using
// Moore neighbor tracing. The start pixel must be the region's first pixel
// in raster-scan order, which guarantees its western neighbor is outside
// the region. Terminates when the walk re-enters the start pixel from the
// initial backtrack position (Jacob's stopping criterion) or after the
// iteration cap.
func traceBoundary(fg func(r, c int) bool, startR, startC, maxSteps int) []models.PixelRC {
	path := []models.PixelRC{{Row: startR, Col: startC}}

	curR, curC := startR, startC
	backR, backC := startR, startC-1
	startBackR, startBackC := backR, backC

	for step := 0; step < 4*maxSteps; step++ {
		bi := offsetIndex(backR-curR, backC-curC)
		moved := false
		for k := 1; k <= 8; k++ {
			idx := (bi + k) % 8
			nr := curR + mooreOffsets[idx][0]
			nc := curC + mooreOffsets[idx][1]
			if fg(nr, nc) {
				prev := (bi + k - 1) % 8
				backR = curR + mooreOffsets[prev][0]
				backC = curC + mooreOffsets[prev][1]
				curR, curC = nr, nc
				moved = true
				break
			}
		}
		if !moved {
			// Isolated single pixel.
			return path
		}
		if curR == startR && curC == startC && backR == startBackR && backC == startBackC {
			return path
		}
		path = append(path, models.PixelRC{Row: curR, Col: curC})
	}
	return path
}
