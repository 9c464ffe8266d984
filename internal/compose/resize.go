package compose

import "ai-video-factory/internal/media"

// defaultResize is the production resizer; tests substitute their own
func defaultResize(srcPath, workDir string) (string, error) {
	return media.ResizeImage(srcPath, workDir)
}
