package stagehand

// Previewer applies a patch to file content in memory, without touching
// the repository.
type Previewer interface {
	// Preview returns the content with the patch applied.
	Preview(content, patch string) (string, error)
}
