package fsys

// Mount is one entry of the drives view
type Mount struct {
	Path   string
	Device string
	FSType string
}
