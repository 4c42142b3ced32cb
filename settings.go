package doctree

// Settings receives the location of the RTP folder once a bootstrap resolved
// it. The core only ever writes to it.
type Settings interface {
	StoreRTPFolderLocation(loc Location) error
}

// SettingsFunc adapts an ordinary function to the Settings interface.
type SettingsFunc func(loc Location) error

// StoreRTPFolderLocation calls f(loc).
func (f SettingsFunc) StoreRTPFolderLocation(loc Location) error {
	return f(loc)
}
