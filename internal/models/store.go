package models

// ArtifactStoreSpec is the write-once-read-many location for deployable
// build outputs. The compute identity reads it, the external deployment
// pipeline writes it, nobody reads it anonymously.
type ArtifactStoreSpec struct {
	Name      string
	Versioned bool

	// PublicReadBlocked must stay true; it exists as a field so the
	// generated policy can assert on it instead of assuming it.
	PublicReadBlocked bool

	ReaderIdentity string
	WriterIdentity string
}
