package xcresult

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"howett.net/plist"
)

// InfoFileName is the descriptor file at the root of every result bundle.
const InfoFileName = "Info.plist"

// The only bundle format this package parses. Any other value, newer ones
// included, is rejected.
const (
	SupportedStorageBackend     = "fileBacked2"
	SupportedStorageCompression = "standard"
	SupportedMajorVersion       = 3
)

// Info is the bundle descriptor stored in Info.plist.
type Info struct {
	DateCreated time.Time   `plist:"dateCreated" json:"dateCreated" yaml:"dateCreated"`
	RootID      RootID      `plist:"rootId" json:"rootId" yaml:"rootId"`
	Storage     StorageInfo `plist:"storage" json:"storage" yaml:"storage"`
	Version     VersionInfo `plist:"version" json:"version" yaml:"version"`
}

// RootID addresses the root ActionsInvocationRecord in the bundle store.
type RootID struct {
	Hash string `plist:"hash" json:"hash" yaml:"hash"`
}

// StorageInfo describes how the bundle store is laid out on disk.
type StorageInfo struct {
	Backend     string `plist:"backend" json:"backend" yaml:"backend"`
	Compression string `plist:"compression" json:"compression" yaml:"compression"`
}

// VersionInfo is the bundle format version.
type VersionInfo struct {
	Major int `plist:"major" json:"major" yaml:"major"`
	Minor int `plist:"minor" json:"minor" yaml:"minor"`
}

// ReadInfo reads and decodes <bundlePath>/Info.plist.
func ReadInfo(bundlePath string) (*Info, error) {
	f, err := os.Open(filepath.Join(bundlePath, InfoFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle info: %w", err)
	}
	defer f.Close()

	var info Info
	if err := plist.NewDecoder(f).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode bundle info: %w", err)
	}
	return &info, nil
}

// Validate checks the storage backend, compression and major version, in that order.
func (i *Info) Validate() error {
	if i.Storage.Backend != SupportedStorageBackend {
		return &UnsupportedFormatError{Field: "storage backend", Value: i.Storage.Backend}
	}
	if i.Storage.Compression != SupportedStorageCompression {
		return &UnsupportedFormatError{Field: "storage compression", Value: i.Storage.Compression}
	}
	if i.Version.Major != SupportedMajorVersion {
		return &UnsupportedFormatError{Field: "major version", Value: i.Version.Major}
	}
	return nil
}

// String returns the version as "major.minor".
func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}
