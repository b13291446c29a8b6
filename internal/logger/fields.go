package logger

// Standard field keys. Use these consistently so log lines can be grepped.
const (
	KeyLibrary    = "library"    // Backend name: local, immich, s3
	KeyAsset      = "asset"      // Asset identifier
	KeyCount      = "count"      // Number of assets
	KeyPage       = "page"       // Page index
	KeyGeneration = "generation" // View-model generation counter
	KeySizeMB     = "size_mb"    // Size in megabytes
	KeyDuration   = "duration"   // Elapsed time
	KeyPath       = "path"       // File path
	KeyError      = "error"      // Error message
)
