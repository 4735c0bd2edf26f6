package main

import "github.com/mainstaykit/mainstay/internal/paths"

// ///////////////////////////////////////////////
// Path Aliases
// ///////////////////////////////////////////////

// DataPaths aliases [paths.DataDir] into the main package so daemon code
// can use path helpers without qualifying the internal package name. No
// build constraints here; [filepath.Join] inside [paths.DataDir] handles
// OS-specific separators.
type DataPaths = paths.DataDir
