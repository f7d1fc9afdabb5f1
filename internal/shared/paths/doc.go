// Package paths locates per-user files for the autothinker CLI.
//
// # Directory Structure
//
//	$AUTOTHINKER_HOME, or $XDG_DATA_HOME/autothinker, or ~/.local/share/autothinker
//	  └── blueprints.db   (local store used with --local)
//
// # Usage
//
//	dbPath, err := paths.Database() // creates the directory if needed
package paths
