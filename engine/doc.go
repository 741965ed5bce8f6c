// Package engine opens modernc.org/sqlite databases for the rest of the
// module and registers the bundled SQL scalar functions. It keeps a thin
// surface so every package shares one driver configuration.
package engine
