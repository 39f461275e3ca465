// Package deps verifies the external DCMTK binaries dcmsort depends on.
package deps
