// Package winreg serves the live Windows registry as a types.Backend. Every
// call opens the key by path, reads, and closes it again; no handle outlives
// a single call. On other platforms Open reports types.ErrUnsupported.
package winreg
