// Kernel core runtime
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package reg

// In32 and Out32 perform port-mapped I/O. They are implemented in
// port_amd64.s and are the only way the Go core touches the legacy I/O bus
// (used here exclusively for the ACPI PM timer counter).
func In32(port uint16) (val uint32)
func Out32(port uint16, val uint32)
