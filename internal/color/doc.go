// Package color provides the terminal color palette of jstestctl.
//
// Colors are adaptive: each has a light and a dark variant, and lipgloss
// picks one based on the terminal background. Initialize overrides the
// detection, which is useful when the background cannot be queried (CI logs,
// pipes).
//
// The palette is semantic:
//   - Primary: headers
//   - Success: passed test cases
//   - Error: failed test cases
//   - Warning: harness errors
//   - Info: informational lines
//   - Muted: skipped test cases and secondary detail
//
// # Usage Example
//
//	color.Initialize(true)
//	fmt.Println(color.PassedStyle.Render("PASSED"))
//
// Setting NO_COLOR makes Enabled return false; callers then print plain text.
package color
