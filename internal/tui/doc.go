// Package tui shows a comparison while it runs: each method's completion
// under the concurrent policy, then under the serial one, then the report.
package tui
