// Package viz renders comparison reports and trajectories for the terminal.
//
// Reports are built with lipgloss:
//
//   - [RenderReport]: both policies side by side, totals and benefit
//   - [RenderPolicy]: one policy's per-method table
//   - [RenderConvergence]: observed order per method
//
// Trajectories are drawn with asciigraph by [PlotTrajectory] and
// [PlotDeviation].
package viz
