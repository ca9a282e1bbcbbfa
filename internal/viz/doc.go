// Package viz draws Fenton-Karma simulation states.
//
// Every plotting function returns a [figure.Figure] that the caller saves
// or shows, except [PlotStimuli], which shows its figure at once:
//
//   - [PlotState]: one heatmap per field of a state
//   - [AnimateState]: an [Animation] replaying a sequence of states
//   - [ShowGrid]: a grid of frames of one field, in mV
//   - [Show3D]: one field as a perspective surface
//   - [PlotStimuli]: stimulus patterns
//
// Figures render to image formats through gonum/plot and to the terminal
// with half-block heatmaps and braille wireframes. [Player] replays an
// Animation interactively.
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	[ ]   - Step back/forward
//	R     - Restart
//	G     - Toggle GIF recording
//	3     - Toggle surface view
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
