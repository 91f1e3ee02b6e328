// Package viz is the terminal front end for force layouts.
//
// [Model] drives any [Source] (usually an experiment.Runner) one frame at a
// time and draws the snapshot on a Braille [Canvas]: links as lines, nodes as
// circles scaled by their collision radius. Layouts of three or more
// dimensions are shown through an orbiting [Camera]. [App] is a preset
// picker in front of the live view.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reheat
//	Tab   - Select force
//	Up/Dn - Scale selected force strength
//	< >   - Ticks per frame
//	XYZ   - Rotate camera
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
