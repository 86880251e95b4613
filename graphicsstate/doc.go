// Package graphicsstate tracks the parts of the PDF graphics state needed
// to place text: the current transformation matrix, the text matrices and
// the text parameters set by Tf, Tc, Tw, Tz, TL and Ts.
//
//	gs := graphicsstate.NewGraphicsState()
//	gs.Save()                  // q
//	gs.Transform(m)            // cm
//	gs.SetFont("F1", f, 12)    // Tf
//	x, y := gs.Position()
//	gs.Restore()               // Q
package graphicsstate
