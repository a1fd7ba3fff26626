// Package vehicle defines the parametric model of a wing-in-ground-effect
// craft: lifting surfaces built from wing stations, an optional fuselage
// profile, and the per-component display preferences. The model is owned
// and mutated by an editor; mesh generation reads it and never writes.
package vehicle
