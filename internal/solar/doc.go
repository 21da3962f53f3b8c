// Package solar computes the sun's position and the day's sunrise and
// sunset instants for a fixed site location.
//
// Positions come from the meeus astronomical algorithms (apparent
// equatorial coordinates + local sidereal time), accurate to well under
// a tenth of a degree, which is far below the angular tolerances of any
// shading geometry. Sunrise and sunset are located by binary search on
// the altitude curve, with explicit handling of polar day and night.
package solar
