// Package cover implements the position calculation core for
// sun-shading covers.
//
// Given the sun's azimuth and elevation and a cover's window geometry,
// the package determines whether direct sunlight enters the window and
// computes the cover position that just blocks it. Three variants are
// supported: vertical blinds (drop height), horizontal awnings
// (extension length) and venetian-style tilt covers (slat angle). A
// safety margin widens coverage at grazing sun angles where the
// geometric model loses accuracy.
//
// Two strategies turn the raw calculation into a target position: the
// normal strategy tracks the sun while it shines into the window and
// falls back to a configured default otherwise; the climate strategy
// layers an ordered rule list on top, trading glare control against
// passive heating and heat blocking based on temperature, occupancy,
// weather and light sensors.
//
// # Thread Safety
//
// Everything in this package is a pure function of its inputs. Nothing
// holds state between calls, so all entry points are safe for
// concurrent use across any number of covers.
package cover
