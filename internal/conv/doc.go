// Package conv provides checked integer conversions for values read from
// untrusted input such as encoded edge list frames.
package conv
