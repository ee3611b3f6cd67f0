// Package testutil provides seeded input generators and brute-force oracles
// for testing neighbor queries.
package testutil
