// Package signal synthesizes the simulated multi-channel recording: uniform
// background noise on every channel plus, while engaged, a shared alpha-band
// sinusoid on the probe channels.
//
// Simulation time is always passed in explicitly, so a [Source] driven with
// a seeded [Noise] reproduces the same stream for the same inputs.
package signal
